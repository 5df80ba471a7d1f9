package parser

import (
	"testing"
	"time"
)

func sourceZone(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return loc
}

func TestResolveTimestamp_NaiveStandardTime(t *testing.T) {
	loc := sourceZone(t)

	// Mid-January is UTC-8: 23:30 wall clock is 07:30 UTC the next day.
	got, err := resolveTimestamp("2024-01-15 23:30:00", loc)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := time.Date(2024, 1, 16, 7, 30, 0, 0, time.UTC).UnixMilli()
	if got != want {
		t.Errorf("got %d (%s), want %d", got, time.UnixMilli(got).UTC(), want)
	}
}

func TestResolveTimestamp_NaiveDaylightTime(t *testing.T) {
	loc := sourceZone(t)

	// Mid-June is UTC-7: the same wall clock resolves one hour earlier in UTC.
	got, err := resolveTimestamp("2024-06-15 23:30:00", loc)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := time.Date(2024, 6, 16, 6, 30, 0, 0, time.UTC).UnixMilli()
	if got != want {
		t.Errorf("got %d (%s), want %d", got, time.UnixMilli(got).UTC(), want)
	}
}

func TestResolveTimestamp_ExplicitZoneIgnoresSourceTimezone(t *testing.T) {
	loc := sourceZone(t)

	got, err := resolveTimestamp("2024-01-15T08:30:00Z", loc)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := time.Date(2024, 1, 15, 8, 30, 0, 0, time.UTC).UnixMilli()
	if got != want {
		t.Errorf("got %d, want %d", got, want)
	}

	got, err = resolveTimestamp("2024-01-15T08:30:00+05:00", loc)
	if err != nil {
		t.Fatalf("resolve offset form: %v", err)
	}
	want = time.Date(2024, 1, 15, 3, 30, 0, 0, time.UTC).UnixMilli()
	if got != want {
		t.Errorf("offset form: got %d, want %d", got, want)
	}
}

func TestResolveTimestamp_Layouts(t *testing.T) {
	loc := sourceZone(t)
	want := time.Date(2024, 1, 16, 7, 30, 0, 0, time.UTC).UnixMilli()

	for _, raw := range []string{
		"2024-01-15 23:30:00",
		"2024-01-15T23:30:00",
		"2024-01-15 23:30",
		"01/15/2024 23:30:00",
		"01/15/2024 23:30",
	} {
		got, err := resolveTimestamp(raw, loc)
		if err != nil {
			t.Errorf("%q: %v", raw, err)
			continue
		}
		if got != want {
			t.Errorf("%q: got %d, want %d", raw, got, want)
		}
	}
}

func TestResolveTimestamp_Numeric(t *testing.T) {
	loc := sourceZone(t)

	// Below the year-2000 millisecond threshold: unix seconds.
	got, err := resolveTimestamp("1705363200", loc)
	if err != nil {
		t.Fatalf("seconds: %v", err)
	}
	if got != 1705363200000 {
		t.Errorf("seconds: got %d", got)
	}

	// Above it: already milliseconds.
	got, err = resolveTimestamp("1705363200123", loc)
	if err != nil {
		t.Fatalf("milliseconds: %v", err)
	}
	if got != 1705363200123 {
		t.Errorf("milliseconds: got %d", got)
	}
}

func TestResolveTimestamp_Invalid(t *testing.T) {
	loc := sourceZone(t)
	for _, raw := range []string{"", "   ", "not a time", "2024-13-45 99:99:99", "-5"} {
		if _, err := resolveTimestamp(raw, loc); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}
}

func TestDateInZone_LateEveningKeepsLocalDate(t *testing.T) {
	loc := sourceZone(t)

	ts, err := resolveTimestamp("2024-01-15 23:00:00", loc)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// The UTC date has rolled to the 16th; the assigned date must not.
	if got := dateInZone(ts, loc); got != "2024-01-15" {
		t.Errorf("got %s, want 2024-01-15", got)
	}
}
