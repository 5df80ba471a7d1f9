package parser

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// year2000Ms separates unix-seconds from unix-milliseconds values: anything
// below 2000-01-01 in milliseconds is assumed to be seconds.
const year2000Ms = 946684800000

// offsetPattern matches an explicit UTC offset anchored to the end of the
// value. Values carrying one are absolute instants and must not be run
// through the source-timezone resolution.
var offsetPattern = regexp.MustCompile(`([Zz]|[+-]\d{2}:\d{2})$`)

var absoluteLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999Z07:00",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02 15:04Z07:00",
}

// naiveLayouts are wall-clock formats with no embedded zone. They are
// interpreted in the source timezone, per instant: the zone is multi-offset
// (standard vs daylight time), so a single global offset would resolve half
// the year incorrectly.
var naiveLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
}

// resolveTimestamp converts one raw timestamp cell into epoch milliseconds
// UTC. Numeric values are unix time (seconds or milliseconds by magnitude);
// explicitly zoned values are taken as-is; naive values are resolved as
// wall-clock time in loc.
func resolveTimestamp(raw string, loc *time.Location) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, fmt.Errorf("empty timestamp")
	}

	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		if n <= 0 {
			return 0, fmt.Errorf("non-positive unix timestamp %q", s)
		}
		if n < year2000Ms {
			return n * 1000, nil
		}
		return n, nil
	}

	if offsetPattern.MatchString(s) {
		normalized := s
		if strings.HasSuffix(s, "z") {
			normalized = s[:len(s)-1] + "Z"
		}
		for _, layout := range absoluteLayouts {
			if t, err := time.Parse(layout, normalized); err == nil {
				return t.UnixMilli(), nil
			}
		}
		return 0, fmt.Errorf("unrecognized zoned timestamp %q", s)
	}

	for _, layout := range naiveLayouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UnixMilli(), nil
		}
	}
	return 0, fmt.Errorf("unrecognized timestamp %q", s)
}

// dateInZone returns the calendar date of a UTC instant as seen in loc. A
// record stamped late evening local time keeps its local date instead of
// rolling over to the next UTC day.
func dateInZone(ms int64, loc *time.Location) string {
	return time.UnixMilli(ms).In(loc).Format("2006-01-02")
}
