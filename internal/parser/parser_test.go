package parser

import (
	"testing"

	"github.com/vladimiradmaev/glucose-sync/internal/domain"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	return New(sourceZone(t))
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		want domain.RecordType
		ok   bool
	}{
		{"cgm_data.csv", domain.TypeGlucose, true},
		{"bolus_data.csv", domain.TypeBolus, true},
		{"basal_rates.csv", domain.TypeBasal, true},
		{"carbs.csv", domain.TypeCarbs, true},
		{"insulin_data.csv", domain.TypeDailyInsulin, true},
		{"manual_insulin.csv", domain.TypeManualInsulin, true},
		{"alarms_export.csv", domain.TypeAlarm, true},
		{"food_log.csv", domain.TypeFood, true},
		{"exercise.csv", domain.TypeExercise, true},
		{"medication.csv", domain.TypeMedication, true},
		{"notes.csv", domain.TypeNote, true},
		{"smbg_readings.csv", domain.TypeBloodGlucose, true},
		{"device_settings.csv", "", false},
	}

	for _, tc := range cases {
		got, ok := classify(tc.name)
		if ok != tc.ok || got != tc.want {
			t.Errorf("classify(%q) = %v, %v; want %v, %v", tc.name, got, ok, tc.want, tc.ok)
		}
	}
}

func TestParseFiles_BolusFile(t *testing.T) {
	p := newTestParser(t)

	files := []domain.ExtractedFile{{
		Name: "bolus_data.csv",
		Content: "Timestamp,Insulin Delivered (U),Carbs Input (g),Bolus Type\n" +
			"2024-01-15 08:30:00,5.5,45,Normal\n" +
			"2024-01-15 12:00:00,3.0,30,Extended\n",
	}}

	result := p.ParseFiles(files)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Counts[domain.TypeBolus] != 2 {
		t.Fatalf("expected 2 bolus records, got %d", result.Counts[domain.TypeBolus])
	}

	b, ok := result.Records[0].(domain.Bolus)
	if !ok {
		t.Fatalf("expected Bolus, got %T", result.Records[0])
	}
	if b.Insulin != 5.5 || b.Carbs != 45 || b.BolusType != "Normal" {
		t.Errorf("unexpected bolus fields: %+v", b)
	}
}

func TestParseFiles_MetadataFirstLine(t *testing.T) {
	p := newTestParser(t)

	files := []domain.ExtractedFile{{
		Name: "cgm_data.csv",
		Content: "Report generated for date range 2024-01-01 to 2024-01-31\n" +
			"Timestamp,Glucose Value (mg/dL)\n" +
			"2024-01-15 08:00:00,142\n",
	}}

	result := p.ParseFiles(files)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Counts[domain.TypeGlucose] != 1 {
		t.Fatalf("expected 1 glucose record, got %d", result.Counts[domain.TypeGlucose])
	}
	g := result.Records[0].(domain.GlucoseReading)
	if g.Value != 142 {
		t.Errorf("expected value 142, got %v", g.Value)
	}
}

func TestParseFiles_MissingRequiredColumn(t *testing.T) {
	p := newTestParser(t)

	files := []domain.ExtractedFile{
		{
			Name:    "bolus_data.csv",
			Content: "Timestamp,Comment\n2024-01-15 08:30:00,no dose column here\n",
		},
		{
			Name:    "carbs.csv",
			Content: "Timestamp,Carbs (g)\n2024-01-15 09:00:00,25\n",
		},
	}

	result := p.ParseFiles(files)
	if len(result.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", result.Errors)
	}
	if result.Counts[domain.TypeCarbs] != 1 {
		t.Errorf("sibling file should still parse, counts: %v", result.Counts)
	}
}

func TestParseFiles_BadRowsAreIsolated(t *testing.T) {
	p := newTestParser(t)

	files := []domain.ExtractedFile{{
		Name: "bolus_data.csv",
		Content: "Timestamp,Insulin Delivered (U),Carbs Input (g)\n" +
			"2024-01-15 08:30:00,5.5,45\n" +
			"not-a-timestamp,2.0,10\n" + // bad timestamp
			"2024-01-15 12:00:00,abc,30\n" + // non-numeric dose
			"2024-01-15 13:00:00,-1,30\n" + // non-positive dose
			"2024-01-15 18:00:00,4.0,60\n",
	}}

	result := p.ParseFiles(files)
	if len(result.Errors) != 0 {
		t.Fatalf("row errors must be silent, got: %v", result.Errors)
	}
	if result.Counts[domain.TypeBolus] != 2 {
		t.Errorf("expected 2 valid rows, got %d", result.Counts[domain.TypeBolus])
	}
}

func TestParseFiles_QuotedCommasInFields(t *testing.T) {
	p := newTestParser(t)

	files := []domain.ExtractedFile{{
		Name: "notes.csv",
		Content: "Timestamp,Note\n" +
			"2024-01-15 08:00:00,\"felt low, ate glucose tabs\"\n",
	}}

	result := p.ParseFiles(files)
	if result.Counts[domain.TypeNote] != 1 {
		t.Fatalf("expected 1 note, got %v", result.Counts)
	}
	n := result.Records[0].(domain.Note)
	if n.Text != "felt low, ate glucose tabs" {
		t.Errorf("unexpected note text: %q", n.Text)
	}
}

func TestParseFiles_DailyInsulinDateAssignment(t *testing.T) {
	p := newTestParser(t)

	files := []domain.ExtractedFile{{
		Name: "insulin_data.csv",
		Content: "Timestamp,Bolus (U),Basal (U),Total Insulin (U)\n" +
			"2024-01-15 23:00:00,9.9,10.25,20.15\n",
	}}

	result := p.ParseFiles(files)
	if len(result.Errors) != 0 {
		t.Fatalf("unexpected errors: %v", result.Errors)
	}
	if result.Counts[domain.TypeDailyInsulin] != 1 {
		t.Fatalf("expected 1 daily record, got %v", result.Counts)
	}

	d := result.Records[0].(domain.DailyInsulin)
	if d.Date != "2024-01-15" {
		t.Errorf("date must be the source-timezone date, got %s", d.Date)
	}
	if d.Total != 20.15 || d.BolusTotal != 9.9 || d.BasalTotal != 10.25 {
		t.Errorf("unexpected totals: %+v", d)
	}
}

func TestParseFiles_UnknownFilesSkippedSilently(t *testing.T) {
	p := newTestParser(t)

	files := []domain.ExtractedFile{{
		Name:    "device_settings.csv",
		Content: "Setting,Value\nBeep,on\n",
	}}

	result := p.ParseFiles(files)
	if len(result.Records) != 0 || len(result.Errors) != 0 {
		t.Errorf("unknown file must be a silent skip, got %+v", result)
	}
}

func TestFindColumn(t *testing.T) {
	header := []string{"Timestamp", "Insulin Delivered (U)", "Carbs Input (g)"}

	if idx := findColumn(header, []string{"insulindelivered"}); idx != 1 {
		t.Errorf("contains match: got %d", idx)
	}
	if idx := findColumn(header, []string{"carbs"}); idx != 2 {
		t.Errorf("alias-in-cell match: got %d", idx)
	}
	if idx := findColumn(header, []string{"basalrate"}); idx != -1 {
		t.Errorf("absent column: got %d", idx)
	}
}
