// Package parser classifies extracted export files and parses their rows
// into typed diabetes records with fully resolved UTC timestamps.
package parser

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/glucose-sync/internal/domain"
	"github.com/vladimiradmaev/glucose-sync/internal/logger"
)

// classificationRules map filename substrings to record types, first match
// wins. Order matters: "basal" and "manual" must be tried before the bare
// "insulin" fallback, which claims the daily-summary files.
var classificationRules = []struct {
	substr string
	kind   domain.RecordType
}{
	{"cgm", domain.TypeGlucose},
	{"egv", domain.TypeGlucose},
	{"fingerstick", domain.TypeBloodGlucose},
	{"smbg", domain.TypeBloodGlucose},
	{"meter", domain.TypeBloodGlucose},
	{"bolus", domain.TypeBolus},
	{"basal", domain.TypeBasal},
	{"carb", domain.TypeCarbs},
	{"alarm", domain.TypeAlarm},
	{"food", domain.TypeFood},
	{"exercise", domain.TypeExercise},
	{"medication", domain.TypeMedication},
	{"injection", domain.TypeManualInsulin},
	{"manual", domain.TypeManualInsulin},
	{"note", domain.TypeNote},
	{"glucose", domain.TypeGlucose},
	{"bg", domain.TypeBloodGlucose},
	{"insulin", domain.TypeDailyInsulin},
}

// metadataKeywords mark an optional first line that is not the column
// header (export tools prepend one line of report metadata).
var metadataKeywords = []string{"record number", "date range", "generated", "report"}

var timestampAliases = []string{
	"timestamp", "datetime", "eventdatetime", "devicetime", "readingtime", "time", "date",
}

// column is one semantic column a record type needs from its file.
type column struct {
	name     string
	aliases  []string
	required bool
	numeric  bool
}

var columnsByType = map[domain.RecordType][]column{
	domain.TypeGlucose: {
		{name: "value", aliases: []string{"glucosevalue", "egvvalue", "glucose", "mgdl", "value", "reading"}, required: true, numeric: true},
	},
	domain.TypeBloodGlucose: {
		{name: "value", aliases: []string{"bgvalue", "bloodglucose", "glucosevalue", "glucose", "value", "reading"}, required: true, numeric: true},
	},
	domain.TypeBolus: {
		{name: "insulin", aliases: []string{"insulindelivered", "bolusvolumedelivered", "deliveredunits", "insulinunits", "delivered", "units", "insulin"}, required: true, numeric: true},
		{name: "carbs", aliases: []string{"carbsinput", "carbsize", "carbamount", "carbohydrates", "carbs"}, numeric: true},
		{name: "bg", aliases: []string{"bginput", "bloodglucose", "bg"}, numeric: true},
		{name: "bolusType", aliases: []string{"bolustype", "type"}},
	},
	domain.TypeBasal: {
		{name: "rate", aliases: []string{"basalrate", "unitsperhour", "rate"}, required: true, numeric: true},
		{name: "duration", aliases: []string{"durationminutes", "durationmin", "duration"}, numeric: true},
	},
	domain.TypeDailyInsulin: {
		{name: "total", aliases: []string{"totaldailydose", "totalinsulin", "dailytotal", "tdd", "total"}, required: true, numeric: true},
		{name: "bolus", aliases: []string{"totalbolus", "bolusinsulin", "bolus"}, numeric: true},
		{name: "basal", aliases: []string{"totalbasal", "basalinsulin", "basal"}, numeric: true},
	},
	domain.TypeCarbs: {
		{name: "grams", aliases: []string{"carbamount", "carbohydrates", "carbsg", "grams", "carbs", "value"}, required: true, numeric: true},
	},
	domain.TypeAlarm: {
		{name: "alarmType", aliases: []string{"alarmtype", "alarmevent", "alarm", "alert", "event", "description"}, required: true},
	},
	domain.TypeFood: {
		{name: "description", aliases: []string{"fooditem", "food", "description", "item", "name"}, required: true},
		{name: "carbs", aliases: []string{"carbamount", "carbohydrates", "carbs"}, numeric: true},
	},
	domain.TypeExercise: {
		{name: "description", aliases: []string{"exercisetype", "activity", "exercise", "intensity", "description"}, required: true},
		{name: "duration", aliases: []string{"durationminutes", "durationmin", "duration", "minutes"}, numeric: true},
	},
	domain.TypeMedication: {
		{name: "name", aliases: []string{"medicationname", "medication", "drugname", "drug", "name"}, required: true},
	},
	domain.TypeManualInsulin: {
		{name: "units", aliases: []string{"insulinunits", "unitsdelivered", "units", "amount", "dose", "value"}, required: true, numeric: true},
		{name: "insulinType", aliases: []string{"insulintype", "type"}},
	},
	domain.TypeNote: {
		{name: "text", aliases: []string{"notetext", "notes", "note", "comment", "text", "description"}, required: true},
	},
}

// Result is the outcome of parsing all files of one run.
type Result struct {
	Records []domain.Record
	Counts  map[domain.RecordType]int
	Errors  []string
}

// Parser turns extracted export files into typed records. All naive
// timestamps are resolved against loc.
type Parser struct {
	loc *time.Location
}

func New(loc *time.Location) *Parser {
	return &Parser{loc: loc}
}

// ParseFiles classifies and parses every file. Unrecognized files are
// skipped silently; a file missing a required column contributes a
// diagnostic and zero records; a bad row never aborts its file.
func (p *Parser) ParseFiles(files []domain.ExtractedFile) Result {
	result := Result{Counts: make(map[domain.RecordType]int)}

	for _, f := range files {
		kind, ok := classify(f.Name)
		if !ok {
			logger.Debug("Skipping unrecognized export file", "name", f.Name)
			continue
		}

		records, diag := p.parseFile(f, kind)
		if diag != "" {
			result.Errors = append(result.Errors, diag)
			continue
		}
		for _, r := range records {
			result.Records = append(result.Records, r)
			result.Counts[r.Kind()]++
		}
	}

	return result
}

// classify infers a file's record type from substrings in its name.
func classify(name string) (domain.RecordType, bool) {
	lower := strings.ToLower(name)
	for _, rule := range classificationRules {
		if strings.Contains(lower, rule.substr) {
			return rule.kind, true
		}
	}
	return "", false
}

// parseFile parses one file's rows as records of kind. It returns a
// diagnostic string instead of records when the file cannot supply the
// columns the kind requires.
func (p *Parser) parseFile(f domain.ExtractedFile, kind domain.RecordType) ([]domain.Record, string) {
	lines := splitLines(f.Content)
	if len(lines) == 0 {
		return nil, ""
	}

	headerIdx := 0
	if isMetadataLine(lines[0]) {
		headerIdx = 1
	}
	if headerIdx >= len(lines) {
		return nil, ""
	}
	header := splitRow(lines[headerIdx])

	tsIdx := findColumn(header, timestampAliases)
	if tsIdx < 0 {
		return nil, fmt.Sprintf("%s: missing timestamp column for type %s", f.Name, kind)
	}

	cols := columnsByType[kind]
	colIdx := make(map[string]int, len(cols))
	for _, c := range cols {
		idx := findColumn(header, c.aliases)
		if idx < 0 && c.required {
			return nil, fmt.Sprintf("%s: missing required column %q for type %s", f.Name, c.name, kind)
		}
		colIdx[c.name] = idx
	}

	var records []domain.Record
	for _, line := range lines[headerIdx+1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := splitRow(line)

		ts, err := resolveTimestamp(fieldAt(fields, tsIdx), p.loc)
		if err != nil {
			continue // expected noise in real exports, skip silently
		}

		r, ok := p.buildRecord(kind, ts, fields, colIdx)
		if !ok {
			continue
		}
		records = append(records, r)
	}

	return records, ""
}

// buildRecord assembles one typed record from a row. It reports !ok when a
// required value is missing, non-numeric or non-positive.
func (p *Parser) buildRecord(kind domain.RecordType, ts int64, fields []string, colIdx map[string]int) (domain.Record, bool) {
	num := func(name string) (float64, bool) {
		return parseFloat(fieldAt(fields, colIdx[name]))
	}
	text := func(name string) string {
		return strings.TrimSpace(fieldAt(fields, colIdx[name]))
	}
	optional := func(name string) float64 {
		v, ok := num(name)
		if !ok {
			return 0
		}
		return v
	}

	switch kind {
	case domain.TypeGlucose:
		v, ok := num("value")
		if !ok || v <= 0 {
			return nil, false
		}
		return domain.GlucoseReading{TimestampMs: ts, Value: v}, true

	case domain.TypeBloodGlucose:
		v, ok := num("value")
		if !ok || v <= 0 {
			return nil, false
		}
		return domain.BloodGlucose{TimestampMs: ts, Value: v}, true

	case domain.TypeBolus:
		insulin, ok := num("insulin")
		if !ok || insulin <= 0 {
			return nil, false
		}
		return domain.Bolus{
			TimestampMs: ts,
			Insulin:     insulin,
			Carbs:       optional("carbs"),
			BG:          optional("bg"),
			BolusType:   text("bolusType"),
		}, true

	case domain.TypeBasal:
		rate, ok := num("rate")
		if !ok || rate <= 0 {
			return nil, false
		}
		return domain.BasalRate{TimestampMs: ts, Rate: rate, DurationMin: optional("duration")}, true

	case domain.TypeDailyInsulin:
		total, ok := num("total")
		if !ok || total <= 0 {
			return nil, false
		}
		return domain.DailyInsulin{
			TimestampMs: ts,
			Date:        dateInZone(ts, p.loc),
			BolusTotal:  optional("bolus"),
			BasalTotal:  optional("basal"),
			Total:       total,
		}, true

	case domain.TypeCarbs:
		grams, ok := num("grams")
		if !ok || grams <= 0 {
			return nil, false
		}
		return domain.CarbEntry{TimestampMs: ts, Grams: grams}, true

	case domain.TypeAlarm:
		alarmType := text("alarmType")
		if alarmType == "" {
			return nil, false
		}
		return domain.Alarm{TimestampMs: ts, AlarmType: alarmType}, true

	case domain.TypeFood:
		desc := text("description")
		if desc == "" {
			return nil, false
		}
		return domain.FoodEntry{TimestampMs: ts, Description: desc, Carbs: optional("carbs")}, true

	case domain.TypeExercise:
		desc := text("description")
		if desc == "" {
			return nil, false
		}
		return domain.ExerciseEntry{TimestampMs: ts, Description: desc, DurationMin: optional("duration")}, true

	case domain.TypeMedication:
		name := text("name")
		if name == "" {
			return nil, false
		}
		return domain.Medication{TimestampMs: ts, Name: name}, true

	case domain.TypeManualInsulin:
		units, ok := num("units")
		if !ok || units <= 0 {
			return nil, false
		}
		return domain.ManualInsulin{TimestampMs: ts, Units: units, InsulinType: text("insulinType")}, true

	case domain.TypeNote:
		txt := text("text")
		if txt == "" {
			return nil, false
		}
		return domain.Note{TimestampMs: ts, Text: txt}, true
	}

	return nil, false
}

func isMetadataLine(line string) bool {
	lower := strings.ToLower(line)
	for _, kw := range metadataKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func splitLines(content string) []string {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	out := lines[:0]
	for _, l := range lines {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}

func fieldAt(fields []string, idx int) string {
	if idx < 0 || idx >= len(fields) {
		return ""
	}
	return fields[idx]
}

func parseFloat(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
