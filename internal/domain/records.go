package domain

// RecordType identifies one kind of diabetes record produced by an export.
type RecordType string

const (
	TypeGlucose       RecordType = "GLUCOSE"
	TypeBloodGlucose  RecordType = "BG"
	TypeBolus         RecordType = "BOLUS"
	TypeBasal         RecordType = "BASAL"
	TypeDailyInsulin  RecordType = "DAILY_INSULIN"
	TypeCarbs         RecordType = "CARBS"
	TypeAlarm         RecordType = "ALARM"
	TypeFood          RecordType = "FOOD"
	TypeExercise      RecordType = "EXERCISE"
	TypeMedication    RecordType = "MEDICATION"
	TypeManualInsulin RecordType = "MANUAL_INSULIN"
	TypeNote          RecordType = "NOTE"
)

// ExtractedFile is one text file pulled out of an export archive.
type ExtractedFile struct {
	Name    string
	Content string
}

// Record is the closed union of all record kinds. Every variant carries a
// resolved UTC timestamp in epoch milliseconds; no variant ever holds an
// unresolved local time. The unexported marker keeps the union closed to
// this package so consumers can switch exhaustively.
type Record interface {
	Kind() RecordType
	Time() int64 // epoch milliseconds, UTC
	isRecord()
}

// GlucoseReading is one continuous-glucose-monitor sample.
type GlucoseReading struct {
	TimestampMs int64   `json:"timestamp"`
	Value       float64 `json:"value"` // mg/dL
}

// BloodGlucose is a fingerstick meter reading.
type BloodGlucose struct {
	TimestampMs int64   `json:"timestamp"`
	Value       float64 `json:"value"` // mg/dL
}

// Bolus is one insulin bolus with optional carb and blood-glucose context.
type Bolus struct {
	TimestampMs int64   `json:"timestamp"`
	Insulin     float64 `json:"insulin"` // units delivered
	Carbs       float64 `json:"carbs,omitempty"`
	BG          float64 `json:"bg,omitempty"`
	BolusType   string  `json:"bolusType,omitempty"` // e.g. "Normal", "Extended"
}

// BasalRate is one basal rate segment.
type BasalRate struct {
	TimestampMs int64   `json:"timestamp"`
	Rate        float64 `json:"rate"` // units/hour
	DurationMin float64 `json:"durationMin,omitempty"`
}

// DailyInsulin is the running per-date insulin total. Date is the calendar
// date in the source timezone, never the UTC date.
type DailyInsulin struct {
	TimestampMs int64   `json:"timestamp"`
	Date        string  `json:"date"` // YYYY-MM-DD
	BolusTotal  float64 `json:"bolusTotal,omitempty"`
	BasalTotal  float64 `json:"basalTotal,omitempty"`
	Total       float64 `json:"total"`
}

// CarbEntry is a standalone carbohydrate entry.
type CarbEntry struct {
	TimestampMs int64   `json:"timestamp"`
	Grams       float64 `json:"grams"`
}

// Alarm is a device alarm or alert event.
type Alarm struct {
	TimestampMs int64  `json:"timestamp"`
	AlarmType   string `json:"alarmType"`
}

// FoodEntry is a logged meal or snack.
type FoodEntry struct {
	TimestampMs int64   `json:"timestamp"`
	Description string  `json:"description"`
	Carbs       float64 `json:"carbs,omitempty"`
}

// ExerciseEntry is a logged exercise session.
type ExerciseEntry struct {
	TimestampMs int64   `json:"timestamp"`
	Description string  `json:"description"`
	DurationMin float64 `json:"durationMin,omitempty"`
}

// Medication is a logged medication intake.
type Medication struct {
	TimestampMs int64  `json:"timestamp"`
	Name        string `json:"name"`
}

// ManualInsulin is an insulin dose entered by hand (pen or syringe).
type ManualInsulin struct {
	TimestampMs int64   `json:"timestamp"`
	Units       float64 `json:"units"`
	InsulinType string  `json:"insulinType,omitempty"`
}

// Note is a free-text note.
type Note struct {
	TimestampMs int64  `json:"timestamp"`
	Text        string `json:"text"`
}

func (r GlucoseReading) Kind() RecordType { return TypeGlucose }
func (r BloodGlucose) Kind() RecordType   { return TypeBloodGlucose }
func (r Bolus) Kind() RecordType          { return TypeBolus }
func (r BasalRate) Kind() RecordType      { return TypeBasal }
func (r DailyInsulin) Kind() RecordType   { return TypeDailyInsulin }
func (r CarbEntry) Kind() RecordType      { return TypeCarbs }
func (r Alarm) Kind() RecordType          { return TypeAlarm }
func (r FoodEntry) Kind() RecordType      { return TypeFood }
func (r ExerciseEntry) Kind() RecordType  { return TypeExercise }
func (r Medication) Kind() RecordType     { return TypeMedication }
func (r ManualInsulin) Kind() RecordType  { return TypeManualInsulin }
func (r Note) Kind() RecordType           { return TypeNote }

func (r GlucoseReading) Time() int64 { return r.TimestampMs }
func (r BloodGlucose) Time() int64   { return r.TimestampMs }
func (r Bolus) Time() int64          { return r.TimestampMs }
func (r BasalRate) Time() int64      { return r.TimestampMs }
func (r DailyInsulin) Time() int64   { return r.TimestampMs }
func (r CarbEntry) Time() int64      { return r.TimestampMs }
func (r Alarm) Time() int64          { return r.TimestampMs }
func (r FoodEntry) Time() int64      { return r.TimestampMs }
func (r ExerciseEntry) Time() int64  { return r.TimestampMs }
func (r Medication) Time() int64     { return r.TimestampMs }
func (r ManualInsulin) Time() int64  { return r.TimestampMs }
func (r Note) Time() int64           { return r.TimestampMs }

func (GlucoseReading) isRecord() {}
func (BloodGlucose) isRecord()   {}
func (Bolus) isRecord()          {}
func (BasalRate) isRecord()      {}
func (DailyInsulin) isRecord()   {}
func (CarbEntry) isRecord()      {}
func (Alarm) isRecord()          {}
func (FoodEntry) isRecord()      {}
func (ExerciseEntry) isRecord()  {}
func (Medication) isRecord()     {}
func (ManualInsulin) isRecord()  {}
func (Note) isRecord()           {}
