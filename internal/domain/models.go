package domain

import "time"

// ImportMetadata summarizes one ingestion run. Rows are append-only.
type ImportMetadata struct {
	ImportID      string             `json:"importId"`
	StartedAt     time.Time          `json:"startedAt"`
	CompletedAt   time.Time          `json:"completedAt"`
	DataStartDate string             `json:"dataStartDate,omitempty"` // YYYY-MM-DD, source timezone
	DataEndDate   string             `json:"dataEndDate,omitempty"`
	RecordCounts  map[RecordType]int `json:"recordCounts"`
	TotalRecords  int                `json:"totalRecords"`
	Errors        []string           `json:"errors,omitempty"`
}

// StoreResult is the run-scoped tally returned by a batch write. It is not
// persisted on its own.
type StoreResult struct {
	Written    int
	Duplicates int
	Errors     []string
}

// Treatment is one entry in a treatment summary: a bolus, a standalone carb
// entry or a manual injection, reduced to its insulin/carb content.
type Treatment struct {
	TimestampMs int64      `json:"timestamp"`
	Kind        RecordType `json:"kind"`
	Insulin     float64    `json:"insulin,omitempty"`
	Carbs       float64    `json:"carbs,omitempty"`
	BG          float64    `json:"bg,omitempty"`
}

// TreatmentSummary aggregates treatments inside a trailing time window.
type TreatmentSummary struct {
	WindowHours  int         `json:"windowHours"`
	TotalInsulin float64     `json:"totalInsulin"`
	TotalCarbs   float64     `json:"totalCarbs"`
	Treatments   []Treatment `json:"treatments"`
}
