package domain

import (
	"context"
	"time"
)

// RecordStore persists parsed records with idempotent write semantics.
type RecordStore interface {
	StoreRecords(ctx context.Context, userID string, records []Record) (StoreResult, error)
	SaveImportMetadata(ctx context.Context, userID string, meta *ImportMetadata) error
}

// RecordQuerier is the only sanctioned read surface over stored records.
type RecordQuerier interface {
	QueryByTypeAndRange(ctx context.Context, userID string, kind RecordType, start, end time.Time, limit int) ([]Record, error)
	QueryDailyTotalsByDateRange(ctx context.Context, userID, startDate, endDate string) (map[string]float64, error)
	GetTreatmentSummary(ctx context.Context, userID string, windowHours int) (*TreatmentSummary, error)
}

// Ingester runs one ingestion of an export.
type Ingester interface {
	IngestArchive(ctx context.Context, buf []byte) (*ImportMetadata, StoreResult, error)
	IngestFiles(ctx context.Context, files []ExtractedFile) (*ImportMetadata, StoreResult, error)
}
