package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vladimiradmaev/glucose-sync/internal/archive"
	"github.com/vladimiradmaev/glucose-sync/internal/domain"
	"github.com/vladimiradmaev/glucose-sync/internal/logger"
	"github.com/vladimiradmaev/glucose-sync/internal/parser"
)

// ImportService runs one ingestion: extract, classify and parse, then write
// everything through the idempotent store and record an ImportMetadata row.
// Nothing in a run is fatal: a run with zero parsed records or all-failed
// writes still produces a well-formed summary for the caller to inspect.
type ImportService struct {
	store  domain.RecordStore
	parser *parser.Parser
	loc    *time.Location
	userID string
}

var _ domain.Ingester = (*ImportService)(nil)

func NewImportService(store domain.RecordStore, loc *time.Location, userID string) *ImportService {
	return &ImportService{
		store:  store,
		parser: parser.New(loc),
		loc:    loc,
		userID: userID,
	}
}

// IngestArchive ingests a compressed export archive.
func (s *ImportService) IngestArchive(ctx context.Context, buf []byte) (*domain.ImportMetadata, domain.StoreResult, error) {
	files := archive.Extract(buf)
	logger.Info("Archive extracted", "files", len(files))
	return s.IngestFiles(ctx, files)
}

// IngestFiles ingests already-extracted export files.
func (s *ImportService) IngestFiles(ctx context.Context, files []domain.ExtractedFile) (*domain.ImportMetadata, domain.StoreResult, error) {
	meta := &domain.ImportMetadata{
		ImportID:  uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}

	parsed := s.parser.ParseFiles(files)
	meta.RecordCounts = parsed.Counts
	meta.TotalRecords = len(parsed.Records)
	meta.Errors = append(meta.Errors, parsed.Errors...)
	meta.DataStartDate, meta.DataEndDate = s.dataDateRange(parsed.Records)

	result, err := s.store.StoreRecords(ctx, s.userID, parsed.Records)
	if err != nil {
		// The store collects per-record failures itself; an error here means
		// the batch loop could not run at all.
		meta.Errors = append(meta.Errors, err.Error())
	}
	meta.Errors = append(meta.Errors, result.Errors...)
	meta.CompletedAt = time.Now().UTC()

	if err := s.store.SaveImportMetadata(ctx, s.userID, meta); err != nil {
		logger.Error("Failed to save import metadata", "import_id", meta.ImportID, "error", err)
		meta.Errors = append(meta.Errors, err.Error())
	}

	logger.Info("Ingestion complete",
		"import_id", meta.ImportID,
		"records", meta.TotalRecords,
		"written", result.Written,
		"duplicates", result.Duplicates,
		"errors", len(meta.Errors),
		"data_start", meta.DataStartDate,
		"data_end", meta.DataEndDate,
	)
	return meta, result, nil
}

// dataDateRange derives the run's date range from the min/max timestamp
// actually parsed, as dates in the source timezone.
func (s *ImportService) dataDateRange(records []domain.Record) (string, string) {
	if len(records) == 0 {
		return "", ""
	}
	minTs, maxTs := records[0].Time(), records[0].Time()
	for _, r := range records[1:] {
		if r.Time() < minTs {
			minTs = r.Time()
		}
		if r.Time() > maxTs {
			maxTs = r.Time()
		}
	}
	return time.UnixMilli(minTs).In(s.loc).Format("2006-01-02"),
		time.UnixMilli(maxTs).In(s.loc).Format("2006-01-02")
}
