package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/vladimiradmaev/glucose-sync/internal/database"
	"github.com/vladimiradmaev/glucose-sync/internal/domain"
	apperrors "github.com/vladimiradmaev/glucose-sync/internal/errors"
	"github.com/vladimiradmaev/glucose-sync/internal/keys"
	"github.com/vladimiradmaev/glucose-sync/internal/logger"
)

const defaultBatchSize = 25

// StoreService writes parsed records into the partitioned record table with
// conditional-write semantics: re-importing an overlapping date range is
// always safe, the second occurrence of a record is counted as a duplicate.
type StoreService struct {
	db        *gorm.DB
	loc       *time.Location
	batchSize int
}

var _ domain.RecordStore = (*StoreService)(nil)

func NewStoreService(db *gorm.DB, loc *time.Location, batchSize int) *StoreService {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	return &StoreService{db: db, loc: loc, batchSize: batchSize}
}

// StoreRecords writes records in fixed-size batches. Batches run
// sequentially to bound in-flight requests; writes inside a batch are
// concurrent because each is an independent, individually atomic round
// trip. Per-record failures are collected, never fatal.
func (s *StoreService) StoreRecords(ctx context.Context, userID string, records []domain.Record) (domain.StoreResult, error) {
	var result domain.StoreResult
	var mu sync.Mutex

	for start := 0; start < len(records); start += s.batchSize {
		end := min(start+s.batchSize, len(records))

		var wg sync.WaitGroup
		for _, r := range records[start:end] {
			r := r
			wg.Add(1)
			go func() {
				defer wg.Done()
				written, err := s.writeRecord(ctx, userID, r)

				mu.Lock()
				defer mu.Unlock()
				switch {
				case err != nil:
					result.Errors = append(result.Errors, fmt.Sprintf("store %s@%d: %v", r.Kind(), r.Time(), err))
				case written:
					result.Written++
				default:
					result.Duplicates++
				}
			}()
		}
		wg.Wait()
	}

	return result, nil
}

// writeRecord performs one conditional write. Non-aggregate records are
// inserted only if absent; the daily aggregate is upserted only when its
// total strictly exceeds the stored one, so a late partial-day snapshot can
// never clobber a fuller total.
func (s *StoreService) writeRecord(ctx context.Context, userID string, r domain.Record) (bool, error) {
	row, err := s.buildRow(userID, r)
	if err != nil {
		return false, err
	}

	var tx *gorm.DB
	if r.Kind() == domain.TypeDailyInsulin {
		tx = s.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "partition_key"}, {Name: "sort_key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"total":            row.Total,
				"payload":          row.Payload,
				"timestamp_ms":     row.TimestampMs,
				"all_records_sort": row.AllRecordsSort,
				"type_sort":        row.TypeSort,
			}),
			Where: clause.Where{Exprs: []clause.Expression{
				clause.Lt{Column: clause.Column{Table: "stored_records", Name: "total"}, Value: row.Total},
			}},
		}).Create(&row)
	} else {
		tx = s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	}

	if tx.Error != nil {
		appErr := apperrors.NewDatabaseError(tx.Error).WithContext("partition_key", row.PartitionKey)
		logger.Error("Record write failed", appErr.LogFields()...)
		return false, appErr
	}
	return tx.RowsAffected > 0, nil
}

func (s *StoreService) buildRow(userID string, r domain.Record) (database.StoredRecord, error) {
	payload, err := encodeRecord(r)
	if err != nil {
		return database.StoredRecord{}, err
	}

	key := keys.Derive(userID, r, s.loc)
	row := database.StoredRecord{
		PartitionKey:        key.PartitionKey,
		SortKey:             key.SortKey,
		AllRecordsPartition: key.AllRecordsPartition,
		AllRecordsSort:      key.AllRecordsSort,
		TypePartition:       key.TypePartition,
		TypeSort:            key.TypeSort,
		UserID:              userID,
		RecordType:          string(r.Kind()),
		TimestampMs:         r.Time(),
		RecordDate:          time.UnixMilli(r.Time()).In(s.loc).Format("2006-01-02"),
		Payload:             payload,
	}
	if d, ok := r.(domain.DailyInsulin); ok {
		row.RecordDate = d.Date
		row.Total = d.Total
	}
	return row, nil
}

// SaveImportMetadata appends one run summary row in the user's import
// partition. Rows are keyed by start time plus the run's id and are never
// updated.
func (s *StoreService) SaveImportMetadata(ctx context.Context, userID string, meta *domain.ImportMetadata) error {
	payload, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("failed to encode import metadata: %w", err)
	}

	row := database.StoredRecord{
		PartitionKey: keys.ImportPartition(userID),
		SortKey:      keys.ImportSortKey(meta.StartedAt, meta.ImportID),
		UserID:       userID,
		RecordType:   "IMPORT",
		TimestampMs:  meta.StartedAt.UnixMilli(),
		RecordDate:   meta.StartedAt.In(s.loc).Format("2006-01-02"),
		Payload:      payload,
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to save import metadata: %w", err)
	}
	return nil
}
