package services

import (
	"context"
	"fmt"
	"sort"
	"time"

	"gorm.io/gorm"

	"github.com/vladimiradmaev/glucose-sync/internal/cache"
	"github.com/vladimiradmaev/glucose-sync/internal/database"
	"github.com/vladimiradmaev/glucose-sync/internal/domain"
	"github.com/vladimiradmaev/glucose-sync/internal/logger"
)

const summaryCacheTTL = 5 * time.Minute

// QueryService is the read side of the record table. Downstream widgets and
// reports go through its three operations; nothing reads the table by
// guessing keys.
type QueryService struct {
	db    *gorm.DB
	loc   *time.Location
	cache *cache.Cache // optional, may be nil
}

var _ domain.RecordQuerier = (*QueryService)(nil)

func NewQueryService(db *gorm.DB, loc *time.Location, c *cache.Cache) *QueryService {
	return &QueryService{db: db, loc: loc, cache: c}
}

// QueryByTypeAndRange returns records of one kind inside [start, end],
// newest first, through the type-scoped index. limit <= 0 means no limit.
func (s *QueryService) QueryByTypeAndRange(ctx context.Context, userID string, kind domain.RecordType, start, end time.Time, limit int) ([]domain.Record, error) {
	typePartition := fmt.Sprintf("%s#%s", userID, kind)
	// The type sort key is date#paddedTimestamp, so a lexical range on it is
	// a time range.
	startSort := s.typeSortBound(start)
	endSort := s.typeSortBound(end)

	q := s.db.WithContext(ctx).
		Where("type_partition = ? AND type_sort BETWEEN ? AND ?", typePartition, startSort, endSort).
		Order("type_sort DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}

	var rows []database.StoredRecord
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query %s records: %w", kind, err)
	}

	records := make([]domain.Record, 0, len(rows))
	for _, row := range rows {
		r, err := decodeRecord(row.RecordType, row.Payload)
		if err != nil {
			logger.Warn("Skipping undecodable stored record", "partition_key", row.PartitionKey, "error", err)
			continue
		}
		records = append(records, r)
	}
	return records, nil
}

// QueryDailyTotalsByDateRange returns the daily insulin total per date for
// an inclusive date-string range.
func (s *QueryService) QueryDailyTotalsByDateRange(ctx context.Context, userID, startDate, endDate string) (map[string]float64, error) {
	typePartition := fmt.Sprintf("%s#%s", userID, domain.TypeDailyInsulin)

	var rows []database.StoredRecord
	if err := s.db.WithContext(ctx).
		Where("type_partition = ? AND record_date BETWEEN ? AND ?", typePartition, startDate, endDate).
		Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query daily totals: %w", err)
	}

	totals := make(map[string]float64, len(rows))
	for _, row := range rows {
		totals[row.RecordDate] = row.Total
	}
	return totals, nil
}

// GetTreatmentSummary aggregates bolus, standalone-carb and manual-insulin
// records in the trailing window into combined totals plus a merged,
// time-sorted treatment list. Results are cached briefly when a cache is
// configured.
func (s *QueryService) GetTreatmentSummary(ctx context.Context, userID string, windowHours int) (*domain.TreatmentSummary, error) {
	cacheKey := fmt.Sprintf("user:%s:treatments:%dh", userID, windowHours)
	if s.cache != nil {
		var cached domain.TreatmentSummary
		if s.cache.GetJSON(ctx, cacheKey, &cached) {
			return &cached, nil
		}
	}

	end := time.Now()
	start := end.Add(-time.Duration(windowHours) * time.Hour)

	var groups [][]domain.Record
	for _, kind := range []domain.RecordType{domain.TypeBolus, domain.TypeCarbs, domain.TypeManualInsulin} {
		records, err := s.QueryByTypeAndRange(ctx, userID, kind, start, end, 0)
		if err != nil {
			return nil, err
		}
		groups = append(groups, records)
	}

	summary := BuildTreatmentSummary(windowHours, groups...)
	if s.cache != nil {
		s.cache.SetJSON(ctx, cacheKey, summary, summaryCacheTTL)
	}
	return summary, nil
}

// BuildTreatmentSummary merges treatment-bearing records into one
// time-sorted list with combined insulin/carb totals. Records of other
// kinds are ignored.
func BuildTreatmentSummary(windowHours int, groups ...[]domain.Record) *domain.TreatmentSummary {
	summary := &domain.TreatmentSummary{WindowHours: windowHours, Treatments: []domain.Treatment{}}

	for _, records := range groups {
		for _, r := range records {
			var t domain.Treatment
			switch v := r.(type) {
			case domain.Bolus:
				t = domain.Treatment{TimestampMs: v.TimestampMs, Kind: domain.TypeBolus, Insulin: v.Insulin, Carbs: v.Carbs, BG: v.BG}
			case domain.CarbEntry:
				t = domain.Treatment{TimestampMs: v.TimestampMs, Kind: domain.TypeCarbs, Carbs: v.Grams}
			case domain.ManualInsulin:
				t = domain.Treatment{TimestampMs: v.TimestampMs, Kind: domain.TypeManualInsulin, Insulin: v.Units}
			default:
				continue
			}
			summary.TotalInsulin += t.Insulin
			summary.TotalCarbs += t.Carbs
			summary.Treatments = append(summary.Treatments, t)
		}
	}

	sort.Slice(summary.Treatments, func(i, j int) bool {
		return summary.Treatments[i].TimestampMs < summary.Treatments[j].TimestampMs
	})
	return summary
}

func (s *QueryService) typeSortBound(t time.Time) string {
	return t.In(s.loc).Format("2006-01-02") + "#" + fmt.Sprintf("%013d", t.UnixMilli())
}
