// Package keys derives deterministic storage keys for diabetes records.
// Two parses of the same real-world event always collide on the same key;
// records differing in any distinguishing field get distinct keys.
package keys

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/glucose-sync/internal/domain"
)

// dailySummarySortKey is the singleton sort key for daily aggregates: at
// most one stored item exists per (user, date), however many times the
// running total for that date is re-exported.
const dailySummarySortKey = "SUMMARY"

const shortHashLen = 12

// RecordKey addresses one record in the partitioned store, plus the two
// secondary index keys the query layer reads through.
type RecordKey struct {
	PartitionKey        string
	SortKey             string
	AllRecordsPartition string
	AllRecordsSort      string
	TypePartition       string
	TypeSort            string
}

// Derive computes the storage key for one record. It is pure: the same
// (userID, record) pair always yields the same key. The partition date is
// the record's calendar date in the source timezone loc.
func Derive(userID string, r domain.Record, loc *time.Location) RecordKey {
	date := recordDate(r, loc)
	paddedTs := fmt.Sprintf("%013d", r.Time())
	hash := shortHash(r)

	key := RecordKey{
		PartitionKey:        fmt.Sprintf("%s#%s#%s", userID, r.Kind(), date),
		SortKey:             paddedTs + "#" + hash,
		AllRecordsPartition: userID + "#ALL",
		AllRecordsSort:      paddedTs + "#" + hash,
		TypePartition:       fmt.Sprintf("%s#%s", userID, r.Kind()),
		TypeSort:            date + "#" + paddedTs,
	}

	if r.Kind() == domain.TypeDailyInsulin {
		key.SortKey = dailySummarySortKey
	}
	return key
}

// ImportPartition returns the partition holding a user's import metadata.
func ImportPartition(userID string) string {
	return userID + "#IMPORT"
}

// ImportSortKey orders import metadata rows by start time, disambiguated by
// the run's id.
func ImportSortKey(startedAt time.Time, importID string) string {
	return fmt.Sprintf("%013d#%s", startedAt.UnixMilli(), importID)
}

// recordDate is the source-timezone calendar date of the record. Daily
// aggregates carry their date explicitly; everything else derives it from
// the timestamp.
func recordDate(r domain.Record, loc *time.Location) string {
	if d, ok := r.(domain.DailyInsulin); ok && d.Date != "" {
		return d.Date
	}
	return time.UnixMilli(r.Time()).In(loc).Format("2006-01-02")
}

// shortHash digests the fields that make a record semantically unique for
// its kind. The switch is exhaustive over the record union: adding a kind
// without listing its distinguishing fields will not compile past review.
func shortHash(r domain.Record) string {
	var parts []string
	switch v := r.(type) {
	case domain.GlucoseReading:
		parts = []string{ms(v.TimestampMs), f(v.Value)}
	case domain.BloodGlucose:
		parts = []string{ms(v.TimestampMs), f(v.Value)}
	case domain.Bolus:
		parts = []string{ms(v.TimestampMs), f(v.Insulin), f(v.Carbs)}
	case domain.BasalRate:
		parts = []string{ms(v.TimestampMs), f(v.Rate)}
	case domain.DailyInsulin:
		parts = []string{v.Date, f(v.Total)}
	case domain.CarbEntry:
		parts = []string{ms(v.TimestampMs), f(v.Grams)}
	case domain.Alarm:
		parts = []string{ms(v.TimestampMs), v.AlarmType}
	case domain.FoodEntry:
		parts = []string{ms(v.TimestampMs), v.Description, f(v.Carbs)}
	case domain.ExerciseEntry:
		parts = []string{ms(v.TimestampMs), v.Description, f(v.DurationMin)}
	case domain.Medication:
		parts = []string{ms(v.TimestampMs), v.Name}
	case domain.ManualInsulin:
		parts = []string{ms(v.TimestampMs), f(v.Units)}
	case domain.Note:
		parts = []string{ms(v.TimestampMs), v.Text}
	}

	sum := sha256.Sum256([]byte(string(r.Kind()) + "|" + strings.Join(parts, "|")))
	return hex.EncodeToString(sum[:])[:shortHashLen]
}

func ms(v int64) string { return strconv.FormatInt(v, 10) }

func f(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
