package services

import (
	"encoding/json"
	"fmt"

	"github.com/vladimiradmaev/glucose-sync/internal/domain"
)

// encodeRecord serializes a record's variant fields as the stored payload.
func encodeRecord(r domain.Record) ([]byte, error) {
	payload, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s record: %w", r.Kind(), err)
	}
	return payload, nil
}

// decodeRecord rebuilds the typed record from a stored row. The switch is
// exhaustive over the record union.
func decodeRecord(recordType string, payload []byte) (domain.Record, error) {
	switch domain.RecordType(recordType) {
	case domain.TypeGlucose:
		return decodeAs[domain.GlucoseReading](payload)
	case domain.TypeBloodGlucose:
		return decodeAs[domain.BloodGlucose](payload)
	case domain.TypeBolus:
		return decodeAs[domain.Bolus](payload)
	case domain.TypeBasal:
		return decodeAs[domain.BasalRate](payload)
	case domain.TypeDailyInsulin:
		return decodeAs[domain.DailyInsulin](payload)
	case domain.TypeCarbs:
		return decodeAs[domain.CarbEntry](payload)
	case domain.TypeAlarm:
		return decodeAs[domain.Alarm](payload)
	case domain.TypeFood:
		return decodeAs[domain.FoodEntry](payload)
	case domain.TypeExercise:
		return decodeAs[domain.ExerciseEntry](payload)
	case domain.TypeMedication:
		return decodeAs[domain.Medication](payload)
	case domain.TypeManualInsulin:
		return decodeAs[domain.ManualInsulin](payload)
	case domain.TypeNote:
		return decodeAs[domain.Note](payload)
	default:
		return nil, fmt.Errorf("unknown record type %q", recordType)
	}
}

func decodeAs[T domain.Record](payload []byte) (domain.Record, error) {
	var v T
	if err := json.Unmarshal(payload, &v); err != nil {
		return nil, fmt.Errorf("failed to decode %s record: %w", v.Kind(), err)
	}
	return v, nil
}
