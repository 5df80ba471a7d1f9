package services

import (
	"context"
	"testing"
	"time"

	"github.com/vladimiradmaev/glucose-sync/internal/domain"
)

type fakeStore struct {
	storeInUser string
	storeIn     []domain.Record
	storeOut    domain.StoreResult
	storeErr    error

	savedMeta *domain.ImportMetadata
	saveErr   error
}

var _ domain.RecordStore = (*fakeStore)(nil)

func (f *fakeStore) StoreRecords(_ context.Context, userID string, records []domain.Record) (domain.StoreResult, error) {
	f.storeInUser = userID
	f.storeIn = append([]domain.Record(nil), records...)
	if f.storeErr != nil {
		return domain.StoreResult{}, f.storeErr
	}
	if f.storeOut.Written == 0 && len(f.storeOut.Errors) == 0 && f.storeOut.Duplicates == 0 {
		return domain.StoreResult{Written: len(records)}, nil
	}
	return f.storeOut, nil
}

func (f *fakeStore) SaveImportMetadata(_ context.Context, _ string, meta *domain.ImportMetadata) error {
	f.savedMeta = meta
	return f.saveErr
}

func testImportService(t *testing.T, store domain.RecordStore) *ImportService {
	t.Helper()
	loc, err := time.LoadLocation("America/Los_Angeles")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	return NewImportService(store, loc, "user1")
}

func TestIngestFiles_EndToEnd(t *testing.T) {
	store := &fakeStore{}
	svc := testImportService(t, store)

	files := []domain.ExtractedFile{
		{
			Name: "bolus_data.csv",
			Content: "Timestamp,Insulin Delivered (U),Carbs Input (g),Bolus Type\n" +
				"2024-01-15 08:30:00,5.5,45,Normal\n" +
				"2024-01-15 12:00:00,3.0,30,Extended\n",
		},
		{
			Name: "insulin_data.csv",
			Content: "Timestamp,Bolus (U),Basal (U),Total Insulin (U)\n" +
				"2024-01-15 23:00:00,9.9,10.25,20.15\n",
		},
	}

	meta, result, err := svc.IngestFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}

	if meta.TotalRecords != 3 {
		t.Errorf("expected 3 records, got %d", meta.TotalRecords)
	}
	if meta.RecordCounts[domain.TypeBolus] != 2 || meta.RecordCounts[domain.TypeDailyInsulin] != 1 {
		t.Errorf("unexpected counts: %v", meta.RecordCounts)
	}
	if len(meta.Errors) != 0 {
		t.Errorf("expected zero errors, got %v", meta.Errors)
	}
	if meta.DataStartDate != "2024-01-15" || meta.DataEndDate != "2024-01-15" {
		t.Errorf("expected date range 2024-01-15..2024-01-15, got %s..%s", meta.DataStartDate, meta.DataEndDate)
	}
	if result.Written != 3 {
		t.Errorf("expected 3 written, got %d", result.Written)
	}

	if store.storeInUser != "user1" {
		t.Errorf("store called for user %q", store.storeInUser)
	}
	if store.savedMeta == nil {
		t.Fatal("import metadata was not saved")
	}
	if store.savedMeta.ImportID == "" {
		t.Error("import id must be set")
	}
	if store.savedMeta.CompletedAt.Before(store.savedMeta.StartedAt) {
		t.Error("completedAt precedes startedAt")
	}
}

func TestIngestFiles_ParseDiagnosticsReachMetadata(t *testing.T) {
	store := &fakeStore{}
	svc := testImportService(t, store)

	files := []domain.ExtractedFile{
		{Name: "bolus_data.csv", Content: "Timestamp,Comment\n2024-01-15 08:30:00,x\n"},
	}

	meta, result, err := svc.IngestFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if len(meta.Errors) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", meta.Errors)
	}
	if meta.TotalRecords != 0 || result.Written != 0 {
		t.Errorf("expected empty run, got %d records / %d written", meta.TotalRecords, result.Written)
	}
	if meta.DataStartDate != "" || meta.DataEndDate != "" {
		t.Errorf("empty run has no date range, got %s..%s", meta.DataStartDate, meta.DataEndDate)
	}
	if store.savedMeta == nil {
		t.Error("metadata must be saved even for an empty run")
	}
}

func TestIngestFiles_StoreErrorsAreCollectedNotFatal(t *testing.T) {
	store := &fakeStore{storeOut: domain.StoreResult{Written: 2, Errors: []string{"store BOLUS@1: boom"}}}
	svc := testImportService(t, store)

	files := []domain.ExtractedFile{
		{
			Name: "carbs.csv",
			Content: "Timestamp,Carbs (g)\n" +
				"2024-01-15 09:00:00,25\n" +
				"2024-01-15 10:00:00,12\n" +
				"2024-01-15 11:00:00,40\n",
		},
	}

	meta, _, err := svc.IngestFiles(context.Background(), files)
	if err != nil {
		t.Fatalf("IngestFiles: %v", err)
	}
	if len(meta.Errors) != 1 || meta.Errors[0] != "store BOLUS@1: boom" {
		t.Errorf("store errors must land in the run's error list, got %v", meta.Errors)
	}
}
