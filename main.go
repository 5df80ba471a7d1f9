package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vladimiradmaev/glucose-sync/internal/cache"
	"github.com/vladimiradmaev/glucose-sync/internal/config"
	"github.com/vladimiradmaev/glucose-sync/internal/database"
	"github.com/vladimiradmaev/glucose-sync/internal/logger"
	"github.com/vladimiradmaev/glucose-sync/internal/services"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("Starting glucose-sync ingestion...")

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if err := logger.InitWithConfig(logger.Config{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	}); err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}

	archivePath := cfg.Sync.ArchivePath
	if len(os.Args) > 1 {
		archivePath = os.Args[1]
	}
	if archivePath == "" {
		log.Fatalf("Usage: glucose-sync <export-archive.zip> (or set EXPORT_ARCHIVE_PATH)")
	}

	buf, err := os.ReadFile(archivePath)
	if err != nil {
		log.Fatalf("Failed to read export archive: %v", err)
	}

	loc, err := time.LoadLocation(cfg.Sync.SourceTimezone)
	if err != nil {
		log.Fatalf("Failed to load source timezone: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.DB)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	storeService := services.NewStoreService(db, loc, cfg.Sync.BatchSize)
	importService := services.NewImportService(storeService, loc, cfg.Sync.UserID)

	// The cache only accelerates the query layer; an unreachable Redis must
	// not block an ingestion run.
	var queryCache *cache.Cache
	if cfg.Redis.Enabled {
		queryCache, err = cache.New(cfg.Redis.Host, cfg.Redis.Port)
		if err != nil {
			logger.Warn("Redis unavailable, query caching disabled", "error", err)
			queryCache = nil
		}
	}
	queryService := services.NewQueryService(db, loc, queryCache)

	ctx := context.Background()
	meta, result, err := importService.IngestArchive(ctx, buf)
	if err != nil {
		log.Fatalf("Ingestion failed: %v", err)
	}

	logger.Info("Run summary",
		"import_id", meta.ImportID,
		"written", result.Written,
		"duplicates", result.Duplicates,
		"errors", len(meta.Errors),
	)

	if summary, err := queryService.GetTreatmentSummary(ctx, cfg.Sync.UserID, 24); err == nil {
		logger.Info("Trailing 24h treatments",
			"total_insulin", summary.TotalInsulin,
			"total_carbs", summary.TotalCarbs,
			"treatments", len(summary.Treatments),
		)
	}
}
