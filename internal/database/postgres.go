package database

import (
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/vladimiradmaev/glucose-sync/internal/config"
	"github.com/vladimiradmaev/glucose-sync/internal/logger"
)

// StoredRecord is one row of the partitioned record table. The composite
// primary key (partition_key, sort_key) carries the idempotency guarantee:
// conditional inserts on it decide written vs duplicate. The two composite
// indexes serve the query layer's secondary access paths. Import metadata
// lives in the same table under its own partition.
type StoredRecord struct {
	PartitionKey        string `gorm:"primaryKey;size:192"`
	SortKey             string `gorm:"primaryKey;size:192"`
	AllRecordsPartition string `gorm:"size:128;index:idx_records_all,priority:1"`
	AllRecordsSort      string `gorm:"size:128;index:idx_records_all,priority:2"`
	TypePartition       string `gorm:"size:128;index:idx_records_type,priority:1"`
	TypeSort            string `gorm:"size:128;index:idx_records_type,priority:2"`
	UserID              string `gorm:"size:64"`
	RecordType          string `gorm:"size:32"`
	TimestampMs         int64
	RecordDate          string `gorm:"size:10"` // source-timezone calendar date
	Total               float64
	Payload             []byte `gorm:"type:jsonb"`
	CreatedAt           time.Time
}

func NewPostgresDB(cfg config.DBConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.AutoMigrate(&StoredRecord{}); err != nil {
		return nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	logger.Info("Database connection established and migrations completed")
	return db, nil
}
