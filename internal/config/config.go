package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vladimiradmaev/glucose-sync/internal/logger"
)

type Config struct {
	DB     DBConfig
	Redis  RedisConfig
	Sync   SyncConfig
	Logger LoggerConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

type RedisConfig struct {
	Host    string
	Port    string
	Enabled bool
}

// SyncConfig configures one ingestion run.
type SyncConfig struct {
	UserID         string
	SourceTimezone string // IANA name of the zone the platform records naive timestamps in
	BatchSize      int    // per-request item limit of the store
	ArchivePath    string // optional default export archive to ingest
}

type LoggerConfig struct {
	Level      logger.LogLevel
	OutputPath string
	Format     string
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "debug":
		return logger.LevelDebug
	case "info":
		return logger.LevelInfo
	case "warn", "warning":
		return logger.LevelWarn
	case "error":
		return logger.LevelError
	default:
		return logger.LevelInfo
	}
}

func Load() (*Config, error) {
	batchSize, err := strconv.Atoi(getEnvOrDefault("STORE_BATCH_SIZE", "25"))
	if err != nil || batchSize <= 0 {
		return nil, fmt.Errorf("invalid STORE_BATCH_SIZE: %q", os.Getenv("STORE_BATCH_SIZE"))
	}

	sourceTZ := getEnvOrDefault("SOURCE_TIMEZONE", "America/Los_Angeles")
	if _, err := time.LoadLocation(sourceTZ); err != nil {
		return nil, fmt.Errorf("invalid SOURCE_TIMEZONE %q: %w", sourceTZ, err)
	}

	return &Config{
		DB: DBConfig{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     getEnvOrDefault("DB_PORT", "5432"),
			User:     getEnvOrDefault("DB_USER", "postgres"),
			Password: getEnvOrDefault("DB_PASSWORD", "postgres"),
			DBName:   getEnvOrDefault("DB_NAME", "glucose_sync"),
		},
		Redis: RedisConfig{
			Host:    getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:    getEnvOrDefault("REDIS_PORT", "6379"),
			Enabled: getEnvOrDefault("REDIS_ENABLED", "false") == "true",
		},
		Sync: SyncConfig{
			UserID:         getEnvOrDefault("SYNC_USER_ID", "default"),
			SourceTimezone: sourceTZ,
			BatchSize:      batchSize,
			ArchivePath:    os.Getenv("EXPORT_ARCHIVE_PATH"),
		},
		Logger: LoggerConfig{
			Level:      parseLogLevel(getEnvOrDefault("LOG_LEVEL", "info")),
			OutputPath: getEnvOrDefault("LOG_OUTPUT", "stdout"),
			Format:     getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}, nil
}
