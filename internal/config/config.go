package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"consolidation-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// Server
	Port        string
	Environment string

	// Collaborators
	EnrichmentServiceURL string
	StorefrontAPIURL     string
	StorefrontAPIToken   string

	// Engine settings
	ConsolidationWorkers  int           // parallel identity writers per pass
	SupplierLoadTimeout   time.Duration // per-supplier snapshot load budget
	StuckJobThreshold     time.Duration // running jobs older than this are reclaimed
	SweepInterval         time.Duration
	SyncRatePerSecond     float64 // storefront publish pacing
	DefaultCurrency       string
	ImportMaxRowErrors    int // rejection samples kept per run
	PublishBatchSize      int
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	workers, _ := strconv.Atoi(getEnv("CONSOLIDATION_WORKERS", "8"))
	maxRowErrors, _ := strconv.Atoi(getEnv("IMPORT_MAX_ROW_ERRORS", "200"))
	publishBatch, _ := strconv.Atoi(getEnv("PUBLISH_BATCH_SIZE", "50"))
	syncRate, _ := strconv.ParseFloat(getEnv("SYNC_RATE_PER_SECOND", "2"), 64)

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "consolidation_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port:        getEnv("PORT", "8094"),
		Environment: getEnv("ENVIRONMENT", "development"),

		EnrichmentServiceURL: getEnv("ENRICHMENT_SERVICE_URL", "http://localhost:8095"),
		StorefrontAPIURL:     getEnv("STOREFRONT_API_URL", ""),
		StorefrontAPIToken:   getEnv("STOREFRONT_API_TOKEN", ""),

		ConsolidationWorkers: workers,
		SupplierLoadTimeout:  getDuration("SUPPLIER_LOAD_TIMEOUT", 30*time.Second),
		StuckJobThreshold:    getDuration("STUCK_JOB_THRESHOLD", 30*time.Minute),
		SweepInterval:        getDuration("SWEEP_INTERVAL", 5*time.Minute),
		SyncRatePerSecond:    syncRate,
		DefaultCurrency:      getEnv("DEFAULT_CURRENCY", "EUR"),
		ImportMaxRowErrors:   maxRowErrors,
		PublishBatchSize:     publishBatch,
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Supplier{},
		&models.SupplierFieldMapping{},
		&models.SupplierOffer{},
		&models.RowRejection{},
		&models.MasterFileEntry{},
		&models.PublishRecord{},
		&models.FilterRule{},
		&models.MarkupRule{},
		&models.JobRun{},
	); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
