package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Extraction ExtractionConfig
	Queue      QueueConfig
	Log        LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN             string
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
	DialTimeout     time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	HTTPAddr        string
	ShutdownTimeout time.Duration
}

// ExtractionConfig holds the tunables of the extraction pipeline.
type ExtractionConfig struct {
	MinAmount         int64
	MaxAmount         int64
	FallbackMinAmount int64
	TotalTolerance    decimal.Decimal
	TaxRate           decimal.Decimal
	PlaceholderName   string
	VendorSentinel    string
	FoldWidth         bool
	MaskDates         bool
	SkipSummaryRows   bool
	StatutoryKeywords bool
}

// QueueConfig holds batch worker queue configuration
type QueueConfig struct {
	Workers    int
	Size       int
	JobTimeout time.Duration
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from environment variables, after merging a
// .env file from the working directory if one exists.
func LoadConfig() *Config {
	_ = godotenv.Load()
	return &Config{
		Database: DatabaseConfig{
			DSN:             getEnv("DB_URL", "file:estimates.db"),
			MaxConns:        getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:     getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
		},
		Server: ServerConfig{
			HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
			ShutdownTimeout: getEnvAsDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Extraction: ExtractionConfig{
			MinAmount:         getEnvAsInt64("EXTRACT_MIN_AMOUNT", 100),
			MaxAmount:         getEnvAsInt64("EXTRACT_MAX_AMOUNT", 1_000_000),
			FallbackMinAmount: getEnvAsInt64("EXTRACT_FALLBACK_MIN_AMOUNT", 1000),
			TotalTolerance:    getEnvAsDecimal("EXTRACT_TOTAL_TOLERANCE", decimal.NewFromFloat(0.05)),
			TaxRate:           getEnvAsDecimal("EXTRACT_TAX_RATE", decimal.NewFromFloat(0.10)),
			PlaceholderName:   getEnv("EXTRACT_PLACEHOLDER_NAME", "見積明細一式"),
			VendorSentinel:    getEnv("EXTRACT_VENDOR_SENTINEL", "Unknown Vendor"),
			FoldWidth:         getEnvAsBool("EXTRACT_FOLD_WIDTH", true),
			MaskDates:         getEnvAsBool("EXTRACT_MASK_DATES", true),
			SkipSummaryRows:   getEnvAsBool("EXTRACT_SKIP_SUMMARY_ROWS", true),
			StatutoryKeywords: getEnvAsBool("EXTRACT_STATUTORY_KEYWORDS", false),
		},
		Queue: QueueConfig{
			Workers:    getEnvAsInt("QUEUE_WORKERS", 4),
			Size:       getEnvAsInt("QUEUE_SIZE", 64),
			JobTimeout: getEnvAsDuration("QUEUE_JOB_TIMEOUT", 30*time.Second),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsInt32(key string, defaultValue int32) int32 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 32); err == nil {
			return int32(intVal)
		}
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	if value := os.Getenv(key); value != "" {
		if d, err := decimal.NewFromString(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	ex := c.Extraction
	if ex.MinAmount <= 0 {
		return NewAppError("CONFIG_ERROR", "EXTRACT_MIN_AMOUNT must be positive", ErrInvalidInput)
	}
	if ex.MaxAmount < ex.MinAmount {
		return NewAppError("CONFIG_ERROR", "EXTRACT_MAX_AMOUNT must be >= EXTRACT_MIN_AMOUNT", ErrInvalidInput)
	}
	if ex.FallbackMinAmount <= 0 || ex.FallbackMinAmount > ex.MaxAmount {
		return NewAppError("CONFIG_ERROR", "EXTRACT_FALLBACK_MIN_AMOUNT out of range", ErrInvalidInput)
	}
	if ex.TotalTolerance.IsNegative() || ex.TotalTolerance.GreaterThanOrEqual(decimal.NewFromInt(1)) {
		return NewAppError("CONFIG_ERROR", "EXTRACT_TOTAL_TOLERANCE must be in [0,1)", ErrInvalidInput)
	}
	if ex.TaxRate.IsNegative() {
		return NewAppError("CONFIG_ERROR", "EXTRACT_TAX_RATE must not be negative", ErrInvalidInput)
	}
	if ex.PlaceholderName == "" {
		return NewAppError("CONFIG_ERROR", "EXTRACT_PLACEHOLDER_NAME is required", ErrInvalidInput)
	}
	if c.Queue.Workers <= 0 {
		return NewAppError("CONFIG_ERROR", "QUEUE_WORKERS must be positive", ErrInvalidInput)
	}
	return nil
}

// ValidateServer adds the checks only the HTTP daemon needs.
func (c *Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Server.HTTPAddr == "" {
		return NewAppError("CONFIG_ERROR", "HTTP_ADDR is required", ErrInvalidInput)
	}
	if c.Database.DSN == "" {
		return NewAppError("CONFIG_ERROR", "DB_URL is required", ErrInvalidInput)
	}
	return nil
}
