package common

import (
	"os"
	"strconv"
	"time"

	"github.com/joseph-ayodele/labels-tracker/constants"
)

// Config holds all application configuration
type Config struct {
	Database   DatabaseConfig
	Server     ServerConfig
	Extraction ExtractionConfig
	Ingest     IngestConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	SQLitePath       string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
	ConnectAttempts  int
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
}

// ExtractionConfig holds region sampling configuration
type ExtractionConfig struct {
	LayoutsFile   string
	RenderScale   float64
	Tolerance     float64
	LineTolerance float64
	DefaultRegion string
	Printer       string
}

// IngestConfig holds inbox watcher configuration
type IngestConfig struct {
	InboxDir  string
	OutputDir string
	Debounce  time.Duration
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			SQLitePath:       getEnv("SQLITE_PATH", ""),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 10),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 1),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
			ConnectAttempts:  getEnvAsInt("DB_CONNECT_ATTEMPTS", 3),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
		},
		Extraction: ExtractionConfig{
			LayoutsFile:   getEnv("LABELS_LAYOUTS_FILE", ""),
			RenderScale:   getEnvAsFloat64("LABELS_RENDER_SCALE", 1.5),
			Tolerance:     getEnvAsFloat64("LABELS_TOLERANCE", 0),
			LineTolerance: getEnvAsFloat64("LABELS_LINE_TOLERANCE", 2),
			DefaultRegion: getEnv("LABELS_DEFAULT_REGION", constants.DefaultRegionName),
			Printer:       getEnv("LABELS_PRINTER", ""),
		},
		Ingest: IngestConfig{
			InboxDir:  getEnv("LABELS_INBOX_DIR", "./inbox"),
			OutputDir: getEnv("LABELS_OUTPUT_DIR", "./out"),
			Debounce:  getEnvAsDuration("LABELS_DEBOUNCE", 500*time.Millisecond),
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

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
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

// HasStore reports whether a folio store is configured.
func (c *Config) HasStore() bool {
	return c.Database.HasStore()
}

// HasStore reports whether either a DSN or a SQLite path is set.
func (d DatabaseConfig) HasStore() bool {
	return d.DSN != "" || d.SQLitePath != ""
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.Extraction.RenderScale <= 0 {
		return ConfigurationError("LABELS_RENDER_SCALE must be positive, got %v", c.Extraction.RenderScale)
	}
	if c.Extraction.Tolerance < 0 {
		return ConfigurationError("LABELS_TOLERANCE must not be negative, got %v", c.Extraction.Tolerance)
	}
	if c.Extraction.LineTolerance <= 0 {
		return ConfigurationError("LABELS_LINE_TOLERANCE must be positive, got %v", c.Extraction.LineTolerance)
	}
	if c.Database.ConnectAttempts < 1 {
		return ConfigurationError("DB_CONNECT_ATTEMPTS must be at least 1")
	}
	if c.Server.GRPCAddr == "" {
		return ConfigurationError("GRPC_ADDR is required")
	}
	return nil
}
