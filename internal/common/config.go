package common

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Database    DatabaseConfig
	Server      ServerConfig
	TextExtract TextExtractConfig
	LLM         LLMConfig
	Blob        BlobConfig
	Import      ImportConfig
	Log         LogConfig
}

// DatabaseConfig holds database-related configuration
type DatabaseConfig struct {
	DSN              string
	InMemory         bool
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	GRPCAddr string
	HTTPAddr string
}

// TextExtractConfig holds pdftotext-related configuration
type TextExtractConfig struct {
	Pdftotext string
	MaxPages  int
}

// LLMConfig holds oracle-related configuration
type LLMConfig struct {
	Provider          string // openai | gemini
	Model             string
	APIKey            string
	GeminiAPIKey      string
	GeminiModel       string
	Temperature       float32
	Timeout           time.Duration
	RequestsPerMinute int
}

// BlobConfig holds document storage configuration
type BlobConfig struct {
	Backend   string // minio | fs
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
	LocalDir  string
}

// ImportConfig tunes the extraction worker pool
type ImportConfig struct {
	ExtractWorkers int
	QueueSize      int
	ExtractTimeout time.Duration
	MaxUploadBytes int64
	WatchDir       string // inbox directory; empty disables the watcher
	WatchDebounce  time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

// LoadConfig loads configuration from a .env file (if present) and environment variables
func LoadConfig() *Config {
	// Missing .env is the normal case outside local development.
	_ = godotenv.Load()

	return &Config{
		Database: DatabaseConfig{
			DSN:              getEnv("DB_URL", ""),
			InMemory:         getEnvAsBool("DB_INMEM", false),
			MaxConns:         getEnvAsInt32("DB_MAX_CONNS", 20),
			MinConns:         getEnvAsInt32("DB_MIN_CONNS", 2),
			MaxConnLifetime:  getEnvAsDuration("DB_MAX_CONN_LIFETIME", 30*time.Minute),
			MaxConnIdleTime:  getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", 5*time.Minute),
			DialTimeout:      getEnvAsDuration("DB_DIAL_TIMEOUT", 3*time.Second),
			StatementTimeout: getEnvAsDuration("DB_STATEMENT_TIMEOUT", 0),
		},
		Server: ServerConfig{
			GRPCAddr: getEnv("GRPC_ADDR", ":8080"),
			HTTPAddr: getEnv("HTTP_ADDR", ":8081"),
		},
		TextExtract: TextExtractConfig{
			Pdftotext: getEnv("PDFTOTEXT", "pdftotext"),
			MaxPages:  getEnvAsInt("PDF_MAX_PAGES", 0),
		},
		LLM: LLMConfig{
			Provider:          strings.ToLower(getEnv("LLM_PROVIDER", "openai")),
			Model:             getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			APIKey:            getEnv("OPENAI_API_KEY", ""),
			GeminiAPIKey:      getEnv("GEMINI_API_KEY", ""),
			GeminiModel:       getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			Temperature:       getEnvAsFloat32("LLM_TEMPERATURE", 0.0),
			Timeout:           getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			RequestsPerMinute: getEnvAsInt("LLM_REQUESTS_PER_MINUTE", 30),
		},
		Blob: BlobConfig{
			Backend:   strings.ToLower(getEnv("BLOB_BACKEND", "fs")),
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "documents"),
			UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			LocalDir:  getEnv("BLOB_LOCAL_DIR", "./tmp/documents"),
		},
		Import: ImportConfig{
			ExtractWorkers: getEnvAsInt("EXTRACT_WORKERS", 4),
			QueueSize:      getEnvAsInt("EXTRACT_QUEUE_SIZE", 128),
			ExtractTimeout: getEnvAsDuration("EXTRACT_TIMEOUT", 3*time.Minute),
			MaxUploadBytes: int64(getEnvAsInt("MAX_UPLOAD_BYTES", 25<<20)),
			WatchDir:       getEnv("WATCH_DIR", ""),
			WatchDebounce:  getEnvAsDuration("WATCH_DEBOUNCE", 500*time.Millisecond),
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

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
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
	if c.Database.DSN == "" && !c.Database.InMemory {
		return NewAppError("CONFIG_ERROR", "DB_URL is required unless DB_INMEM=true", ErrInvalidInput)
	}
	switch c.LLM.Provider {
	case "openai":
		if c.LLM.APIKey == "" {
			return NewAppError("CONFIG_ERROR", "OPENAI_API_KEY is required", ErrInvalidInput)
		}
	case "gemini":
		if c.LLM.GeminiAPIKey == "" {
			return NewAppError("CONFIG_ERROR", "GEMINI_API_KEY is required", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "LLM_PROVIDER must be openai or gemini", ErrInvalidInput)
	}
	switch c.Blob.Backend {
	case "fs":
	case "minio":
		if c.Blob.Endpoint == "" || c.Blob.Bucket == "" {
			return NewAppError("CONFIG_ERROR", "MINIO_ENDPOINT and MINIO_BUCKET are required", ErrInvalidInput)
		}
	default:
		return NewAppError("CONFIG_ERROR", "BLOB_BACKEND must be minio or fs", ErrInvalidInput)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError("CONFIG_ERROR", "GRPC_ADDR is required", ErrInvalidInput)
	}
	return nil
}

// NewLogger builds the process logger from LogConfig.
func NewLogger(cfg LogConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.ToLower(cfg.Format) == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
