package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	OCR      OCRConfig
	Pipeline PipelineConfig
	LogLevel slog.Level
}

// ServerConfig holds HTTP API settings.
type ServerConfig struct {
	Addr           string
	MaxUploadMB    int
	RequestTimeout time.Duration
	MetricsEnabled bool
}

// OCRConfig holds image fallback settings.
type OCRConfig struct {
	Enabled     bool
	DPI         int
	Lang        string
	Tesseract   string
	TessdataDir string
	PSM         int
	OEM         int
	Workers     int
}

// PipelineConfig holds extraction settings.
type PipelineConfig struct {
	Region          string // issuer profile set: in, us, uk
	MaxTransactions int
}

// Load reads configuration from the environment, after loading a .env file
// from the working directory when one exists.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Addr:           getEnv("SERVER_ADDR", ":8080"),
			MaxUploadMB:    getEnvAsInt("MAX_UPLOAD_MB", 16),
			RequestTimeout: getEnvAsDuration("REQUEST_TIMEOUT", 2*time.Minute),
			MetricsEnabled: getEnvAsBool("METRICS_ENABLED", true),
		},
		OCR: OCRConfig{
			Enabled:     getEnvAsBool("OCR_ENABLED", true),
			DPI:         getEnvAsInt("OCR_DPI", 300),
			Lang:        getEnv("OCR_LANG", "eng"),
			Tesseract:   getEnv("TESSERACT_PATH", "tesseract"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			PSM:         getEnvAsInt("OCR_PSM", 6),
			OEM:         getEnvAsInt("OCR_OEM", 3),
			Workers:     getEnvAsInt("OCR_WORKERS", 4),
		},
		Pipeline: PipelineConfig{
			Region:          strings.ToLower(getEnv("ISSUER_REGION", "in")),
			MaxTransactions: getEnvAsInt("MAX_TRANSACTIONS", 10),
		},
	}

	level, err := parseLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot use.
func (c *Config) Validate() error {
	if c.Server.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.Server.MaxUploadMB)
	}
	if c.OCR.DPI < 72 {
		return fmt.Errorf("OCR_DPI must be at least 72, got %d", c.OCR.DPI)
	}
	if c.OCR.Workers <= 0 {
		return fmt.Errorf("OCR_WORKERS must be positive, got %d", c.OCR.Workers)
	}
	if c.Pipeline.MaxTransactions <= 0 {
		return fmt.Errorf("MAX_TRANSACTIONS must be positive, got %d", c.Pipeline.MaxTransactions)
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
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
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
