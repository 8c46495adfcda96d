package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Server
	Port            int
	Environment     string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	LogLevel        string

	// Database; an empty URL selects the in-memory store
	DatabaseURL         string
	DBMaxConnections    int
	DBConnectionTimeout time.Duration

	// S3
	S3Bucket        string
	S3Region        string
	AWSEndpoint     string // For LocalStack in development
	S3MirrorEnabled bool

	// Import
	MaxUploadBytes   int64
	Currency         string
	MachineMapFile   string
	DateTimeMode     string
	EnableProfitCalc bool
	StagedBatchTTL   time.Duration

	// Telegram notifications
	TelegramBotToken string
	TelegramChatID   int64
}

func LoadFromEnv() (*Config, error) {
	cfg := &Config{
		Port:                getEnvInt("PORT", 8080),
		Environment:         getEnv("ENVIRONMENT", "development"),
		ShutdownTimeout:     getEnvDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		AllowedOrigins:      getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		DBMaxConnections:    getEnvInt("DB_MAX_CONNECTIONS", 25),
		DBConnectionTimeout: getEnvDuration("DB_CONNECTION_TIMEOUT", 30*time.Second),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Region:            getEnv("S3_REGION", "ap-southeast-1"),
		AWSEndpoint:         getEnv("AWS_ENDPOINT", ""),
		S3MirrorEnabled:     getEnvBool("S3_MIRROR_ENABLED", false),
		MaxUploadBytes:      int64(getEnvInt("MAX_UPLOAD_BYTES", 10*1024*1024)),
		Currency:            getEnv("CURRENCY", "MYR"),
		MachineMapFile:      getEnv("MACHINE_MAP_FILE", ""),
		DateTimeMode:        getEnv("DATETIME_MODE", "auto"),
		EnableProfitCalc:    getEnvBool("ENABLE_PROFIT_CALC", true),
		StagedBatchTTL:      getEnvDuration("STAGED_BATCH_TTL", time.Hour),
		TelegramBotToken:    getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:      getEnvInt64("TELEGRAM_CHAT_ID", 0),
	}

	// Validate required fields
	if cfg.DatabaseURL == "" && cfg.IsProduction() {
		return nil, fmt.Errorf("DATABASE_URL is required in production")
	}
	if cfg.S3Bucket == "" && cfg.IsProduction() {
		return nil, fmt.Errorf("S3_BUCKET is required in production")
	}
	if cfg.S3MirrorEnabled && cfg.S3Bucket == "" {
		return nil, fmt.Errorf("S3_BUCKET is required when S3_MIRROR_ENABLED is set")
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID == 0 {
		return nil, fmt.Errorf("TELEGRAM_CHAT_ID is required when TELEGRAM_BOT_TOKEN is set")
	}
	switch strings.ToLower(cfg.DateTimeMode) {
	case "auto", "separate", "combined":
	default:
		return nil, fmt.Errorf("DATETIME_MODE must be auto, separate or combined, got %q", cfg.DateTimeMode)
	}

	return cfg, nil
}

// IsProduction reports whether the service runs in production
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// LoadMachineNames reads a YAML mapping of terminal identifiers to display names:
//
//	VMCHERAS-5: VM UPTM CHERAS TINGKAT 5
//	HQ-Pantry: Rozita HQ - Pantry
//
// An empty path returns nil so the built-in table is used.
func LoadMachineNames(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read machine map: %w", err)
	}

	names := map[string]string{}
	if err := yaml.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("failed to parse machine map %s: %w", path, err)
	}
	return names, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
