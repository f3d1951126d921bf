package config

import (
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
)

// Config holds the application configuration
type Config struct {
	// Database
	DatabaseURL string

	// Server
	Port       int
	Host       string
	CORSOrigin string

	// Environment
	Environment string
	LogLevel    string

	// CredentialKey seals stored server passwords when set (32 bytes, hex or base64)
	CredentialKey string

	// Remote catalog client
	XtreamTimeout   time.Duration
	XtreamUserAgent string
	XtreamRateLimit float64 // requests per second per client, 0 = unlimited

	// Export fan-out
	ExportConcurrency int

	// Catalog pipeline
	SearchThreshold float64
	SearchDistance  int
	CatalogLocale   string

	// Status re-check, 0 disables the background checker
	StatusCheckInterval time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL:         getEnv("DATABASE_URL", "postgres://localhost:5432/vodboard?sslmode=disable"),
		Port:                getEnvAsInt("PORT", 8080),
		Host:                getEnv("HOST", "0.0.0.0"),
		CORSOrigin:          getEnv("CORS_ORIGIN", "http://localhost:3000"),
		Environment:         getEnv("ENVIRONMENT", "development"),
		LogLevel:            getEnv("LOG_LEVEL", ""),
		CredentialKey:       getEnv("CREDENTIAL_KEY", ""),
		XtreamTimeout:       getEnvAsDuration("XTREAM_TIMEOUT", 30*time.Second),
		XtreamUserAgent:     getEnv("XTREAM_USER_AGENT", "vodboard/1.0"),
		XtreamRateLimit:     getEnvAsFloat("XTREAM_RATE_LIMIT", 0),
		ExportConcurrency:   getEnvAsInt("EXPORT_CONCURRENCY", 8),
		SearchThreshold:     getEnvAsFloat("SEARCH_THRESHOLD", 0.4),
		SearchDistance:      getEnvAsInt("SEARCH_DISTANCE", 100),
		CatalogLocale:       getEnv("CATALOG_LOCALE", "und"),
		StatusCheckInterval: getEnvAsDuration("STATUS_CHECK_INTERVAL", 0),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}

	if c.SearchThreshold < 0 || c.SearchThreshold > 1 {
		return fmt.Errorf("SEARCH_THRESHOLD must be between 0 and 1")
	}

	if c.ExportConcurrency <= 0 {
		return fmt.Errorf("EXPORT_CONCURRENCY must be positive")
	}

	if c.XtreamRateLimit < 0 {
		return fmt.Errorf("XTREAM_RATE_LIMIT must not be negative")
	}

	if _, err := language.Parse(c.CatalogLocale); err != nil {
		return fmt.Errorf("CATALOG_LOCALE is not a valid language tag: %w", err)
	}

	if c.CredentialKey != "" {
		if _, err := c.CredentialKeyBytes(); err != nil {
			return err
		}
	}

	return nil
}

// CredentialKeyBytes decodes CREDENTIAL_KEY. A nil slice means sealing is disabled.
func (c *Config) CredentialKeyBytes() ([]byte, error) {
	if c.CredentialKey == "" {
		return nil, nil
	}
	key, err := hex.DecodeString(c.CredentialKey)
	if err != nil {
		key, err = base64.StdEncoding.DecodeString(c.CredentialKey)
		if err != nil {
			return nil, fmt.Errorf("CREDENTIAL_KEY must be hex or base64")
		}
	}
	if len(key) != 32 {
		return nil, fmt.Errorf("CREDENTIAL_KEY must decode to 32 bytes, got %d", len(key))
	}
	return key, nil
}

// Locale returns the parsed catalog locale
func (c *Config) Locale() language.Tag {
	tag, err := language.Parse(c.CatalogLocale)
	if err != nil {
		return language.Und
	}
	return tag
}

// UsesSQLite reports whether DATABASE_URL points at a SQLite file
func (c *Config) UsesSQLite() bool {
	return strings.HasPrefix(c.DatabaseURL, "sqlite://") || strings.HasPrefix(c.DatabaseURL, "file:")
}

// SQLitePath strips the sqlite:// scheme from DATABASE_URL
func (c *Config) SQLitePath() string {
	return strings.TrimPrefix(c.DatabaseURL, "sqlite://")
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseFloat(valueStr, 64)
	if err != nil {
		return defaultValue
	}

	return value
}

// getEnvAsDuration accepts Go duration strings ("30s") or plain seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(secs) * time.Second
	}

	return defaultValue
}
