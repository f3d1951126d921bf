package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"DATABASE_URL", "PORT", "HOST", "ENVIRONMENT", "CREDENTIAL_KEY",
		"XTREAM_TIMEOUT", "SEARCH_THRESHOLD", "EXPORT_CONCURRENCY", "STATUS_CHECK_INTERVAL",
	} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.SearchThreshold != 0.4 {
		t.Errorf("SearchThreshold = %v, want 0.4", cfg.SearchThreshold)
	}
	if cfg.XtreamTimeout != 30*time.Second {
		t.Errorf("XtreamTimeout = %v, want 30s", cfg.XtreamTimeout)
	}
	if cfg.StatusCheckInterval != 0 {
		t.Errorf("StatusCheckInterval = %v, want 0", cfg.StatusCheckInterval)
	}
	if !cfg.IsDevelopment() {
		t.Error("expected development environment by default")
	}
	if cfg.UsesSQLite() {
		t.Error("default DATABASE_URL should be postgres")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "sqlite:///tmp/vodboard.db")
	t.Setenv("STATUS_CHECK_INTERVAL", "90")
	t.Setenv("XTREAM_TIMEOUT", "5s")
	t.Setenv("SEARCH_THRESHOLD", "0.25")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if !cfg.UsesSQLite() {
		t.Fatal("expected sqlite DATABASE_URL")
	}
	if got := cfg.SQLitePath(); got != "/tmp/vodboard.db" {
		t.Errorf("SQLitePath() = %q", got)
	}
	if cfg.StatusCheckInterval != 90*time.Second {
		t.Errorf("StatusCheckInterval = %v, want 90s", cfg.StatusCheckInterval)
	}
	if cfg.XtreamTimeout != 5*time.Second {
		t.Errorf("XtreamTimeout = %v, want 5s", cfg.XtreamTimeout)
	}
	if cfg.SearchThreshold != 0.25 {
		t.Errorf("SearchThreshold = %v, want 0.25", cfg.SearchThreshold)
	}
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			DatabaseURL:       "postgres://localhost/x",
			Port:              8080,
			SearchThreshold:   0.4,
			ExportConcurrency: 4,
			CatalogLocale:     "en-US",
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{name: "valid", mutate: func(c *Config) {}},
		{name: "missing database", mutate: func(c *Config) { c.DatabaseURL = "" }, wantErr: "DATABASE_URL"},
		{name: "bad port", mutate: func(c *Config) { c.Port = 70000 }, wantErr: "PORT"},
		{name: "threshold out of range", mutate: func(c *Config) { c.SearchThreshold = 1.5 }, wantErr: "SEARCH_THRESHOLD"},
		{name: "zero concurrency", mutate: func(c *Config) { c.ExportConcurrency = 0 }, wantErr: "EXPORT_CONCURRENCY"},
		{name: "bad locale", mutate: func(c *Config) { c.CatalogLocale = "not a tag!" }, wantErr: "CATALOG_LOCALE"},
		{name: "short key", mutate: func(c *Config) { c.CredentialKey = "abcd" }, wantErr: "32 bytes"},
		{
			name:   "hex key",
			mutate: func(c *Config) { c.CredentialKey = strings.Repeat("ab", 32) },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("Validate() error = %v, want mention of %q", err, tt.wantErr)
			}
		})
	}
}
