package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9090
  allow_origins: "https://weddingguard.kr"
analysis:
  endpoint_url: "https://hooks.example.com/analyze"
  field_name: "upload"
  max_upload_bytes: 2048
  timeout_seconds: 45
session:
  secret: "s3cret"
  cookie_name: "sid"
  secure_cookie: true
  ttl_minutes: 10
  max_sessions: 50
  cleanup_interval_minutes: 2
rate_limit:
  requests: 3
  window_seconds: 30
archive:
  enabled: true
  endpoint: "localhost:9000"
  access_key: "minioadmin"
  secret_key: "minioadmin"
  bucket: "reports-test"
  prefix: "wg"
log:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("Expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.EndpointURL != "https://hooks.example.com/analyze" {
		t.Errorf("Unexpected endpoint %s", cfg.Analysis.EndpointURL)
	}
	if cfg.Analysis.FieldName != "upload" {
		t.Errorf("Expected field name upload, got %s", cfg.Analysis.FieldName)
	}
	if cfg.Analysis.MaxUploadBytes != 2048 {
		t.Errorf("Expected max_upload_bytes 2048, got %d", cfg.Analysis.MaxUploadBytes)
	}
	if cfg.Analysis.Timeout() != 45*time.Second {
		t.Errorf("Expected timeout 45s, got %v", cfg.Analysis.Timeout())
	}
	if cfg.Session.TTL() != 10*time.Minute {
		t.Errorf("Expected session ttl 10m, got %v", cfg.Session.TTL())
	}
	if cfg.Session.CleanupInterval() != 2*time.Minute {
		t.Errorf("Expected cleanup interval 2m, got %v", cfg.Session.CleanupInterval())
	}
	if !cfg.Session.SecureCookie {
		t.Error("Expected secure cookie")
	}
	if cfg.RateLimit.Requests != 3 || cfg.RateLimit.Window() != 30*time.Second {
		t.Errorf("Unexpected rate limit %+v", cfg.RateLimit)
	}
	if !cfg.Archive.Enabled || cfg.Archive.Bucket != "reports-test" || cfg.Archive.Prefix != "wg" {
		t.Errorf("Unexpected archive config %+v", cfg.Archive)
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Unexpected log config %+v", cfg.Log)
	}
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 0\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Analysis.EndpointURL != DefaultEndpointURL {
		t.Errorf("Expected default endpoint, got %s", cfg.Analysis.EndpointURL)
	}
	if cfg.Analysis.FieldName != "file" {
		t.Errorf("Expected default field name file, got %s", cfg.Analysis.FieldName)
	}
	if cfg.Analysis.MaxUploadBytes != 10485760 {
		t.Errorf("Expected default max upload 10485760, got %d", cfg.Analysis.MaxUploadBytes)
	}
	if cfg.Analysis.Timeout() != 0 {
		t.Errorf("Expected no timeout by default, got %v", cfg.Analysis.Timeout())
	}
	if cfg.Session.CookieName != "wg_session" {
		t.Errorf("Expected default cookie wg_session, got %s", cfg.Session.CookieName)
	}
	if cfg.Archive.Enabled {
		t.Error("Expected archive disabled by default")
	}
	if cfg.Archive.MemoryMaxReports != 500 || cfg.Archive.MemoryTTL() != 24*time.Hour {
		t.Errorf("Unexpected memory archive bounds %d / %v", cfg.Archive.MemoryMaxReports, cfg.Archive.MemoryTTL())
	}
	if cfg.Log.Level != "info" {
		t.Errorf("Expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Log.Format != "text" {
		t.Errorf("Expected default log format text, got %s", cfg.Log.Format)
	}
}

func TestLoadNonExistent(t *testing.T) {
	_, err := Load("nonexistent.yaml")
	if err == nil {
		t.Error("Expected error for non-existent file")
	}
}

func TestLoadOrDefault(t *testing.T) {
	cfg, err := LoadOrDefault(filepath.Join(t.TempDir(), "missing.yaml"))
	if err != nil {
		t.Fatalf("Expected defaults for missing file, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Expected default port 8080, got %d", cfg.Server.Port)
	}

	_, err = LoadOrDefault(writeConfig(t, "invalid: yaml: content:"))
	if err == nil {
		t.Error("Expected parse error to be returned")
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "invalid: yaml: content:"))
	if err == nil {
		t.Error("Expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"relative endpoint", func(c *Config) { c.Analysis.EndpointURL = "/analyze" }, true},
		{"ftp endpoint", func(c *Config) { c.Analysis.EndpointURL = "ftp://host/x" }, true},
		{"negative timeout", func(c *Config) { c.Analysis.TimeoutSeconds = -1 }, true},
		{"negative port", func(c *Config) { c.Server.Port = -1 }, true},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }, true},
		{"negative session ttl", func(c *Config) { c.Session.TTLMinutes = -5 }, true},
		{"negative max sessions", func(c *Config) { c.Session.MaxSessions = -1 }, true},
		{"negative cleanup interval", func(c *Config) { c.Session.CleanupIntervalMinutes = -1 }, true},
		{"negative rate limit requests", func(c *Config) { c.RateLimit.Requests = -1 }, true},
		{"negative rate limit window", func(c *Config) { c.RateLimit.WindowSeconds = -30 }, true},
		{"negative memory archive cap", func(c *Config) { c.Archive.MemoryMaxReports = -1 }, true},
		{"negative memory archive ttl", func(c *Config) { c.Archive.MemoryTTLMinutes = -1 }, true},
		{"archive without endpoint", func(c *Config) { c.Archive.Enabled = true }, true},
		{"archive with endpoint", func(c *Config) {
			c.Archive.Enabled = true
			c.Archive.Endpoint = "localhost:9000"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadRejectsNegativeCleanupInterval(t *testing.T) {
	_, err := Load(writeConfig(t, "session:\n  cleanup_interval_minutes: -1\n"))
	if err == nil {
		t.Error("Expected negative cleanup interval to be rejected")
	}
}
