package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultEndpointURL is the analysis webhook used when none is configured.
const DefaultEndpointURL = "https://n8n.dpgtestbed.kr/webhook-test/analyzeContract"

// DefaultMaxUploadBytes is the 10 MiB upload limit.
const DefaultMaxUploadBytes int64 = 10 * 1024 * 1024

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Session   SessionConfig   `yaml:"session"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	Archive   ArchiveConfig   `yaml:"archive"`
	Log       LogConfig       `yaml:"log"`
}

type ServerConfig struct {
	Port         int    `yaml:"port"`
	AllowOrigins string `yaml:"allow_origins"`
}

type AnalysisConfig struct {
	EndpointURL    string `yaml:"endpoint_url"`
	FieldName      string `yaml:"field_name"`
	MaxUploadBytes int64  `yaml:"max_upload_bytes"`
	// TimeoutSeconds of 0 means the request has no deadline of its own.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

type SessionConfig struct {
	Secret                 string `yaml:"secret"`
	CookieName             string `yaml:"cookie_name"`
	SecureCookie           bool   `yaml:"secure_cookie"`
	TTLMinutes             int    `yaml:"ttl_minutes"`
	MaxSessions            int    `yaml:"max_sessions"`
	CleanupIntervalMinutes int    `yaml:"cleanup_interval_minutes"`
}

type RateLimitConfig struct {
	Requests      int `yaml:"requests"`
	WindowSeconds int `yaml:"window_seconds"`
}

// ArchiveConfig points at the MinIO bucket that keeps raw analysis
// responses. Archiving is off unless Enabled is set.
type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
	Prefix    string `yaml:"prefix"`
	// Bounds of the in-memory archive used while Enabled is false.
	MemoryMaxReports int `yaml:"memory_max_reports"`
	MemoryTTLMinutes int `yaml:"memory_ttl_minutes"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads a YAML config file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}

	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault behaves like Load but falls back to defaults when the file
// does not exist.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.AllowOrigins == "" {
		c.Server.AllowOrigins = "*"
	}
	if c.Analysis.EndpointURL == "" {
		c.Analysis.EndpointURL = DefaultEndpointURL
	}
	if c.Analysis.FieldName == "" {
		c.Analysis.FieldName = "file"
	}
	if c.Analysis.MaxUploadBytes == 0 {
		c.Analysis.MaxUploadBytes = DefaultMaxUploadBytes
	}
	if c.Session.CookieName == "" {
		c.Session.CookieName = "wg_session"
	}
	if c.Session.TTLMinutes == 0 {
		c.Session.TTLMinutes = 30
	}
	if c.Session.MaxSessions == 0 {
		c.Session.MaxSessions = 1000
	}
	if c.Session.CleanupIntervalMinutes == 0 {
		c.Session.CleanupIntervalMinutes = 5
	}
	if c.RateLimit.Requests == 0 {
		c.RateLimit.Requests = 20
	}
	if c.RateLimit.WindowSeconds == 0 {
		c.RateLimit.WindowSeconds = 60
	}
	if c.Archive.Bucket == "" {
		c.Archive.Bucket = "contract-reports"
	}
	if c.Archive.Prefix == "" {
		c.Archive.Prefix = "reports"
	}
	if c.Archive.MemoryMaxReports == 0 {
		c.Archive.MemoryMaxReports = 500
	}
	if c.Archive.MemoryTTLMinutes == 0 {
		c.Archive.MemoryTTLMinutes = 24 * 60
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// Validate checks values that defaults cannot repair.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Analysis.EndpointURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid analysis.endpoint_url %q", c.Analysis.EndpointURL)
	}
	if c.Analysis.MaxUploadBytes < 0 {
		return fmt.Errorf("analysis.max_upload_bytes must not be negative")
	}
	if c.Analysis.TimeoutSeconds < 0 {
		return fmt.Errorf("analysis.timeout_seconds must not be negative")
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d is out of range", c.Server.Port)
	}
	nonNegative := []struct {
		name  string
		value int
	}{
		{"session.ttl_minutes", c.Session.TTLMinutes},
		{"session.max_sessions", c.Session.MaxSessions},
		{"session.cleanup_interval_minutes", c.Session.CleanupIntervalMinutes},
		{"rate_limit.requests", c.RateLimit.Requests},
		{"rate_limit.window_seconds", c.RateLimit.WindowSeconds},
		{"archive.memory_max_reports", c.Archive.MemoryMaxReports},
		{"archive.memory_ttl_minutes", c.Archive.MemoryTTLMinutes},
	}
	for _, f := range nonNegative {
		if f.value < 0 {
			return fmt.Errorf("%s must not be negative", f.name)
		}
	}
	if c.Archive.Enabled && c.Archive.Endpoint == "" {
		return fmt.Errorf("archive.endpoint is required when archive is enabled")
	}
	return nil
}

// Timeout returns the analysis request timeout; zero means none.
func (a AnalysisConfig) Timeout() time.Duration {
	return time.Duration(a.TimeoutSeconds) * time.Second
}

func (s SessionConfig) TTL() time.Duration {
	return time.Duration(s.TTLMinutes) * time.Minute
}

func (s SessionConfig) CleanupInterval() time.Duration {
	return time.Duration(s.CleanupIntervalMinutes) * time.Minute
}

func (a ArchiveConfig) MemoryTTL() time.Duration {
	return time.Duration(a.MemoryTTLMinutes) * time.Minute
}

func (r RateLimitConfig) Window() time.Duration {
	return time.Duration(r.WindowSeconds) * time.Second
}
