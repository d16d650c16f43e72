// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/cv-wizard/internal/pages"
	"github.com/jonathan/cv-wizard/internal/storage"
)

// Defaults applied by MergeWithDefaults when a field is unset.
const (
	DefaultPort              = 8080
	DefaultSessionTTLMinutes = 120
	DefaultCaptureScale      = 2.0
	DefaultCaptureTimeout    = 30
	DefaultExportsPerMinute  = 6
)

// Config represents the configuration that can be loaded from a JSON file
// and overridden from the environment. All fields are optional.
type Config struct {
	// Server
	Port             int `json:"port,omitempty"`
	ExportsPerMinute int `json:"exports_per_minute,omitempty"` // Export requests allowed per client IP

	// Snapshot storage
	Storage           string `json:"storage,omitempty"`             // memory | redis | postgres
	RedisAddr         string `json:"redis_addr,omitempty"`          // host:port of the redis server
	RedisPassword     string `json:"redis_password,omitempty"`      // Optional redis password
	DatabaseURL       string `json:"database_url,omitempty"`        // PostgreSQL connection URL
	SessionTTLMinutes int    `json:"session_ttl_minutes,omitempty"` // Idle snapshot lifetime
	SnapshotKey       string `json:"snapshot_key,omitempty"`        // 64 hex chars; seals snapshots at rest when set

	// Export
	ChromePath     string  `json:"chrome_path,omitempty"`     // Chrome binary; empty uses the default lookup
	CaptureScale   float64 `json:"capture_scale,omitempty"`   // Device pixel oversampling
	CaptureTimeout int     `json:"capture_timeout,omitempty"` // Seconds allowed per capture
	PaperSize      string  `json:"paper_size,omitempty"`      // a4 | letter
	MaxPhotoBytes  int64   `json:"max_photo_bytes,omitempty"` // Upload cap for profile photos

	// Behavior
	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv returns a Config populated from environment variables. Unset or
// unparsable numeric variables are left at zero.
func FromEnv() Config {
	cfg := Config{
		Storage:       os.Getenv("STORAGE_BACKEND"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		DatabaseURL:   os.Getenv("DATABASE_URL"),
		SnapshotKey:   os.Getenv("SNAPSHOT_KEY"),
		ChromePath:    os.Getenv("CHROME_PATH"),
		PaperSize:     os.Getenv("PAPER_SIZE"),
	}
	cfg.Port, _ = strconv.Atoi(os.Getenv("PORT"))
	cfg.ExportsPerMinute, _ = strconv.Atoi(os.Getenv("EXPORTS_PER_MINUTE"))
	cfg.SessionTTLMinutes, _ = strconv.Atoi(os.Getenv("SESSION_TTL_MINUTES"))
	cfg.CaptureTimeout, _ = strconv.Atoi(os.Getenv("CAPTURE_TIMEOUT"))
	cfg.CaptureScale, _ = strconv.ParseFloat(os.Getenv("CAPTURE_SCALE"), 64)
	cfg.MaxPhotoBytes, _ = strconv.ParseInt(os.Getenv("MAX_PHOTO_BYTES"), 10, 64)
	return cfg
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.ExportsPerMinute < 0 {
		return fmt.Errorf("config error: 'exports_per_minute' must be non-negative")
	}
	if c.SessionTTLMinutes < 0 {
		return fmt.Errorf("config error: 'session_ttl_minutes' must be non-negative")
	}
	if c.CaptureScale < 0 || c.CaptureScale > 4 {
		return fmt.Errorf("config error: 'capture_scale' must be between 0 and 4")
	}
	if c.CaptureTimeout < 0 {
		return fmt.Errorf("config error: 'capture_timeout' must be non-negative")
	}
	if c.MaxPhotoBytes < 0 {
		return fmt.Errorf("config error: 'max_photo_bytes' must be non-negative")
	}

	backend, err := storage.ParseBackend(c.Storage)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if backend == storage.BackendRedis && c.RedisAddr == "" {
		return fmt.Errorf("config error: 'redis_addr' is required for the redis backend")
	}
	if backend == storage.BackendPostgres && c.DatabaseURL == "" {
		return fmt.Errorf("config error: 'database_url' is required for the postgres backend")
	}

	if c.SnapshotKey != "" {
		key, err := hex.DecodeString(strings.TrimSpace(c.SnapshotKey))
		if err != nil || len(key) != 32 {
			return fmt.Errorf("config error: 'snapshot_key' must be 64 hex characters")
		}
	}

	if _, err := pages.ParsePaperSize(c.PaperSize); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if c.ChromePath != "" {
		if _, err := os.Stat(c.ChromePath); os.IsNotExist(err) {
			return fmt.Errorf("config error: chrome binary not found: %s", c.ChromePath)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// falling back to the package defaults when both are unset.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	// String fields: use default if empty
	if result.Storage == "" {
		result.Storage = defaults.Storage
	}
	if result.RedisAddr == "" {
		result.RedisAddr = defaults.RedisAddr
	}
	if result.RedisPassword == "" {
		result.RedisPassword = defaults.RedisPassword
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.SnapshotKey == "" {
		result.SnapshotKey = defaults.SnapshotKey
	}
	if result.ChromePath == "" {
		result.ChromePath = defaults.ChromePath
	}
	if result.PaperSize == "" {
		result.PaperSize = defaults.PaperSize
	}

	// Numeric fields: use default if zero
	result.Port = firstPositive(result.Port, defaults.Port, DefaultPort)
	result.ExportsPerMinute = firstPositive(result.ExportsPerMinute, defaults.ExportsPerMinute, DefaultExportsPerMinute)
	result.SessionTTLMinutes = firstPositive(result.SessionTTLMinutes, defaults.SessionTTLMinutes, DefaultSessionTTLMinutes)
	result.CaptureTimeout = firstPositive(result.CaptureTimeout, defaults.CaptureTimeout, DefaultCaptureTimeout)
	result.CaptureScale = firstPositive(result.CaptureScale, defaults.CaptureScale, DefaultCaptureScale)
	result.MaxPhotoBytes = firstPositive(result.MaxPhotoBytes, defaults.MaxPhotoBytes, 0)

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}

// SessionTTL returns the idle snapshot lifetime.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// CaptureTimeoutDuration returns the per-capture timeout.
func (c *Config) CaptureTimeoutDuration() time.Duration {
	return time.Duration(c.CaptureTimeout) * time.Second
}

func firstPositive[T int | int64 | float64](values ...T) T {
	for _, v := range values {
		if v > 0 {
			return v
		}
	}
	var zero T
	return zero
}
