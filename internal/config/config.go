// Package config provides configuration types and loading for the PDF
// editor service. Configuration comes from a YAML file, overridable
// per key through PDF_EDITOR_* environment variables.
package config

import (
	"os"
	"time"
)

// Config is the top-level configuration.
type Config struct {
	// Server configures the HTTP listener.
	Server ServerConfig `yaml:"server" mapstructure:"server"`

	// Storage configures upload handling and temp file placement.
	Storage StorageConfig `yaml:"storage" mapstructure:"storage"`

	// Session configures idle expiry and the reaper.
	Session SessionConfig `yaml:"session" mapstructure:"session"`

	// Render configures page preview rendering.
	Render RenderConfig `yaml:"render" mapstructure:"render"`

	// RateLimit configures optional per-client rate limiting.
	RateLimit RateLimitConfig `yaml:"rate_limit" mapstructure:"rate_limit"`

	// Auth configures optional API key authentication.
	// When no key hashes are configured, the API is open.
	Auth AuthConfig `yaml:"auth" mapstructure:"auth"`

	// Log configures structured logging.
	Log LogConfig `yaml:"log" mapstructure:"log"`

	// DevMode enables development features (verbose logging, etc).
	DevMode bool `yaml:"dev_mode" mapstructure:"dev_mode"`
}

// ServerConfig configures the HTTP server listener.
type ServerConfig struct {
	// HTTPAddr is the listen address, e.g. "127.0.0.1:8090".
	HTTPAddr string `yaml:"http_addr" mapstructure:"http_addr" validate:"required,hostname_port"`
	// ShutdownTimeout bounds graceful drain at shutdown.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
}

// StorageConfig configures where uploads and working copies live.
type StorageConfig struct {
	// TempDir holds persisted session files. Default: a "pdf-editor"
	// directory under the OS temp dir.
	TempDir string `yaml:"temp_dir" mapstructure:"temp_dir" validate:"required"`
	// WorkDir holds per-session working copies. Default: TempDir/work.
	WorkDir string `yaml:"work_dir" mapstructure:"work_dir"`
	// MaxUploadMB caps the accepted upload size in megabytes.
	MaxUploadMB int `yaml:"max_upload_mb" mapstructure:"max_upload_mb" validate:"min=1,max=1024"`
}

// SessionConfig configures the session lifecycle.
type SessionConfig struct {
	// IdleTimeout is how long a session may go without a lookup
	// before the reaper destroys it.
	IdleTimeout time.Duration `yaml:"idle_timeout" mapstructure:"idle_timeout"`
	// ReapInterval is how often the reaper sweeps.
	ReapInterval time.Duration `yaml:"reap_interval" mapstructure:"reap_interval"`
}

// RenderConfig configures page previews.
type RenderConfig struct {
	// MaxZoom caps the preview zoom factor. Default: 4.
	MaxZoom float64 `yaml:"max_zoom" mapstructure:"max_zoom"`
}

// RateLimitConfig configures per-client-IP request limiting.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active. Default: false.
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`
	// RequestsPerMinute is the sustained per-client rate.
	RequestsPerMinute int `yaml:"requests_per_minute" mapstructure:"requests_per_minute" validate:"omitempty,min=1"`
	// Burst is the number of requests a client may send at once.
	Burst int `yaml:"burst" mapstructure:"burst" validate:"omitempty,min=1"`
	// CleanupInterval is how often stale limiter keys are dropped.
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
	// MaxTTL is the maximum age of an idle limiter key.
	MaxTTL time.Duration `yaml:"max_ttl" mapstructure:"max_ttl"`
}

// AuthConfig configures API key authentication. Keys are verified
// against argon2id hashes; plaintext keys never appear in config.
type AuthConfig struct {
	// APIKeyHashes are argon2id hashes of accepted API keys.
	APIKeyHashes []string `yaml:"api_key_hashes" mapstructure:"api_key_hashes" validate:"omitempty,dive,startswith=$argon2id$"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is debug, info, warn, or error.
	Level string `yaml:"level" mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	// Format is text or json.
	Format string `yaml:"format" mapstructure:"format" validate:"omitempty,oneof=text json"`
}

// SetDefaults fills optional fields that were left empty.
func (c *Config) SetDefaults() {
	if c.Server.HTTPAddr == "" {
		c.Server.HTTPAddr = "127.0.0.1:8090"
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Storage.TempDir == "" {
		c.Storage.TempDir = defaultTempDir()
	}
	if c.Storage.WorkDir == "" {
		c.Storage.WorkDir = c.Storage.TempDir + string(os.PathSeparator) + "work"
	}
	if c.Storage.MaxUploadMB == 0 {
		c.Storage.MaxUploadMB = 50
	}
	if c.Session.IdleTimeout == 0 {
		c.Session.IdleTimeout = 30 * time.Minute
	}
	if c.Session.ReapInterval == 0 {
		c.Session.ReapInterval = time.Minute
	}
	if c.Render.MaxZoom == 0 {
		c.Render.MaxZoom = 4
	}
	if c.RateLimit.RequestsPerMinute == 0 {
		c.RateLimit.RequestsPerMinute = 120
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 20
	}
	if c.RateLimit.CleanupInterval == 0 {
		c.RateLimit.CleanupInterval = 5 * time.Minute
	}
	if c.RateLimit.MaxTTL == 0 {
		c.RateLimit.MaxTTL = time.Hour
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}

// SetDevDefaults applies permissive development settings. Call after
// CLI flags may have flipped DevMode.
func (c *Config) SetDevDefaults() {
	if !c.DevMode {
		return
	}
	c.Log.Level = "debug"
}

func defaultTempDir() string {
	return os.TempDir() + string(os.PathSeparator) + "pdf-editor"
}
