package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestSetDefaults(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()

	if cfg.Server.HTTPAddr != "127.0.0.1:8090" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Server.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v", cfg.Server.ShutdownTimeout)
	}
	if cfg.Storage.TempDir == "" {
		t.Error("TempDir should default under the OS temp dir")
	}
	if cfg.Storage.WorkDir != cfg.Storage.TempDir+string(os.PathSeparator)+"work" {
		t.Errorf("WorkDir = %q, want under TempDir", cfg.Storage.WorkDir)
	}
	if cfg.Storage.MaxUploadMB != 50 {
		t.Errorf("MaxUploadMB = %d", cfg.Storage.MaxUploadMB)
	}
	if cfg.Session.IdleTimeout != 30*time.Minute {
		t.Errorf("IdleTimeout = %v", cfg.Session.IdleTimeout)
	}
	if cfg.Session.ReapInterval != time.Minute {
		t.Errorf("ReapInterval = %v", cfg.Session.ReapInterval)
	}
	if cfg.Render.MaxZoom != 4 {
		t.Errorf("MaxZoom = %v", cfg.Render.MaxZoom)
	}
	if cfg.Log.Level != "info" || cfg.Log.Format != "text" {
		t.Errorf("Log = %+v", cfg.Log)
	}
	if cfg.RateLimit.Enabled {
		t.Error("rate limiting should be off by default")
	}
}

func TestSetDefaults_DoesNotOverrideExplicit(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	cfg.Server.HTTPAddr = "0.0.0.0:9000"
	cfg.Storage.MaxUploadMB = 5
	cfg.SetDefaults()

	if cfg.Server.HTTPAddr != "0.0.0.0:9000" {
		t.Errorf("HTTPAddr = %q, want explicit value kept", cfg.Server.HTTPAddr)
	}
	if cfg.Storage.MaxUploadMB != 5 {
		t.Errorf("MaxUploadMB = %d, want 5", cfg.Storage.MaxUploadMB)
	}
}

func TestSetDevDefaults(t *testing.T) {
	t.Parallel()

	cfg := Config{}
	cfg.SetDefaults()
	cfg.SetDevDefaults()
	if cfg.Log.Level != "info" {
		t.Errorf("Level = %q, dev defaults must not apply without DevMode", cfg.Log.Level)
	}

	cfg.DevMode = true
	cfg.SetDevDefaults()
	if cfg.Log.Level != "debug" {
		t.Errorf("Level = %q, want debug in dev mode", cfg.Log.Level)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	var cfg Config
	cfg.SetDefaults()
	if err := Validate(&cfg); err != nil {
		t.Errorf("Validate() of defaults error: %v", err)
	}
}

func TestValidate_Failures(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantSub string
	}{
		{
			name:    "bad listen address",
			mutate:  func(c *Config) { c.Server.HTTPAddr = "not-an-address" },
			wantSub: "host:port",
		},
		{
			name:    "upload cap too large",
			mutate:  func(c *Config) { c.Storage.MaxUploadMB = 4096 },
			wantSub: "at most",
		},
		{
			name:    "unknown log level",
			mutate:  func(c *Config) { c.Log.Level = "chatty" },
			wantSub: "one of",
		},
		{
			name:    "plaintext api key",
			mutate:  func(c *Config) { c.Auth.APIKeyHashes = []string{"plaintext-key"} },
			wantSub: "$argon2id$",
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var cfg Config
			cfg.SetDefaults()
			tt.mutate(&cfg)
			err := Validate(&cfg)
			if err == nil {
				t.Fatal("Validate() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantSub) {
				t.Errorf("error = %q, want it to mention %q", err, tt.wantSub)
			}
		})
	}
}

func TestLoadConfig_File(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pdf-editor.yaml")
	content := `
server:
  http_addr: "127.0.0.1:9999"
storage:
  max_upload_mb: 10
session:
  idle_timeout: 5m
log:
  level: warn
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := InitViper(v, path); err != nil {
		t.Fatalf("InitViper() error: %v", err)
	}
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}

	if cfg.Server.HTTPAddr != "127.0.0.1:9999" {
		t.Errorf("HTTPAddr = %q", cfg.Server.HTTPAddr)
	}
	if cfg.Storage.MaxUploadMB != 10 {
		t.Errorf("MaxUploadMB = %d", cfg.Storage.MaxUploadMB)
	}
	if cfg.Session.IdleTimeout != 5*time.Minute {
		t.Errorf("IdleTimeout = %v", cfg.Session.IdleTimeout)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Level = %q", cfg.Log.Level)
	}
	// Untouched keys keep their defaults.
	if cfg.Session.ReapInterval != time.Minute {
		t.Errorf("ReapInterval = %v, want default", cfg.Session.ReapInterval)
	}
	if ConfigFileUsed(v) != path {
		t.Errorf("ConfigFileUsed = %q, want %q", ConfigFileUsed(v), path)
	}
}

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	t.Parallel()

	v := viper.New()
	if err := InitViper(v, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("InitViper() error: %v", err)
	}
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.HTTPAddr != "127.0.0.1:8090" {
		t.Errorf("HTTPAddr = %q, want default", cfg.Server.HTTPAddr)
	}
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	t.Setenv("PDF_EDITOR_SERVER_HTTP_ADDR", "127.0.0.1:7070")
	t.Setenv("PDF_EDITOR_LOG_FORMAT", "json")

	v := viper.New()
	if err := InitViper(v, filepath.Join(t.TempDir(), "absent.yaml")); err != nil {
		t.Fatalf("InitViper() error: %v", err)
	}
	cfg, err := LoadConfig(v)
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.Server.HTTPAddr != "127.0.0.1:7070" {
		t.Errorf("HTTPAddr = %q, want the env override", cfg.Server.HTTPAddr)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("Format = %q, want json", cfg.Log.Format)
	}
}

func TestLoadConfig_RejectsInvalidFileValues(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "pdf-editor.yaml")
	if err := os.WriteFile(path, []byte("log:\n  level: shouty\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	v := viper.New()
	if err := InitViper(v, path); err != nil {
		t.Fatalf("InitViper() error: %v", err)
	}
	if _, err := LoadConfig(v); err == nil {
		t.Error("LoadConfig() should reject an invalid log level")
	}
}
