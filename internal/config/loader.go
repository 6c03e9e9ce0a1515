package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	envPrefix  = "PDF_EDITOR"
	configName = "pdf-editor"
)

// InitViper configures viper's search paths and environment binding.
// If cfgFile is non-empty it is used verbatim; otherwise the standard
// locations are searched.
func InitViper(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else if found := findConfigFile(); found != "" {
		v.SetConfigFile(found)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	bindNestedEnvKeys(v)

	return nil
}

// findConfigFile searches the well-known locations for a config file.
// Returns empty string when none exists.
func findConfigFile() string {
	dirs := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		dirs = append(dirs, filepath.Join(home, ".pdf-editor"))
	}
	dirs = append(dirs, "/etc/pdf-editor")

	for _, dir := range dirs {
		for _, ext := range []string{".yaml", ".yml"} {
			path := filepath.Join(dir, configName+ext)
			if info, err := os.Stat(path); err == nil && !info.IsDir() {
				return path
			}
		}
	}
	return ""
}

// bindNestedEnvKeys binds each nested config key explicitly so that
// environment variables work without a config file present. Viper's
// AutomaticEnv alone does not discover keys that were never set.
func bindNestedEnvKeys(v *viper.Viper) {
	keys := []string{
		"server.http_addr",
		"server.shutdown_timeout",
		"storage.temp_dir",
		"storage.work_dir",
		"storage.max_upload_mb",
		"session.idle_timeout",
		"session.reap_interval",
		"render.max_zoom",
		"rate_limit.enabled",
		"rate_limit.requests_per_minute",
		"rate_limit.burst",
		"rate_limit.cleanup_interval",
		"rate_limit.max_ttl",
		"auth.api_key_hashes",
		"log.level",
		"log.format",
		"dev_mode",
	}
	for _, key := range keys {
		_ = v.BindEnv(key)
	}
}

// LoadConfig reads, unmarshals, and validates the configuration. A
// missing config file is not an error; defaults and environment
// variables still apply.
func LoadConfig(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	cfg.SetDefaults()
	cfg.SetDevDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ConfigFileUsed reports the config file viper loaded, if any.
func ConfigFileUsed(v *viper.Viper) string {
	return v.ConfigFileUsed()
}
