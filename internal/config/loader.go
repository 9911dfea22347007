package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/edgecache/cachereport/internal/domain"
)

// DefaultConfigPaths returns the default paths to search for config files
func DefaultConfigPaths() []string {
	paths := []string{
		".",
		"/etc/cachereport",
	}

	if configDir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(configDir, "cachereport"))
	}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".cachereport"))
	}

	return paths
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("report.port", 443)
	v.SetDefault("report.timeout", 60)
	v.SetDefault("catalog.timeout", 30)
	v.SetDefault("scan.inspect_command", "xrdpfc_print")
	v.SetDefault("scan.inspect_timeout", 30)
	v.SetDefault("daemon.interval", 3600)
	v.SetDefault("logging.max_size_mb", 100)
	v.SetDefault("logging.max_backups", 5)
	v.SetDefault("adler", AdlerLocal)
	v.SetDefault("fileperreport", 100)
	v.SetDefault("lifetime", 604800)
	v.SetDefault("debug", "INFO")
}

// Load reads and parses a configuration file. If path is empty, default
// locations are searched for config.yaml. Environment variables prefixed with
// CACHEREPORT_ override file values.
//
// The result is not validated: mandatory keys may still arrive from CLI
// override flags, so callers run Validate once the configuration is final.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("CACHEREPORT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, p := range DefaultConfigPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return nil, domain.ErrConfigNotFound
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return &cfg, nil
}

// LoadFromString parses configuration from a YAML string without validating,
// like Load. Used by tests.
func LoadFromString(yamlContent string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")

	if err := v.ReadConfig(strings.NewReader(yamlContent)); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrConfigInvalid, err)
	}

	return &cfg, nil
}
