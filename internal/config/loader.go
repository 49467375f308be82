package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a new configuration loader for the given root directory.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (CODEATLAS_*)
// 2. Config file (.codeatlas/config.yml or .codeatlas/config.yaml)
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	configDir := filepath.Join(l.rootDir, ".codeatlas")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)

	// Enable environment variable overrides
	v.SetEnvPrefix("CODEATLAS")
	v.AutomaticEnv()
	// Replace . with _ in env var names (e.g., CODEATLAS_ANALYSIS_CONCURRENCY)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("analysis.concurrency")
	v.BindEnv("analysis.file_timeout")
	v.BindEnv("analysis.complexity.low")
	v.BindEnv("analysis.complexity.medium")
	v.BindEnv("analysis.complexity.high")
	v.BindEnv("storage.database_path")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("paths.include", defaults.Paths.Include)
	v.SetDefault("paths.exclude", defaults.Paths.Exclude)
	v.SetDefault("analysis.concurrency", defaults.Analysis.Concurrency)
	v.SetDefault("analysis.file_timeout", defaults.Analysis.FileTimeout)
	v.SetDefault("analysis.complexity.low", defaults.Analysis.Complexity.Low)
	v.SetDefault("analysis.complexity.medium", defaults.Analysis.Complexity.Medium)
	v.SetDefault("analysis.complexity.high", defaults.Analysis.Complexity.High)
	v.SetDefault("storage.database_path", defaults.Storage.DatabasePath)
}
