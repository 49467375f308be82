package config

import (
	"runtime"
	"time"
)

// Config represents the complete codeatlas configuration.
// It can be loaded from .codeatlas/config.yml with environment variable
// overrides.
type Config struct {
	Paths    PathsConfig    `yaml:"paths" mapstructure:"paths"`
	Analysis AnalysisConfig `yaml:"analysis" mapstructure:"analysis"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
}

// PathsConfig defines which files to analyze and which to skip.
type PathsConfig struct {
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Exclude []string `yaml:"exclude" mapstructure:"exclude"` // glob patterns to skip
}

// AnalysisConfig tunes extraction and scoring behavior.
type AnalysisConfig struct {
	Concurrency int              `yaml:"concurrency" mapstructure:"concurrency"`   // parallel extraction workers
	FileTimeout time.Duration    `yaml:"file_timeout" mapstructure:"file_timeout"` // wall-clock budget per file
	Complexity  ComplexityConfig `yaml:"complexity" mapstructure:"complexity"`
}

// ComplexityConfig holds the ordinal bucketing thresholds for file
// complexity. The thresholds are a policy choice, not a law; the defaults
// match the standard 10/20/40 bucketing.
type ComplexityConfig struct {
	Low    int `yaml:"low" mapstructure:"low"`
	Medium int `yaml:"medium" mapstructure:"medium"`
	High   int `yaml:"high" mapstructure:"high"`
}

// StorageConfig defines where the analysis database lives.
type StorageConfig struct {
	DatabasePath string `yaml:"database_path" mapstructure:"database_path"`
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Include: []string{"**/*.py"},
			Exclude: []string{
				"**/.git/**",
				"**/__pycache__/**",
				"**/venv/**",
				"**/.venv/**",
				"**/node_modules/**",
			},
		},
		Analysis: AnalysisConfig{
			Concurrency: runtime.NumCPU(),
			FileTimeout: 10 * time.Second,
			Complexity:  ComplexityConfig{Low: 10, Medium: 20, High: 40},
		},
		Storage: StorageConfig{
			DatabasePath: ".codeatlas/analysis.db",
		},
	}
}
