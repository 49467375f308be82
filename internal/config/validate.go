package config

import "fmt"

// Validate checks the configuration for invalid or contradictory values.
func Validate(cfg *Config) error {
	if len(cfg.Paths.Include) == 0 {
		return fmt.Errorf("paths.include must list at least one pattern")
	}
	if cfg.Analysis.Concurrency < 1 {
		return fmt.Errorf("analysis.concurrency must be at least 1, got %d", cfg.Analysis.Concurrency)
	}
	if cfg.Analysis.FileTimeout <= 0 {
		return fmt.Errorf("analysis.file_timeout must be positive, got %s", cfg.Analysis.FileTimeout)
	}
	c := cfg.Analysis.Complexity
	if c.Low < 1 {
		return fmt.Errorf("analysis.complexity.low must be at least 1, got %d", c.Low)
	}
	if c.Medium <= c.Low {
		return fmt.Errorf("analysis.complexity.medium (%d) must exceed low (%d)", c.Medium, c.Low)
	}
	if c.High <= c.Medium {
		return fmt.Errorf("analysis.complexity.high (%d) must exceed medium (%d)", c.High, c.Medium)
	}
	if cfg.Storage.DatabasePath == "" {
		return fmt.Errorf("storage.database_path must not be empty")
	}
	return nil
}
