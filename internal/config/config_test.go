package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"**/*.py"}, cfg.Paths.Include)
	assert.Contains(t, cfg.Paths.Exclude, "**/__pycache__/**")
	assert.GreaterOrEqual(t, cfg.Analysis.Concurrency, 1)
	assert.Equal(t, 10*time.Second, cfg.Analysis.FileTimeout)
	assert.Equal(t, 10, cfg.Analysis.Complexity.Low)
	assert.Equal(t, 20, cfg.Analysis.Complexity.Medium)
	assert.Equal(t, 40, cfg.Analysis.Complexity.High)
	assert.Equal(t, ".codeatlas/analysis.db", cfg.Storage.DatabasePath)
}

func TestLoadFromFile(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".codeatlas")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
paths:
  include:
    - "src/**/*.py"
  exclude:
    - "**/migrations/**"
analysis:
  concurrency: 2
  file_timeout: 30s
  complexity:
    low: 5
    medium: 15
    high: 30
storage:
  database_path: "custom.db"
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0o644))

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"src/**/*.py"}, cfg.Paths.Include)
	assert.Equal(t, []string{"**/migrations/**"}, cfg.Paths.Exclude)
	assert.Equal(t, 2, cfg.Analysis.Concurrency)
	assert.Equal(t, 30*time.Second, cfg.Analysis.FileTimeout)
	assert.Equal(t, 5, cfg.Analysis.Complexity.Low)
	assert.Equal(t, "custom.db", cfg.Storage.DatabasePath)
}

func TestLoadEnvOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("CODEATLAS_ANALYSIS_CONCURRENCY", "3")
	t.Setenv("CODEATLAS_STORAGE_DATABASE_PATH", "env.db")

	cfg, err := NewLoader(dir).Load()
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Analysis.Concurrency)
	assert.Equal(t, "env.db", cfg.Storage.DatabasePath)
}

func TestLoadInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configDir := filepath.Join(dir, ".codeatlas")
	require.NoError(t, os.MkdirAll(configDir, 0o755))

	content := `
analysis:
  concurrency: 0
`
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yml"), []byte(content), 0o644))

	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "concurrency")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "defaults are valid",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty include",
			mutate:  func(c *Config) { c.Paths.Include = nil },
			wantErr: "paths.include",
		},
		{
			name:    "non-positive timeout",
			mutate:  func(c *Config) { c.Analysis.FileTimeout = 0 },
			wantErr: "file_timeout",
		},
		{
			name:    "medium not above low",
			mutate:  func(c *Config) { c.Analysis.Complexity.Medium = c.Analysis.Complexity.Low },
			wantErr: "medium",
		},
		{
			name:    "high not above medium",
			mutate:  func(c *Config) { c.Analysis.Complexity.High = c.Analysis.Complexity.Medium },
			wantErr: "high",
		},
		{
			name:    "empty database path",
			mutate:  func(c *Config) { c.Storage.DatabasePath = "" },
			wantErr: "database_path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}
