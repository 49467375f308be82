package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/codeatlas-dev/codeatlas/internal/config"
	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// loadConfig loads the configuration rooted at dir.
func loadConfig(dir string) (*config.Config, error) {
	cfg, err := config.NewLoader(dir).Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// openStore opens the analysis database described by cfg, creating its
// parent directory when missing. Relative database paths are anchored at
// the analyzed root.
func openStore(root string, cfg *config.Config) (*store.Store, error) {
	dbPath := cfg.Storage.DatabasePath
	if !filepath.IsAbs(dbPath) {
		dbPath = filepath.Join(root, dbPath)
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dbPath, err)
	}
	return s, nil
}
