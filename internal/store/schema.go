package store

import (
	"database/sql"
	"fmt"
)

// CreateSchema creates all tables and indexes for the analysis database.
// All statements run inside one transaction so schema creation either
// fully succeeds or leaves the database untouched.
//
// Must be called with SQLite PRAGMA foreign_keys = ON.
func CreateSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin schema transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	tables := []struct {
		name string
		ddl  string
	}{
		{"files", createFilesTable},
		{"type_definitions", createTypeDefinitionsTable},
		{"callable_units", createCallableUnitsTable},
		{"relationships", createRelationshipsTable},
	}

	for _, table := range tables {
		if _, err := tx.Exec(table.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", table.name, err)
		}
	}

	for i, idx := range getAllIndexes() {
		if _, err := tx.Exec(idx); err != nil {
			return fmt.Errorf("failed to create index %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit schema transaction: %w", err)
	}

	return nil
}

// Table DDL constants

const createFilesTable = `
CREATE TABLE IF NOT EXISTS files (
    file_id INTEGER PRIMARY KEY AUTOINCREMENT,
    path TEXT NOT NULL UNIQUE,                   -- relative path from analysis root
    name TEXT NOT NULL,                          -- base name
    domain TEXT NOT NULL,                        -- architectural bucket inferred from path
    kind TEXT NOT NULL,                          -- module, package, test
    line_count INTEGER NOT NULL DEFAULT 0,
    complexity_score INTEGER NOT NULL DEFAULT 0,
    complexity_level TEXT NOT NULL DEFAULT 'low',
    type_count INTEGER NOT NULL DEFAULT 0,       -- denormalized count
    callable_count INTEGER NOT NULL DEFAULT 0,   -- denormalized count
    import_count INTEGER NOT NULL DEFAULT 0
)
`

const createTypeDefinitionsTable = `
CREATE TABLE IF NOT EXISTS type_definitions (
    type_id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    kind TEXT NOT NULL,                          -- class, abstract, exception, enum, dataclass, model
    base_types TEXT NOT NULL DEFAULT '[]',       -- JSON array of raw base-type names
    decorators TEXT NOT NULL DEFAULT '[]',       -- JSON array of decorator names
    method_count INTEGER NOT NULL DEFAULT 0,     -- denormalized count
    is_abstract INTEGER NOT NULL DEFAULT 0,      -- Boolean
    FOREIGN KEY (file_id) REFERENCES files(file_id) ON DELETE CASCADE
)
`

const createCallableUnitsTable = `
CREATE TABLE IF NOT EXISTS callable_units (
    callable_id INTEGER PRIMARY KEY AUTOINCREMENT,
    file_id INTEGER NOT NULL,
    type_id INTEGER,                             -- NULL for free functions
    name TEXT NOT NULL,
    start_line INTEGER NOT NULL,
    end_line INTEGER NOT NULL,
    kind TEXT NOT NULL,                          -- function, method, static_method, class_method, property
    parameters TEXT NOT NULL DEFAULT '[]',       -- JSON array of flattened parameter strings
    return_type TEXT,                            -- NULL when unannotated
    decorators TEXT NOT NULL DEFAULT '[]',       -- JSON array of decorator names
    is_async INTEGER NOT NULL DEFAULT 0,         -- Boolean
    is_generator INTEGER NOT NULL DEFAULT 0,     -- Boolean
    complexity INTEGER NOT NULL DEFAULT 1,
    FOREIGN KEY (file_id) REFERENCES files(file_id) ON DELETE CASCADE,
    FOREIGN KEY (type_id) REFERENCES type_definitions(type_id) ON DELETE CASCADE
)
`

const createRelationshipsTable = `
CREATE TABLE IF NOT EXISTS relationships (
    relationship_id INTEGER PRIMARY KEY AUTOINCREMENT,
    source_kind TEXT NOT NULL,                   -- type, callable
    source_id INTEGER NOT NULL,
    source_name TEXT NOT NULL,
    target_kind TEXT NOT NULL,
    target_id INTEGER NOT NULL,                  -- always resolved before insert
    target_name TEXT NOT NULL,
    kind TEXT NOT NULL,                          -- inherits, calls, imports, uses, contains, depends_on
    file_path TEXT NOT NULL,                     -- file where the relationship is declared
    line INTEGER NOT NULL
)
`

// getAllIndexes returns all index creation statements.
func getAllIndexes() []string {
	return []string{
		"CREATE INDEX IF NOT EXISTS idx_files_path ON files(path)",
		"CREATE INDEX IF NOT EXISTS idx_files_domain ON files(domain)",

		"CREATE INDEX IF NOT EXISTS idx_type_definitions_file_id ON type_definitions(file_id)",
		"CREATE INDEX IF NOT EXISTS idx_type_definitions_name ON type_definitions(name)",

		"CREATE INDEX IF NOT EXISTS idx_callable_units_file_id ON callable_units(file_id)",
		"CREATE INDEX IF NOT EXISTS idx_callable_units_type_id ON callable_units(type_id)",
		"CREATE INDEX IF NOT EXISTS idx_callable_units_name ON callable_units(name)",

		"CREATE INDEX IF NOT EXISTS idx_relationships_source ON relationships(source_kind, source_id)",
		"CREATE INDEX IF NOT EXISTS idx_relationships_target ON relationships(target_kind, target_id)",
		"CREATE INDEX IF NOT EXISTS idx_relationships_kind ON relationships(kind)",
	}
}
