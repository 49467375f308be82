package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ClearAll wipes all analysis data in dependency order
// (relationships, callables, types, files) to satisfy foreign keys.
func (t *Tx) ClearAll() error {
	clearTables := []string{
		"relationships",
		"callable_units",
		"type_definitions",
		"files",
	}
	for _, table := range clearTables {
		if _, err := sq.Delete(table).RunWith(t.tx).Exec(); err != nil {
			return fmt.Errorf("failed to clear existing data (%s): %w", table, err)
		}
	}
	return nil
}

// InsertFile inserts a source file record and returns the assigned id.
// The id is also written back to f.ID.
func (t *Tx) InsertFile(f *SourceFile) (int64, error) {
	res, err := sq.Insert("files").
		Columns(
			"path", "name", "domain", "kind",
			"line_count", "complexity_score", "complexity_level",
			"type_count", "callable_count", "import_count",
		).
		Values(
			f.Path, f.Name, f.Domain, f.Kind,
			f.LineCount, f.ComplexityScore, f.ComplexityLevel,
			f.TypeCount, f.CallableCount, f.ImportCount,
		).
		RunWith(t.tx).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to insert file %s: %w", f.Path, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read file id for %s: %w", f.Path, err)
	}
	f.ID = id
	return id, nil
}

// InsertTypeDefinition inserts a type definition and returns the assigned id.
func (t *Tx) InsertTypeDefinition(td *TypeDefinition) (int64, error) {
	baseTypes, err := encodeStrings(td.BaseTypes)
	if err != nil {
		return 0, fmt.Errorf("failed to encode base types for %s: %w", td.Name, err)
	}
	decorators, err := encodeStrings(td.Decorators)
	if err != nil {
		return 0, fmt.Errorf("failed to encode decorators for %s: %w", td.Name, err)
	}

	res, err := sq.Insert("type_definitions").
		Columns(
			"file_id", "name", "start_line", "end_line", "kind",
			"base_types", "decorators", "method_count", "is_abstract",
		).
		Values(
			td.FileID, td.Name, td.StartLine, td.EndLine, td.Kind,
			baseTypes, decorators, td.MethodCount, boolToInt(td.IsAbstract),
		).
		RunWith(t.tx).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to insert type %s: %w", td.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read type id for %s: %w", td.Name, err)
	}
	td.ID = id
	return id, nil
}

// InsertCallable inserts a callable unit and returns the assigned id.
//
// When c.TypeID is set, the referenced type definition must belong to the
// same file as the callable. A mismatch fails fast with
// ErrIntegrityViolation rather than silently nulling the parent out.
func (t *Tx) InsertCallable(c *CallableUnit) (int64, error) {
	if c.TypeID != nil {
		var typeFileID int64
		err := sq.Select("file_id").
			From("type_definitions").
			Where(sq.Eq{"type_id": *c.TypeID}).
			RunWith(t.tx).
			QueryRow().
			Scan(&typeFileID)
		if err == sql.ErrNoRows {
			return 0, fmt.Errorf("%w: callable %s references unknown type id %d",
				ErrIntegrityViolation, c.Name, *c.TypeID)
		}
		if err != nil {
			return 0, fmt.Errorf("failed to look up parent type for %s: %w", c.Name, err)
		}
		if typeFileID != c.FileID {
			return 0, fmt.Errorf("%w: callable %s in file %d references type %d owned by file %d",
				ErrIntegrityViolation, c.Name, c.FileID, *c.TypeID, typeFileID)
		}
	}

	parameters, err := encodeStrings(c.Parameters)
	if err != nil {
		return 0, fmt.Errorf("failed to encode parameters for %s: %w", c.Name, err)
	}
	decorators, err := encodeStrings(c.Decorators)
	if err != nil {
		return 0, fmt.Errorf("failed to encode decorators for %s: %w", c.Name, err)
	}

	res, err := sq.Insert("callable_units").
		Columns(
			"file_id", "type_id", "name", "start_line", "end_line", "kind",
			"parameters", "return_type", "decorators",
			"is_async", "is_generator", "complexity",
		).
		Values(
			c.FileID, c.TypeID, c.Name, c.StartLine, c.EndLine, c.Kind,
			parameters, c.ReturnType, decorators,
			boolToInt(c.IsAsync), boolToInt(c.IsGenerator), c.Complexity,
		).
		RunWith(t.tx).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to insert callable %s: %w", c.Name, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read callable id for %s: %w", c.Name, err)
	}
	c.ID = id
	return id, nil
}

// InsertRelationship inserts a resolved relationship edge and returns the
// assigned id. Callers must resolve target ids first; stubs never reach
// storage.
func (t *Tx) InsertRelationship(r *Relationship) (int64, error) {
	res, err := sq.Insert("relationships").
		Columns(
			"source_kind", "source_id", "source_name",
			"target_kind", "target_id", "target_name",
			"kind", "file_path", "line",
		).
		Values(
			string(r.SourceKind), r.SourceID, r.SourceName,
			string(r.TargetKind), r.TargetID, r.TargetName,
			string(r.Kind), r.FilePath, r.Line,
		).
		RunWith(t.tx).
		Exec()
	if err != nil {
		return 0, fmt.Errorf("failed to insert relationship %s->%s: %w", r.SourceName, r.TargetName, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read relationship id: %w", err)
	}
	r.ID = id
	return id, nil
}

func encodeStrings(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	data, err := json.Marshal(values)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeStrings(data string) ([]string, error) {
	if data == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(data), &values); err != nil {
		return nil, err
	}
	return values, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
