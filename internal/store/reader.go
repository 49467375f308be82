package store

import (
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
)

// ListOptions carries pagination shared by all list queries.
// A zero Limit means no limit.
type ListOptions struct {
	Limit  uint64
	Offset uint64
}

// FileFilter narrows ListFiles results.
type FileFilter struct {
	Domain string // empty matches all
	Kind   string // empty matches all
	ListOptions
}

// TypeFilter narrows ListTypes results.
type TypeFilter struct {
	FileID *int64
	Name   string // empty matches all
	ListOptions
}

// CallableFilter narrows ListCallables results.
type CallableFilter struct {
	FileID *int64
	TypeID *int64
	Name   string // empty matches all
	ListOptions
}

// RelationshipFilter narrows ListRelationships results.
type RelationshipFilter struct {
	SourceKind EntityKind // empty matches all
	SourceID   *int64
	TargetKind EntityKind
	TargetID   *int64
	Kind       RelationshipKind
	ListOptions
}

// GetFile returns the file with the given id, or ErrNotFound.
func (s *Store) GetFile(id int64) (*SourceFile, error) {
	return s.getFile(sq.Eq{"file_id": id})
}

// GetFileByPath returns the file with the given path, or ErrNotFound.
func (s *Store) GetFileByPath(path string) (*SourceFile, error) {
	return s.getFile(sq.Eq{"path": path})
}

func (s *Store) getFile(where sq.Eq) (*SourceFile, error) {
	row := sq.Select(fileColumns...).
		From("files").
		Where(where).
		RunWith(s.db).
		QueryRow()

	f, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query file: %w", err)
	}
	return f, nil
}

// ListFiles returns files ordered by path.
func (s *Store) ListFiles(filter FileFilter) ([]SourceFile, error) {
	query := sq.Select(fileColumns...).
		From("files").
		OrderBy("path")
	if filter.Domain != "" {
		query = query.Where(sq.Eq{"domain": filter.Domain})
	}
	if filter.Kind != "" {
		query = query.Where(sq.Eq{"kind": filter.Kind})
	}
	query = applyPagination(query, filter.ListOptions)

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []SourceFile
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// ListTypes returns type definitions ordered by file then start line.
func (s *Store) ListTypes(filter TypeFilter) ([]TypeDefinition, error) {
	query := sq.Select(typeColumns...).
		From("type_definitions").
		OrderBy("file_id", "start_line", "type_id")
	if filter.FileID != nil {
		query = query.Where(sq.Eq{"file_id": *filter.FileID})
	}
	if filter.Name != "" {
		query = query.Where(sq.Eq{"name": filter.Name})
	}
	query = applyPagination(query, filter.ListOptions)

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query types: %w", err)
	}
	defer rows.Close()

	var types []TypeDefinition
	for rows.Next() {
		td, err := scanType(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan type: %w", err)
		}
		types = append(types, *td)
	}
	return types, rows.Err()
}

// ListCallables returns callable units ordered by file then start line.
func (s *Store) ListCallables(filter CallableFilter) ([]CallableUnit, error) {
	query := sq.Select(callableColumns...).
		From("callable_units").
		OrderBy("file_id", "start_line", "callable_id")
	if filter.FileID != nil {
		query = query.Where(sq.Eq{"file_id": *filter.FileID})
	}
	if filter.TypeID != nil {
		query = query.Where(sq.Eq{"type_id": *filter.TypeID})
	}
	if filter.Name != "" {
		query = query.Where(sq.Eq{"name": filter.Name})
	}
	query = applyPagination(query, filter.ListOptions)

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query callables: %w", err)
	}
	defer rows.Close()

	var callables []CallableUnit
	for rows.Next() {
		c, err := scanCallable(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan callable: %w", err)
		}
		callables = append(callables, *c)
	}
	return callables, rows.Err()
}

// ListRelationships returns relationship edges ordered by id.
func (s *Store) ListRelationships(filter RelationshipFilter) ([]Relationship, error) {
	query := sq.Select(relationshipColumns...).
		From("relationships").
		OrderBy("relationship_id")
	if filter.SourceKind != "" {
		query = query.Where(sq.Eq{"source_kind": string(filter.SourceKind)})
	}
	if filter.SourceID != nil {
		query = query.Where(sq.Eq{"source_id": *filter.SourceID})
	}
	if filter.TargetKind != "" {
		query = query.Where(sq.Eq{"target_kind": string(filter.TargetKind)})
	}
	if filter.TargetID != nil {
		query = query.Where(sq.Eq{"target_id": *filter.TargetID})
	}
	if filter.Kind != "" {
		query = query.Where(sq.Eq{"kind": string(filter.Kind)})
	}
	query = applyPagination(query, filter.ListOptions)

	rows, err := query.RunWith(s.db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query relationships: %w", err)
	}
	defer rows.Close()

	var rels []Relationship
	for rows.Next() {
		var r Relationship
		var sourceKind, targetKind, kind string
		err := rows.Scan(
			&r.ID, &sourceKind, &r.SourceID, &r.SourceName,
			&targetKind, &r.TargetID, &r.TargetName,
			&kind, &r.FilePath, &r.Line,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan relationship: %w", err)
		}
		r.SourceKind = EntityKind(sourceKind)
		r.TargetKind = EntityKind(targetKind)
		r.Kind = RelationshipKind(kind)
		rels = append(rels, r)
	}
	return rels, rows.Err()
}

// EntityFileOwners maps every type and callable id to its owning file id.
// The graph builder uses this to project entity-level relationships down
// to file-level edges.
func (s *Store) EntityFileOwners() (map[EntityRef]int64, error) {
	owners := make(map[EntityRef]int64)

	rows, err := sq.Select("type_id", "file_id").
		From("type_definitions").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query type owners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, fileID int64
		if err := rows.Scan(&id, &fileID); err != nil {
			return nil, fmt.Errorf("failed to scan type owner: %w", err)
		}
		owners[EntityRef{Kind: EntityType, ID: id}] = fileID
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = sq.Select("callable_id", "file_id").
		From("callable_units").
		RunWith(s.db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query callable owners: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id, fileID int64
		if err := rows.Scan(&id, &fileID); err != nil {
			return nil, fmt.Errorf("failed to scan callable owner: %w", err)
		}
		owners[EntityRef{Kind: EntityCallable, ID: id}] = fileID
	}
	return owners, rows.Err()
}

// Counts reports the row count of each entity table.
func (s *Store) Counts() (files, types, callables, relationships int64, err error) {
	counts := []struct {
		table string
		out   *int64
	}{
		{"files", &files},
		{"type_definitions", &types},
		{"callable_units", &callables},
		{"relationships", &relationships},
	}
	for _, c := range counts {
		row := sq.Select("COUNT(*)").From(c.table).RunWith(s.db).QueryRow()
		if scanErr := row.Scan(c.out); scanErr != nil {
			return 0, 0, 0, 0, fmt.Errorf("failed to count %s: %w", c.table, scanErr)
		}
	}
	return files, types, callables, relationships, nil
}

// Column lists and row scanners

var fileColumns = []string{
	"file_id", "path", "name", "domain", "kind",
	"line_count", "complexity_score", "complexity_level",
	"type_count", "callable_count", "import_count",
}

var typeColumns = []string{
	"type_id", "file_id", "name", "start_line", "end_line", "kind",
	"base_types", "decorators", "method_count", "is_abstract",
}

var callableColumns = []string{
	"callable_id", "file_id", "type_id", "name", "start_line", "end_line",
	"kind", "parameters", "return_type", "decorators",
	"is_async", "is_generator", "complexity",
}

var relationshipColumns = []string{
	"relationship_id", "source_kind", "source_id", "source_name",
	"target_kind", "target_id", "target_name", "kind", "file_path", "line",
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanFile(row rowScanner) (*SourceFile, error) {
	var f SourceFile
	err := row.Scan(
		&f.ID, &f.Path, &f.Name, &f.Domain, &f.Kind,
		&f.LineCount, &f.ComplexityScore, &f.ComplexityLevel,
		&f.TypeCount, &f.CallableCount, &f.ImportCount,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func scanType(row rowScanner) (*TypeDefinition, error) {
	var td TypeDefinition
	var baseTypes, decorators string
	var isAbstract int
	err := row.Scan(
		&td.ID, &td.FileID, &td.Name, &td.StartLine, &td.EndLine, &td.Kind,
		&baseTypes, &decorators, &td.MethodCount, &isAbstract,
	)
	if err != nil {
		return nil, err
	}
	if td.BaseTypes, err = decodeStrings(baseTypes); err != nil {
		return nil, fmt.Errorf("failed to decode base types: %w", err)
	}
	if td.Decorators, err = decodeStrings(decorators); err != nil {
		return nil, fmt.Errorf("failed to decode decorators: %w", err)
	}
	td.IsAbstract = isAbstract != 0
	return &td, nil
}

func scanCallable(row rowScanner) (*CallableUnit, error) {
	var c CallableUnit
	var parameters, decorators string
	var isAsync, isGenerator int
	err := row.Scan(
		&c.ID, &c.FileID, &c.TypeID, &c.Name, &c.StartLine, &c.EndLine,
		&c.Kind, &parameters, &c.ReturnType, &decorators,
		&isAsync, &isGenerator, &c.Complexity,
	)
	if err != nil {
		return nil, err
	}
	if c.Parameters, err = decodeStrings(parameters); err != nil {
		return nil, fmt.Errorf("failed to decode parameters: %w", err)
	}
	if c.Decorators, err = decodeStrings(decorators); err != nil {
		return nil, fmt.Errorf("failed to decode decorators: %w", err)
	}
	c.IsAsync = isAsync != 0
	c.IsGenerator = isGenerator != 0
	return &c, nil
}

// noLimit keeps OFFSET usable when the caller set no LIMIT;
// SQLite rejects OFFSET without a preceding LIMIT clause.
const noLimit = ^uint64(0) >> 1

func applyPagination(query sq.SelectBuilder, opts ListOptions) sq.SelectBuilder {
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	} else if opts.Offset > 0 {
		query = query.Limit(noLimit)
	}
	if opts.Offset > 0 {
		query = query.Offset(opts.Offset)
	}
	return query
}
