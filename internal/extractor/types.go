package extractor

import "github.com/codeatlas-dev/codeatlas/internal/store"

// Extraction is the structural model of one source file before ids exist.
// Entities reference each other by slice index; the persistence phase
// rewrites indexes into store-assigned ids.
type Extraction struct {
	File      store.SourceFile
	Types     []store.TypeDefinition
	Callables []CallableRecord
	Stubs     []Stub
}

// CallableRecord pairs a callable unit with its parent-type linkage.
// TypeIndex is an index into Extraction.Types, or -1 for free functions.
type CallableRecord struct {
	Unit      store.CallableUnit
	TypeIndex int
}

// Stub is an unresolved relationship: the target is known only by name.
// The resolver rewrites stubs into concrete id-to-id edges after every
// file has been extracted.
type Stub struct {
	SourceKind  store.EntityKind
	SourceIndex int // index into Types or Callables, per SourceKind
	SourceName  string
	TargetKind  store.EntityKind
	TargetName  string
	Kind        store.RelationshipKind
	Line        int
}

// StubFile builds the minimal file record emitted when a parse fails:
// path and name survive, all metrics stay zero-valued.
func StubFile(path string) store.SourceFile {
	f := store.SourceFile{
		Path:            path,
		Name:            baseName(path),
		Domain:          DomainForPath(path),
		Kind:            FileKindForPath(path),
		ComplexityLevel: store.LevelLow,
	}
	return f
}

func baseName(path string) string {
	for i := len(path) - 1; i >= 0; i-- {
		if path[i] == '/' {
			return path[i+1:]
		}
	}
	return path
}
