// Package resolver rewrites name-based relationship stubs into concrete
// id-to-id edges. It runs once per analysis run, after every file has been
// extracted, against an index built in file-processing order.
//
// Resolution is name-based, not scope-aware: when several entities share a
// name the first-encountered candidate wins. That policy is a documented
// approximation; the phase is isolated here so a scope-aware resolver can
// replace it without touching extraction or storage.
package resolver

import (
	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// Index maps (entity kind, name) to candidate entity ids, preserving
// file-processing order. It is built once per run and passed explicitly,
// never shared across runs.
type Index struct {
	candidates map[indexKey][]int64
}

type indexKey struct {
	kind store.EntityKind
	name string
}

// NewIndex creates an empty name index.
func NewIndex() *Index {
	return &Index{candidates: make(map[indexKey][]int64)}
}

// Add registers an entity under its kind and name. Call in
// file-processing order so the ambiguity policy stays deterministic.
func (ix *Index) Add(kind store.EntityKind, name string, id int64) {
	key := indexKey{kind: kind, name: name}
	ix.candidates[key] = append(ix.candidates[key], id)
}

// Candidates returns all ids registered under (kind, name).
func (ix *Index) Candidates(kind store.EntityKind, name string) []int64 {
	return ix.candidates[indexKey{kind: kind, name: name}]
}

// PendingEdge is a stub whose source id is already known; only the target
// remains name-addressed.
type PendingEdge struct {
	SourceKind store.EntityKind
	SourceID   int64
	SourceName string
	TargetKind store.EntityKind
	TargetName string
	Kind       store.RelationshipKind
	FilePath   string
	Line       int
}

// Stats counts resolution outcomes for one run.
type Stats struct {
	Resolved   int
	Unresolved int // no candidate: stub dropped
	Ambiguous  int // multiple candidates: first match kept
}

// Resolve rewrites pending edges into relationships. Stubs with no
// candidate are dropped; stubs with several candidates resolve to the
// first-encountered one and are counted as ambiguous. Resolution never
// depends on the target's own edges, so cycles cannot block it.
func Resolve(ix *Index, pending []PendingEdge) ([]store.Relationship, Stats) {
	var stats Stats
	resolved := make([]store.Relationship, 0, len(pending))

	for _, edge := range pending {
		candidates := ix.Candidates(edge.TargetKind, edge.TargetName)
		if len(candidates) == 0 {
			stats.Unresolved++
			continue
		}
		if len(candidates) > 1 {
			stats.Ambiguous++
		}

		resolved = append(resolved, store.Relationship{
			SourceKind: edge.SourceKind,
			SourceID:   edge.SourceID,
			SourceName: edge.SourceName,
			TargetKind: edge.TargetKind,
			TargetID:   candidates[0],
			TargetName: edge.TargetName,
			Kind:       edge.Kind,
			FilePath:   edge.FilePath,
			Line:       edge.Line,
		})
		stats.Resolved++
	}

	return resolved, stats
}
