package depgraph

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/maypok86/otter"

	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// snapshot bundles the derived structures computed from one committed run.
type snapshot struct {
	graph   *FileGraph
	metrics []CouplingMetrics
	groups  []CircularGroup
}

// Service exposes the graph surface over the committed store. The graph,
// coupling metrics, and circular-dependency groups are pure functions of
// persisted data; they are recomputed lazily and cached per run
// generation, with Invalidate() as the populate hook.
type Service struct {
	store      *store.Store
	generation atomic.Int64
	cache      otter.Cache[string, *snapshot]
}

// NewService creates a graph service over the given store.
func NewService(s *store.Store) (*Service, error) {
	cache, err := otter.MustBuilder[string, *snapshot](16).
		Cost(func(key string, value *snapshot) uint32 { return 1 }).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build analytics cache: %w", err)
	}

	return &Service{store: s, cache: cache}, nil
}

// Invalidate discards cached analytics. Call after every populate so
// readers never observe results derived from a previous generation.
func (s *Service) Invalidate() {
	s.generation.Add(1)
	s.cache.Clear()
}

// Close releases cache resources.
func (s *Service) Close() {
	s.cache.Close()
}

// DependencyGraph returns the deduplicated file-level dependency graph.
func (s *Service) DependencyGraph(ctx context.Context) (*FileGraph, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.graph, nil
}

// CouplingMetrics returns per-file afferent/efferent coupling, instability,
// and distance from the main sequence.
func (s *Service) CouplingMetrics(ctx context.Context) ([]CouplingMetrics, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.metrics, nil
}

// CircularDependencies returns every group of two or more files that are
// mutually reachable in the dependency graph.
func (s *Service) CircularDependencies(ctx context.Context) ([]CircularGroup, error) {
	snap, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.groups, nil
}

func (s *Service) snapshot(ctx context.Context) (*snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	key := strconv.FormatInt(s.generation.Load(), 10)
	if snap, ok := s.cache.Get(key); ok {
		return snap, nil
	}

	graph, err := BuildFileGraph(s.store)
	if err != nil {
		return nil, err
	}
	groups, err := FindCircularDependencies(graph)
	if err != nil {
		return nil, err
	}

	snap := &snapshot{
		graph:   graph,
		metrics: ComputeCouplingMetrics(graph),
		groups:  groups,
	}
	s.cache.Set(key, snap)
	return snap, nil
}
