package analyzer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/codeatlas-dev/codeatlas/internal/config"
	"github.com/codeatlas-dev/codeatlas/internal/depgraph"
	"github.com/codeatlas-dev/codeatlas/internal/extractor"
	"github.com/codeatlas-dev/codeatlas/internal/resolver"
	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// FileError records a per-file failure that did not abort the run.
// The file still gets a stub record so queries see the full tree.
type FileError struct {
	Path string
	Err  error
}

func (e FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e FileError) Unwrap() error {
	return e.Err
}

// RunSummary describes one completed populate run.
type RunSummary struct {
	RunID         uuid.UUID     `json:"run_id"`
	Files         int           `json:"files"`
	Types         int           `json:"types"`
	Callables     int           `json:"callables"`
	Relationships int           `json:"relationships"`
	Unresolved    int           `json:"unresolved"`
	Ambiguous     int           `json:"ambiguous"`
	Errors        []FileError   `json:"-"`
	Duration      time.Duration `json:"duration"`
}

// Analyzer drives the populate pipeline: discover files, extract their
// structure in parallel, then persist entities and resolved relationships
// in a single transaction.
type Analyzer struct {
	cfg       *config.Config
	store     *store.Store
	extractor *extractor.Extractor
	graphs    *depgraph.Service
	progress  ProgressReporter
}

// New creates an analyzer. graphs may be nil when no analytics cache
// needs invalidating; progress may be nil for silent operation.
func New(cfg *config.Config, st *store.Store, graphs *depgraph.Service, progress ProgressReporter) *Analyzer {
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}
	thresholds := extractor.Thresholds{
		Low:    cfg.Analysis.Complexity.Low,
		Medium: cfg.Analysis.Complexity.Medium,
		High:   cfg.Analysis.Complexity.High,
	}
	return &Analyzer{
		cfg:       cfg,
		store:     st,
		extractor: extractor.NewPython(thresholds),
		graphs:    graphs,
		progress:  progress,
	}
}

// fileResult pairs one discovered path with its extraction outcome.
// Results are index-addressed so the persist phase sees files in
// discovery order regardless of goroutine scheduling.
type fileResult struct {
	ext *extractor.Extraction
	err error
}

// Populate analyzes the tree rooted at root and replaces the database
// contents with the result. The write happens in one transaction, so
// readers never observe a half-populated state. A file that fails to
// read or parse is recorded as a stub with an entry in Errors; it does
// not abort the run.
func (a *Analyzer) Populate(ctx context.Context, root string) (*RunSummary, error) {
	start := time.Now()

	a.progress.OnDiscoveryStart()
	discovery, err := NewDiscovery(root, a.cfg.Paths.Include, a.cfg.Paths.Exclude)
	if err != nil {
		return nil, err
	}
	paths, err := discovery.Discover()
	if err != nil {
		return nil, err
	}
	a.progress.OnDiscoveryComplete(len(paths))

	results, err := a.extractAll(ctx, root, paths)
	if err != nil {
		return nil, err
	}

	a.progress.OnPersistStart()
	summary, err := a.persist(results)
	if err != nil {
		return nil, err
	}

	for _, r := range results {
		if r.err != nil {
			summary.Errors = append(summary.Errors, FileError{Path: r.ext.File.Path, Err: r.err})
		}
	}

	if a.graphs != nil {
		a.graphs.Invalidate()
	}

	summary.RunID = uuid.New()
	summary.Duration = time.Since(start)
	a.progress.OnComplete(summary)
	return summary, nil
}

// extractAll fans extraction out over a bounded worker pool. Each file
// gets its own deadline so one pathological input cannot stall the run.
func (a *Analyzer) extractAll(ctx context.Context, root string, paths []string) ([]fileResult, error) {
	a.progress.OnExtractionStart(len(paths))

	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Analysis.Concurrency)

	var progressMu sync.Mutex

	for i, relPath := range paths {
		i, relPath := i, relPath
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			results[i] = a.extractOne(gctx, root, relPath)

			progressMu.Lock()
			a.progress.OnFileExtracted(relPath)
			progressMu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extraction aborted: %w", err)
	}
	return results, nil
}

func (a *Analyzer) extractOne(ctx context.Context, root, relPath string) fileResult {
	source, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(relPath)))
	if err != nil {
		return fileResult{
			ext: &extractor.Extraction{File: extractor.StubFile(relPath)},
			err: err,
		}
	}

	fileCtx, cancel := context.WithTimeout(ctx, a.cfg.Analysis.FileTimeout)
	defer cancel()

	ext, err := a.extractor.ExtractFile(fileCtx, relPath, source)
	return fileResult{ext: ext, err: err}
}

// persist writes all extractions in one transaction: clear, insert
// entities capturing store-assigned ids, build the name index in file
// order, resolve stubs, insert the surviving relationships.
func (a *Analyzer) persist(results []fileResult) (*RunSummary, error) {
	tx, err := a.store.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if err := tx.ClearAll(); err != nil {
		return nil, err
	}

	summary := &RunSummary{}
	ix := resolver.NewIndex()
	var pending []resolver.PendingEdge

	for _, r := range results {
		ext := r.ext

		fileID, err := tx.InsertFile(&ext.File)
		if err != nil {
			return nil, err
		}
		summary.Files++

		typeIDs := make([]int64, len(ext.Types))
		for i := range ext.Types {
			td := ext.Types[i]
			td.FileID = fileID
			id, err := tx.InsertTypeDefinition(&td)
			if err != nil {
				return nil, err
			}
			typeIDs[i] = id
			ix.Add(store.EntityType, td.Name, id)
			summary.Types++
		}

		callableIDs := make([]int64, len(ext.Callables))
		for i := range ext.Callables {
			unit := ext.Callables[i].Unit
			unit.FileID = fileID
			if ti := ext.Callables[i].TypeIndex; ti >= 0 {
				tid := typeIDs[ti]
				unit.TypeID = &tid
			}
			id, err := tx.InsertCallable(&unit)
			if err != nil {
				return nil, err
			}
			callableIDs[i] = id
			ix.Add(store.EntityCallable, unit.Name, id)
			summary.Callables++
		}

		for _, stub := range ext.Stubs {
			var sourceID int64
			switch stub.SourceKind {
			case store.EntityType:
				sourceID = typeIDs[stub.SourceIndex]
			case store.EntityCallable:
				sourceID = callableIDs[stub.SourceIndex]
			default:
				sourceID = fileID
			}
			pending = append(pending, resolver.PendingEdge{
				SourceKind: stub.SourceKind,
				SourceID:   sourceID,
				SourceName: stub.SourceName,
				TargetKind: stub.TargetKind,
				TargetName: stub.TargetName,
				Kind:       stub.Kind,
				FilePath:   ext.File.Path,
				Line:       stub.Line,
			})
		}
	}

	relationships, stats := resolver.Resolve(ix, pending)
	for i := range relationships {
		if _, err := tx.InsertRelationship(&relationships[i]); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	summary.Relationships = len(relationships)
	summary.Unresolved = stats.Unresolved
	summary.Ambiguous = stats.Ambiguous
	return summary, nil
}
