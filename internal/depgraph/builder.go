package depgraph

import (
	"fmt"
	"log"
	"sort"

	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// BuildFileGraph projects the persisted entity-level relationships down to
// a simple directed graph over files.
//
// For each relationship, both endpoints are mapped to their owning files
// via the type/callable tables. Edges keep one entry per ordered file
// pair; self-loops and edges with an undeterminable owner are discarded.
func BuildFileGraph(s *store.Store) (*FileGraph, error) {
	files, err := s.ListFiles(store.FileFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}

	relationships, err := s.ListRelationships(store.RelationshipFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list relationships: %w", err)
	}

	owners, err := s.EntityFileOwners()
	if err != nil {
		return nil, fmt.Errorf("failed to map entity owners: %w", err)
	}

	nodes := make([]FileNode, 0, len(files))
	for _, f := range files {
		nodes = append(nodes, FileNode{ID: f.ID, Path: f.Path, Domain: f.Domain})
	}

	edgeSet := make(map[FileEdge]bool)
	dropped := 0
	for _, rel := range relationships {
		sourceFile, ok := owners[store.EntityRef{Kind: rel.SourceKind, ID: rel.SourceID}]
		if !ok {
			dropped++
			continue
		}
		targetFile, ok := owners[store.EntityRef{Kind: rel.TargetKind, ID: rel.TargetID}]
		if !ok {
			dropped++
			continue
		}
		if sourceFile == targetFile {
			continue
		}
		edgeSet[FileEdge{From: sourceFile, To: targetFile}] = true
	}
	if dropped > 0 {
		log.Printf("Warning: dropped %d relationships with unknown file owners", dropped)
	}

	edges := make([]FileEdge, 0, len(edgeSet))
	for edge := range edgeSet {
		edges = append(edges, edge)
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})

	return &FileGraph{Nodes: nodes, Edges: edges}, nil
}
