package depgraph

// FileNode is one file vertex in the dependency graph.
type FileNode struct {
	ID     int64  `json:"id"`
	Path   string `json:"path"`
	Domain string `json:"domain"`
}

// FileEdge is a directed dependency between two distinct files. The edge
// set is deduplicated: however many entity-level relationships connect two
// files, at most one edge exists per ordered pair.
type FileEdge struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}

// FileGraph is the file-level projection of the persisted relationships.
type FileGraph struct {
	Nodes []FileNode `json:"nodes"`
	Edges []FileEdge `json:"edges"`
}

// CouplingMetrics holds the per-file coupling measurements.
//
// Abstractness is a fixed constant for now, so Distance is not yet a
// meaningful signal; both are kept for schema compatibility.
type CouplingMetrics struct {
	FileID       int64   `json:"file_id"`
	Path         string  `json:"path"`
	Afferent     int     `json:"afferent_coupling"`  // distinct predecessors
	Efferent     int     `json:"efferent_coupling"`  // distinct successors
	Instability  float64 `json:"instability"`        // efferent / (afferent + efferent)
	Abstractness float64 `json:"abstractness"`
	Distance     float64 `json:"distance"` // |abstractness + instability - 1|
}

// CircularGroup is a non-trivial strongly connected component of the file
// graph: two or more files mutually reachable from each other.
type CircularGroup struct {
	FileIDs []int64  `json:"file_ids"` // sorted members
	Paths   []string `json:"paths"`    // paths matching FileIDs order
	Cycle   []int64  `json:"cycle"`    // one witnessed cycle through the group
}
