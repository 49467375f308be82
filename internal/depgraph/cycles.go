package depgraph

import (
	"fmt"
	"sort"

	"github.com/dominikbraun/graph"
)

// FindCircularDependencies decomposes the file graph into strongly
// connected components and reports every component of size >= 2 as a
// circular-dependency group with one witnessed cycle. Single-node
// components are never reported; self-loops are already excluded at
// graph-build time.
func FindCircularDependencies(fg *FileGraph) ([]CircularGroup, error) {
	g := graph.New(func(id int64) int64 { return id }, graph.Directed())

	for _, node := range fg.Nodes {
		if err := g.AddVertex(node.ID); err != nil {
			return nil, fmt.Errorf("failed to add node %d: %w", node.ID, err)
		}
	}
	for _, edge := range fg.Edges {
		if err := g.AddEdge(edge.From, edge.To); err != nil {
			return nil, fmt.Errorf("failed to add edge %d->%d: %w", edge.From, edge.To, err)
		}
	}

	components, err := graph.StronglyConnectedComponents(g)
	if err != nil {
		return nil, fmt.Errorf("failed to compute strongly connected components: %w", err)
	}

	pathByID := make(map[int64]string, len(fg.Nodes))
	for _, node := range fg.Nodes {
		pathByID[node.ID] = node.Path
	}

	adjacency := make(map[int64][]int64)
	for _, edge := range fg.Edges {
		adjacency[edge.From] = append(adjacency[edge.From], edge.To)
	}

	var groups []CircularGroup
	for _, component := range components {
		if len(component) < 2 {
			continue
		}

		members := append([]int64(nil), component...)
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

		paths := make([]string, len(members))
		for i, id := range members {
			paths[i] = pathByID[id]
		}

		groups = append(groups, CircularGroup{
			FileIDs: members,
			Paths:   paths,
			Cycle:   witnessCycle(members, adjacency),
		})
	}

	// Stable report order across runs.
	sort.Slice(groups, func(i, j int) bool { return groups[i].FileIDs[0] < groups[j].FileIDs[0] })
	return groups, nil
}

// witnessCycle extracts one cycle through a strongly connected component
// by depth-first search restricted to the component's induced subgraph.
// Every node of a non-trivial SCC lies on some cycle through the start
// node, so the search always terminates with a path.
func witnessCycle(members []int64, adjacency map[int64][]int64) []int64 {
	inComponent := make(map[int64]bool, len(members))
	for _, id := range members {
		inComponent[id] = true
	}

	start := members[0]
	visited := make(map[int64]bool)

	var dfs func(current int64, path []int64) []int64
	dfs = func(current int64, path []int64) []int64 {
		for _, next := range adjacency[current] {
			if !inComponent[next] {
				continue
			}
			if next == start && len(path) > 1 {
				return path
			}
			if visited[next] {
				continue
			}
			visited[next] = true
			if cycle := dfs(next, append(path, next)); cycle != nil {
				return cycle
			}
		}
		return nil
	}

	visited[start] = true
	if cycle := dfs(start, []int64{start}); cycle != nil {
		return cycle
	}
	return []int64{start}
}
