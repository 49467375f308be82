package depgraph

import "math"

// defaultAbstractness is a fixed stand-in until a real abstractness metric
// (e.g. ratio of abstract types per file) is defined. Kept so the distance
// column stays schema-stable.
const defaultAbstractness = 0.5

// ComputeCouplingMetrics derives per-file coupling measurements from the
// deduplicated file graph. Multiplicity of underlying relationships never
// inflates the counts: afferent is the number of distinct predecessors,
// efferent the number of distinct successors.
func ComputeCouplingMetrics(g *FileGraph) []CouplingMetrics {
	afferent := make(map[int64]int, len(g.Nodes))
	efferent := make(map[int64]int, len(g.Nodes))
	for _, edge := range g.Edges {
		efferent[edge.From]++
		afferent[edge.To]++
	}

	metrics := make([]CouplingMetrics, 0, len(g.Nodes))
	for _, node := range g.Nodes {
		in := afferent[node.ID]
		out := efferent[node.ID]

		instability := 0.0
		if in+out > 0 {
			instability = float64(out) / float64(in+out)
		}

		metrics = append(metrics, CouplingMetrics{
			FileID:       node.ID,
			Path:         node.Path,
			Afferent:     in,
			Efferent:     out,
			Instability:  instability,
			Abstractness: defaultAbstractness,
			Distance:     math.Abs(defaultAbstractness + instability - 1),
		})
	}
	return metrics
}
