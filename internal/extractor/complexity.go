package extractor

import (
	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codeatlas-dev/codeatlas/internal/store"
)

// Thresholds bucket a raw file complexity score into ordinal levels.
// The defaults are a policy choice, exposed through configuration.
type Thresholds struct {
	Low    int // below this: low
	Medium int // below this: medium
	High   int // below this: high, at or above: very_high
}

// DefaultThresholds returns the standard 10/20/40 bucketing.
func DefaultThresholds() Thresholds {
	return Thresholds{Low: 10, Medium: 20, High: 40}
}

// Level maps a raw complexity score to its ordinal level.
func (t Thresholds) Level(score int) string {
	switch {
	case score < t.Low:
		return store.LevelLow
	case score < t.Medium:
		return store.LevelMedium
	case score < t.High:
		return store.LevelHigh
	default:
		return store.LevelVeryHigh
	}
}

// Branching constructs worth one point each. Boolean operators are binary
// in the grammar, so an N-way chain contributes exactly N-1 nodes.
func isBranchNode(kind string) bool {
	switch kind {
	case "if_statement", "elif_clause", "conditional_expression",
		"for_statement", "while_statement", "for_in_clause":
		return true
	}
	return false
}

// callableComplexity computes the simplified cyclomatic complexity of one
// callable body: base 1, +1 per branching construct, +1 per exception
// handler clause, +1 per boolean operator node.
func callableComplexity(body *sitter.Node) int {
	score := 1
	walkTree(body, func(n *sitter.Node) bool {
		kind := n.Kind()
		if isBranchNode(kind) || kind == "except_clause" || kind == "boolean_operator" {
			score++
		}
		return true
	})
	return score
}

// fileComplexity computes the file-level score: base 1, +1 for every
// branching or exception construct anywhere in the file, +1 for every
// callable definition, nested or not.
func fileComplexity(root *sitter.Node) int {
	score := 1
	walkTree(root, func(n *sitter.Node) bool {
		kind := n.Kind()
		switch {
		case isBranchNode(kind), kind == "except_clause", kind == "boolean_operator":
			score++
		case kind == "function_definition":
			score++
		}
		return true
	})
	return score
}
