package pipeline

import (
	"fmt"
	"strings"

	"github.com/kbukum/flowkit/util"
)

// Selection is a pure filter over a pipeline's node list. Filters compose
// in a fixed order: tags first, then explicit names, then the from/to
// range. Explicit names take precedence over the range; the original
// pipeline order is never changed.
type Selection struct {
	// Tags keeps nodes whose tag set intersects it.
	Tags []string
	// Names keeps exactly the named nodes. When set, FromNodes and
	// ToNodes are ignored with a warning.
	Names []string
	// FromNodes starts the range at the earliest matching node.
	FromNodes []string
	// ToNodes ends the range at the latest matching node.
	ToNodes []string
}

// IsZero reports whether the selection filters nothing.
func (s Selection) IsZero() bool {
	return len(s.Tags) == 0 && len(s.Names) == 0 && len(s.FromNodes) == 0 && len(s.ToNodes) == 0
}

// Apply filters the pipeline's nodes, returning the selected subsequence
// and any warnings produced along the way.
func (s Selection) Apply(p *Pipeline) ([]*Node, []string) {
	nodes := p.Nodes()
	var warnings []string

	if len(s.Tags) > 0 {
		nodes = util.Filter(nodes, func(n *Node) bool { return n.HasAnyTag(s.Tags) })
	}

	if len(s.Names) > 0 {
		if len(s.FromNodes) > 0 || len(s.ToNodes) > 0 {
			warnings = append(warnings,
				"node names were given; from_nodes and to_nodes are ignored")
		}
		nodes = util.Filter(nodes, func(n *Node) bool { return util.Contains(s.Names, n.Name()) })
		return nodes, warnings
	}

	if len(s.FromNodes) == 0 && len(s.ToNodes) == 0 {
		return nodes, warnings
	}

	start := 0
	end := len(nodes) - 1
	if len(s.FromNodes) > 0 {
		start = firstIndex(nodes, s.FromNodes)
		if start < 0 {
			warnings = append(warnings, rangeWarning("from_nodes", s.FromNodes))
			return nil, warnings
		}
	}
	if len(s.ToNodes) > 0 {
		end = lastIndex(nodes, s.ToNodes)
		if end < 0 {
			warnings = append(warnings, rangeWarning("to_nodes", s.ToNodes))
			return nil, warnings
		}
	}
	if start > end {
		return nil, warnings
	}
	return nodes[start : end+1], warnings
}

func firstIndex(nodes []*Node, names []string) int {
	for i, n := range nodes {
		if util.Contains(names, n.Name()) {
			return i
		}
	}
	return -1
}

func lastIndex(nodes []*Node, names []string) int {
	for i := len(nodes) - 1; i >= 0; i-- {
		if util.Contains(names, nodes[i].Name()) {
			return i
		}
	}
	return -1
}

func rangeWarning(field string, names []string) string {
	return fmt.Sprintf("%s [%s] matched no node; selection is empty", field, strings.Join(names, ", "))
}
