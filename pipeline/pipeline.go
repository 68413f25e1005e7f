package pipeline

import (
	"fmt"
	"strings"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/logger"
	"github.com/kbukum/flowkit/util"
)

// Pipeline is an ordered, flat collection of nodes.
type Pipeline struct {
	name       string
	nodes      []*Node
	duplicates []string
}

// New composes a pipeline from a mixed sequence of nodes and pipelines.
// Pipelines are spliced in; a node object appearing more than once is kept
// once. A single slice passed as the sole argument is unwrapped one level.
//
// Duplicate node names are permitted but logged, and reported by
// DuplicateNames. No data-dependency check happens here: an input no node
// produces may still be satisfied by the catalog at run time.
func New(items ...any) (*Pipeline, error) {
	return Named("", items...)
}

// Named composes a pipeline like New and assigns it a name.
func Named(name string, items ...any) (*Pipeline, error) {
	if len(items) == 1 {
		if seq, ok := unwrapSequence(items[0]); ok {
			items = seq
		}
	}

	p := &Pipeline{name: name}
	seen := make(map[*Node]bool)
	for _, item := range items {
		switch v := item.(type) {
		case *Node:
			if v == nil {
				return nil, errors.InvalidPipeline("nil node")
			}
			if !seen[v] {
				seen[v] = true
				p.nodes = append(p.nodes, v)
			}
		case *Pipeline:
			if v == nil {
				return nil, errors.InvalidPipeline("nil pipeline")
			}
			for _, n := range v.nodes {
				if !seen[n] {
					seen[n] = true
					p.nodes = append(p.nodes, n)
				}
			}
		default:
			return nil, errors.InvalidPipeline(fmt.Sprintf("items must be nodes or pipelines (got %T)", item))
		}
	}

	p.duplicates = findDuplicateNames(p.nodes)
	if len(p.duplicates) > 0 {
		logger.Warn("pipeline contains duplicate node names",
			logger.Fields(logger.FieldPipeline, name, "duplicates", strings.Join(p.duplicates, ", ")))
	}
	return p, nil
}

// unwrapSequence unwraps the sole-argument sequence forms.
func unwrapSequence(item any) ([]any, bool) {
	switch seq := item.(type) {
	case []any:
		return seq, true
	case []*Node:
		out := make([]any, len(seq))
		for i, n := range seq {
			out[i] = n
		}
		return out, true
	case []*Pipeline:
		out := make([]any, len(seq))
		for i, p := range seq {
			out[i] = p
		}
		return out, true
	default:
		return nil, false
	}
}

// findDuplicateNames returns each name that appears more than once, once,
// in discovery order.
func findDuplicateNames(nodes []*Node) []string {
	counts := make(map[string]int, len(nodes))
	for _, n := range nodes {
		counts[n.name]++
	}
	var dups []string
	for _, n := range nodes {
		if counts[n.name] > 1 && !util.Contains(dups, n.name) {
			dups = append(dups, n.name)
		}
	}
	return dups
}

// Name returns the pipeline name, possibly empty.
func (p *Pipeline) Name() string { return p.name }

// Nodes returns a copy of the ordered node list.
func (p *Pipeline) Nodes() []*Node {
	out := make([]*Node, len(p.nodes))
	copy(out, p.nodes)
	return out
}

// Len returns the number of nodes.
func (p *Pipeline) Len() int { return len(p.nodes) }

// DuplicateNames returns the duplicated node names found at construction,
// in discovery order, each once.
func (p *Pipeline) DuplicateNames() []string {
	out := make([]string, len(p.duplicates))
	copy(out, p.duplicates)
	return out
}

// NodeNames returns the node names in pipeline order.
func (p *Pipeline) NodeNames() []string {
	names := make([]string, len(p.nodes))
	for i, n := range p.nodes {
		names[i] = n.name
	}
	return names
}

// subPipeline wraps an already-validated node slice.
func (p *Pipeline) subPipeline(nodes []*Node) *Pipeline {
	return &Pipeline{name: p.name, nodes: nodes, duplicates: findDuplicateNames(nodes)}
}

// OnlyNodesWithTags returns the sub-pipeline of nodes carrying any of tags.
func (p *Pipeline) OnlyNodesWithTags(tags ...string) *Pipeline {
	nodes, _ := Selection{Tags: tags}.Apply(p)
	return p.subPipeline(nodes)
}

// OnlyNodes returns the sub-pipeline of the named nodes, in pipeline order.
func (p *Pipeline) OnlyNodes(names ...string) *Pipeline {
	nodes, _ := Selection{Names: names}.Apply(p)
	return p.subPipeline(nodes)
}

// FromNodes returns the sub-pipeline starting at the earliest named node.
func (p *Pipeline) FromNodes(names ...string) *Pipeline {
	nodes, _ := Selection{FromNodes: names}.Apply(p)
	return p.subPipeline(nodes)
}

// ToNodes returns the sub-pipeline ending at the latest named node.
func (p *Pipeline) ToNodes(names ...string) *Pipeline {
	nodes, _ := Selection{ToNodes: names}.Apply(p)
	return p.subPipeline(nodes)
}
