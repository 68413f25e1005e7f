package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/util"
)

// Node is an immutable descriptor binding a function to named inputs,
// outputs, parameter bindings and tags. Input and output declarations keep
// their surface form; normalization happens when the node runs.
type Node struct {
	name       string
	fn         Func
	inputs     any
	outputs    any
	parameters map[string]any
	tags       []string
}

// Binding is one normalized argument-name to data-ref pair.
type Binding struct {
	Arg string
	Ref string
}

// NodeOption configures NewNode.
type NodeOption func(*Node)

// WithName overrides the node name derived from the function.
func WithName(name string) NodeOption {
	return func(n *Node) { n.name = name }
}

// WithTags adds tags to the node.
func WithTags(tags ...string) NodeOption {
	return func(n *Node) { n.tags = append(n.tags, tags...) }
}

// WithParameters sets the node's parameter bindings: a map of argument
// name to binding, or a bare string s as shorthand for {s: s}.
func WithParameters(parameters any) NodeOption {
	return func(n *Node) {
		switch p := parameters.(type) {
		case nil:
		case map[string]any:
			n.parameters = p
		case string:
			n.parameters = map[string]any{p: p}
		default:
			// rejected in NewNode
			n.parameters = map[string]any{"": parameters}
		}
	}
}

// NewNode creates a validated, immutable node.
//
// inputs and outputs accept a nil, a string, a []string, or a
// map[string]string (argument name to data ref for inputs, return key to
// data ref for outputs).
func NewNode(fn Func, inputs, outputs any, opts ...NodeOption) (*Node, error) {
	if fn == nil {
		return nil, errors.InvalidNode("function is required")
	}

	n := &Node{fn: fn, inputs: inputs, outputs: outputs}
	for _, opt := range opts {
		opt(n)
	}

	if n.name == "" {
		n.name = fn.Name()
	}
	if n.name == "" {
		return nil, errors.InvalidNode("name is empty and the function has no name")
	}

	if err := validateRefShape("inputs", inputs); err != nil {
		return nil, err
	}
	if err := validateRefShape("outputs", outputs); err != nil {
		return nil, err
	}
	for arg := range n.parameters {
		if arg == "" {
			return nil, errors.InvalidNode(fmt.Sprintf("node %q: parameters must be a map or a string", n.name))
		}
	}

	inputArgs := make([]string, 0, 4)
	for _, b := range n.Bindings() {
		if util.Contains(inputArgs, b.Arg) {
			return nil, errors.InvalidNode(fmt.Sprintf("node %q: duplicate input argument %q", n.name, b.Arg))
		}
		inputArgs = append(inputArgs, b.Arg)
	}
	for arg := range n.parameters {
		if util.Contains(inputArgs, arg) {
			return nil, errors.InvalidNode(fmt.Sprintf("node %q: argument %q bound by both inputs and parameters", n.name, arg))
		}
	}

	if err := n.checkResolvable(inputArgs); err != nil {
		return nil, err
	}

	sort.Strings(n.tags)
	n.tags = dedupeSorted(n.tags)
	return n, nil
}

// checkResolvable verifies every bound argument matches a declared formal,
// unless the function is variadic.
func (n *Node) checkResolvable(inputArgs []string) error {
	sig := n.fn.Signature()
	if sig.Variadic {
		return nil
	}
	formals := make([]string, len(sig.Formals))
	for i, f := range sig.Formals {
		formals[i] = f.Name
	}
	for _, arg := range inputArgs {
		if !util.Contains(formals, arg) {
			return errors.InvalidNode(fmt.Sprintf("node %q: input argument %q does not match any function parameter", n.name, arg))
		}
	}
	for _, arg := range util.SortedKeys(n.parameters) {
		if !util.Contains(formals, arg) {
			return errors.InvalidNode(fmt.Sprintf("node %q: parameter %q does not match any function parameter", n.name, arg))
		}
	}
	return nil
}

// validateRefShape checks an input/output declaration's surface form.
func validateRefShape(kind string, v any) error {
	switch refs := v.(type) {
	case nil:
		return nil
	case string:
		if refs == "" {
			return errors.InvalidNode(kind + " contains an empty data ref")
		}
		return nil
	case []string:
		for _, r := range refs {
			if r == "" {
				return errors.InvalidNode(kind + " contains an empty data ref")
			}
		}
		return nil
	case map[string]string:
		for k, r := range refs {
			if k == "" || r == "" {
				return errors.InvalidNode(kind + " contains an empty data ref")
			}
		}
		return nil
	default:
		return errors.InvalidNode(fmt.Sprintf("%s must be a string, a list of strings, or a map of strings (got %T)", kind, v))
	}
}

func dedupeSorted(s []string) []string {
	out := s[:0]
	for i, v := range s {
		if i == 0 || s[i-1] != v {
			out = append(out, v)
		}
	}
	return out
}

// Name returns the node name.
func (n *Node) Name() string { return n.name }

// Func returns the bound function.
func (n *Node) Func() Func { return n.fn }

// Inputs returns the verbatim input declaration.
func (n *Node) Inputs() any { return n.inputs }

// Outputs returns the verbatim output declaration.
func (n *Node) Outputs() any { return n.outputs }

// Parameters returns a copy of the parameter bindings.
func (n *Node) Parameters() map[string]any {
	out := make(map[string]any, len(n.parameters))
	for k, v := range n.parameters {
		out[k] = v
	}
	return out
}

// Tags returns a copy of the node's tags, sorted.
func (n *Node) Tags() []string {
	out := make([]string, len(n.tags))
	copy(out, n.tags)
	return out
}

// HasAnyTag reports whether the node's tag set intersects tags.
func (n *Node) HasAnyTag(tags []string) bool {
	return util.Intersects(n.tags, tags)
}

// Bindings normalizes the input declaration into ordered argument-name to
// data-ref pairs. Bare refs bind to arguments of the same name; map-form
// declarations are ordered by argument name.
func (n *Node) Bindings() []Binding {
	switch refs := n.inputs.(type) {
	case string:
		return []Binding{{Arg: refs, Ref: refs}}
	case []string:
		out := make([]Binding, len(refs))
		for i, r := range refs {
			out[i] = Binding{Arg: r, Ref: r}
		}
		return out
	case map[string]string:
		out := make([]Binding, 0, len(refs))
		for _, arg := range util.SortedKeys(refs) {
			out = append(out, Binding{Arg: arg, Ref: refs[arg]})
		}
		return out
	default:
		return nil
	}
}

// OutputRefs returns the data refs the node stores, in declaration order
// (map-form outputs ordered by return key).
func (n *Node) OutputRefs() []string {
	switch refs := n.outputs.(type) {
	case string:
		return []string{refs}
	case []string:
		out := make([]string, len(refs))
		copy(out, refs)
		return out
	case map[string]string:
		out := make([]string, 0, len(refs))
		for _, k := range util.SortedKeys(refs) {
			out = append(out, refs[k])
		}
		return out
	default:
		return nil
	}
}

// String renders the node as "name([inputs]) -> [outputs]".
func (n *Node) String() string {
	ins := make([]string, 0, 4)
	for _, b := range n.Bindings() {
		ins = append(ins, b.Ref)
	}
	return fmt.Sprintf("%s([%s]) -> [%s]",
		n.name, strings.Join(ins, ","), strings.Join(n.OutputRefs(), ","))
}
