package runner

import (
	"sync"

	"github.com/kbukum/flowkit/util"
)

// Environment is the per-run store of produced and loaded data values,
// keyed by data ref. It is written only by the runner, between node
// invocations; concurrent runs use disjoint environments.
type Environment struct {
	mu   sync.RWMutex
	data map[string]any
}

// NewEnvironment creates an empty environment.
func NewEnvironment() *Environment {
	return &Environment{data: make(map[string]any)}
}

// Get retrieves a value by ref. Returns false if the ref is not bound.
func (e *Environment) Get(ref string) (any, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	v, ok := e.data[ref]
	return v, ok
}

// Has reports whether ref is bound.
func (e *Environment) Has(ref string) bool {
	_, ok := e.Get(ref)
	return ok
}

// Set binds a value to ref.
func (e *Environment) Set(ref string, value any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.data[ref] = value
}

// Names returns the sorted bound refs.
func (e *Environment) Names() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return util.SortedKeys(e.data)
}

// Len returns the number of bound refs.
func (e *Environment) Len() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.data)
}

// Snapshot returns a copy of the bindings.
func (e *Environment) Snapshot() map[string]any {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make(map[string]any, len(e.data))
	for k, v := range e.data {
		out[k] = v
	}
	return out
}
