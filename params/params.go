// Package params provides the read-only parameter store backing node
// parameter bindings.
//
// A store is a hierarchical YAML document whose top-level keys form a flat
// namespace: a binding string matches a key by exact equality, dotted or
// not, with no descent into nested maps.
package params

import (
	"os"

	"go.yaml.in/yaml/v3"

	"github.com/kbukum/flowkit/errors"
	"github.com/kbukum/flowkit/util"
)

// Store is a read-only hierarchical parameter map.
type Store struct {
	values map[string]any
}

// Load reads a YAML parameters document from path.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.ConfigMissing(path)
		}
		return nil, errors.ConfigParse(path, err)
	}

	values := make(map[string]any)
	if err := yaml.Unmarshal(data, &values); err != nil {
		return nil, errors.ConfigParse(path, err)
	}
	return New(values), nil
}

// New creates a store from an in-memory map. Useful for tests and
// programmatic runs. A nil map yields an empty store.
func New(values map[string]any) *Store {
	if values == nil {
		values = make(map[string]any)
	}
	return &Store{values: values}
}

// Get returns the value for a top-level key.
func (s *Store) Get(key string) (any, bool) {
	v, ok := s.values[key]
	return v, ok
}

// Has reports whether key is a top-level key of the store.
func (s *Store) Has(key string) bool {
	_, ok := s.values[key]
	return ok
}

// Keys returns the sorted top-level keys.
func (s *Store) Keys() []string {
	return util.SortedKeys(s.values)
}

// Len returns the number of top-level keys.
func (s *Store) Len() int { return len(s.values) }

// Resolve maps a parameter binding to its value. A string binding that
// equals a top-level key resolves to the stored value; any other binding
// passes through literally.
func (s *Store) Resolve(binding any) any {
	key, ok := binding.(string)
	if !ok {
		return binding
	}
	if v, found := s.values[key]; found {
		return v
	}
	return binding
}
