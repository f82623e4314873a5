// Package filters implements data transformation filters applied to
// materialized datasets, and the registry they are looked up through.
// Filters never mutate their input; each application produces a derived
// dataset tagged with the filter that made it.
package filters

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/mesh-intelligence/quest/pkg/types"
)

// Options carries the per-application filter parameters.
type Options map[string]string

// Filter transforms one dataset into a derived dataset.
type Filter interface {
	// Name returns the registry name of the filter.
	Name() string

	// Apply produces a derived dataset from ds. The input is not
	// modified; the result carries a fresh dataset identifier.
	Apply(ds types.Dataset, opts Options) (types.Dataset, error)
}

// Filter registry errors.
var (
	ErrFilterNotFound = errors.New("filter not found")
	ErrMissingOption  = errors.New("missing filter option")
)

var (
	mu       sync.RWMutex
	registry = map[string]Filter{}
)

// Register adds a filter to the registry, replacing any previous filter
// with the same name.
func Register(f Filter) {
	mu.Lock()
	defer mu.Unlock()
	registry[f.Name()] = f
}

// Get returns a registered filter by name.
func Get(name string) (Filter, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrFilterNotFound, name)
	}
	return f, nil
}

// Names returns the sorted names of all registered filters.
func Names() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func init() {
	Register(UnitConversion{})
}
