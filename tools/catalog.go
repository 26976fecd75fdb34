package tools

import (
	"fmt"
	"maps"
	"slices"
)

// Adapter produces a dry-run report from params. Adapters must be
// deterministic and must not retain or mutate params.
type Adapter func(params map[string]any) map[string]any

// Catalog maps tool ids to adapters. It is immutable after construction.
type Catalog struct {
	adapters map[string]Adapter
}

// NewCatalog builds a catalog from adapters.
func NewCatalog(adapters map[string]Adapter) (*Catalog, error) {
	for id, a := range adapters {
		if a == nil {
			return nil, fmt.Errorf("tools: adapter %q is nil", id)
		}
	}
	return &Catalog{adapters: maps.Clone(adapters)}, nil
}

// DefaultCatalog returns the built-in simulated tools.
func DefaultCatalog() *Catalog {
	c, _ := NewCatalog(builtinAdapters())
	return c
}

// Lookup returns the adapter for id.
func (c *Catalog) Lookup(id string) (Adapter, bool) {
	a, ok := c.adapters[id]
	return a, ok
}

// IDs returns the registered tool ids, sorted.
func (c *Catalog) IDs() []string {
	return slices.Sorted(maps.Keys(c.adapters))
}

// Len returns the number of registered tools.
func (c *Catalog) Len() int { return len(c.adapters) }
