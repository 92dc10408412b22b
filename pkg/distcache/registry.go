package distcache

import (
	"sort"
	"sync"

	"github.com/DeBrosOfficial/distcache/pkg/errors"
)

// Registry holds the named caches a process exposes. It is safe for
// concurrent use.
type Registry struct {
	mu     sync.RWMutex
	caches map[string]Cache
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{caches: make(map[string]Cache)}
}

// Register adds c under name. Names are unique.
func (r *Registry) Register(name string, c Cache) error {
	if name == "" {
		return errors.NewValidationError("name", "cache name is required", name)
	}
	if c == nil {
		return errors.NewValidationError("cache", "cache is required", nil)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.caches[name]; exists {
		return errors.NewConflictError("cache", "name", name)
	}
	r.caches[name] = c
	return nil
}

// Lookup returns the cache registered under name.
func (r *Registry) Lookup(name string) (Cache, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.caches[name]
	if !ok {
		return nil, errors.NewNotFoundError("cache", name)
	}
	return c, nil
}

// Names returns the registered cache names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.caches))
	for name := range r.caches {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Close closes every registered cache and returns the first error.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first error
	for _, c := range r.caches {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
