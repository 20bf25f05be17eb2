package render

import (
	"fmt"
	"sort"
	"sync"
)

// Factory builds a fresh surface for one session.
type Factory func(opts Options) Surface

// Registry maps backend names to their factories.
// It is safe for concurrent reads; Register should only be called at startup.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register adds a backend. Panics on a duplicate name to surface misconfiguration early.
func (r *Registry) Register(name string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[name]; exists {
		panic(fmt.Sprintf("render registry: duplicate backend %q", name))
	}
	r.factories[name] = f
}

// Get returns the factory registered under name.
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[name]
	if !ok {
		return nil, fmt.Errorf("no render backend registered as %q", name)
	}
	return f, nil
}

// Names returns all registered backend names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build constructs one surface per name, in order.
func (r *Registry) Build(names []string, opts Options) (map[string]Surface, Multi, error) {
	byName := make(map[string]Surface, len(names))
	multi := make(Multi, 0, len(names))
	for _, name := range names {
		f, err := r.Get(name)
		if err != nil {
			return nil, nil, err
		}
		s := f(opts)
		byName[name] = s
		multi = append(multi, s)
	}
	return byName, multi, nil
}
