package mapgen

import (
	"sort"
	"sync"
)

// Registry maps pass names to implementations. Reads and registrations are
// both safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	passes map[string]Pass
}

// NewRegistry returns a registry holding the given passes.
func NewRegistry(passes ...Pass) *Registry {
	r := &Registry{passes: make(map[string]Pass, len(passes))}
	for _, p := range passes {
		r.Register(p)
	}
	return r
}

// BuiltinPasses returns fresh instances of every built-in pass.
func BuiltinPasses() []Pass {
	return []Pass{
		IceCapPass{},
		IceCapWallPass{},
		ClimatePass{},
		OceanBandPass{},
		GrasslandFillPass{},
		SpawnAllocationPass{},
	}
}

var (
	defaultRegistry     *Registry
	defaultRegistryOnce sync.Once
)

// DefaultRegistry returns the process-wide registry, created on first use
// with the built-in passes.
func DefaultRegistry() *Registry {
	defaultRegistryOnce.Do(func() {
		defaultRegistry = NewRegistry(BuiltinPasses()...)
	})
	return defaultRegistry
}

// RegisterPass adds p to the default registry.
func RegisterPass(p Pass) {
	DefaultRegistry().Register(p)
}

// Register adds p under p.Name(), replacing any pass of the same name.
func (r *Registry) Register(p Pass) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.passes[p.Name()] = p
}

// Pass returns the pass registered under name.
func (r *Registry) Pass(name string) (Pass, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.passes[name]
	return p, ok
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.Pass(name)
	return ok
}

// Names returns every registered pass name, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.passes))
	for name := range r.passes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validation is the outcome of checking a pipeline against the registry.
type Validation struct {
	Valid   bool     `json:"valid"`
	Missing []string `json:"missing_passes,omitempty"`
}

// Validate checks that every name is registered. Missing names are
// reported once each, in first-seen order.
func (r *Registry) Validate(names []string) Validation {
	var missing []string
	seen := make(map[string]bool)
	for _, name := range names {
		if r.Has(name) || seen[name] {
			continue
		}
		seen[name] = true
		missing = append(missing, name)
	}
	return Validation{Valid: len(missing) == 0, Missing: missing}
}
