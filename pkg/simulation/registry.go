package simulation

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages the engine factory of each policy
type Registry struct {
	mu        sync.RWMutex
	factories map[Kind]EngineFactory
}

// NewRegistry creates a new engine registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[Kind]EngineFactory),
	}
}

// Register adds the engine factory for a policy
func (r *Registry) Register(kind Kind, factory EngineFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.factories[kind]; exists {
		return fmt.Errorf("engine for %s already registered", kind)
	}

	r.factories[kind] = factory
	return nil
}

// Get returns the engine factory for a policy
func (r *Registry) Get(kind Kind) (EngineFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[kind]
	if !exists {
		return nil, fmt.Errorf("no engine registered for %s", kind)
	}

	return factory, nil
}

// New freezes the globals and builds an engine for the configuration
func (r *Registry) New(cfg *RunConfiguration, g *Globals, debug DebugBuffer) (Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid run configuration: %w", err)
	}

	factory, err := r.Get(cfg.Kind)
	if err != nil {
		return nil, err
	}

	g.Freeze()
	return factory(cfg, g, debug)
}

// List returns all registered policies in declaration order
func (r *Registry) List() []Kind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]Kind, 0, len(r.factories))
	for kind := range r.factories {
		kinds = append(kinds, kind)
	}
	sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
	return kinds
}

// DefaultRegistry is the global engine registry
var DefaultRegistry = NewRegistry()
