// Package registry tracks active chain sessions by handle.
package registry

import (
	"fmt"
	"slices"
	"sync"

	"github.com/lantern-dev/lanternhost/domain/entities"
)

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool // Fail on duplicate handles
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true,
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate handles.
// Default is true (fail on duplicates). A duplicate handle from the engine
// means two sessions would share one response stream.
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// Registry is a concurrency-safe map from chain handle to session.
type Registry[T any] struct {
	config registryConfig

	mu       sync.RWMutex
	sessions map[entities.ChainID]T
}

// NewRegistry creates a new Registry with the given options.
func NewRegistry[T any](opts ...RegistryOption) *Registry[T] {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry[T]{
		config:   cfg,
		sessions: make(map[entities.ChainID]T),
	}
}

// Add registers a session under its handle.
func (r *Registry[T]) Add(id entities.ChainID, session T) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.config.strictMode {
		if _, exists := r.sessions[id]; exists {
			return fmt.Errorf("chain %s already registered", id)
		}
	}
	r.sessions[id] = session
	return nil
}

// Remove drops a session. Reports whether it was present.
func (r *Registry[T]) Remove(id entities.ChainID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.sessions[id]
	delete(r.sessions, id)
	return ok
}

// Get retrieves a session by handle.
func (r *Registry[T]) Get(id entities.ChainID) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	return session, ok
}

// Has reports whether a handle is registered.
func (r *Registry[T]) Has(id entities.ChainID) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// ActiveIDs returns all registered handles in ascending order.
func (r *Registry[T]) ActiveIDs() []entities.ChainID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]entities.ChainID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

// All returns every registered session in ascending handle order.
func (r *Registry[T]) All() []T {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]entities.ChainID, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.sessions[id])
	}
	return out
}

// Len returns the number of registered sessions.
func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
