package hostfuncs

import (
	"context"
	"fmt"
	"sort"
)

// ctxKey is the context key carrying the invoked callback name.
type ctxKey struct{}

// CallbackName returns the name of the callback being invoked, when the
// context originates from Registry.Invoke.
func CallbackName(ctx context.Context) string {
	if name, ok := ctx.Value(ctxKey{}).(string); ok {
		return name
	}
	return "unknown"
}

// Registry is an immutable collection of named engine callbacks.
// Once created via NewRegistry, handlers cannot be added or removed.
// This ensures thread safety and lock-free lookups during execution.
type Registry struct {
	handlers   map[string]ByteHandler
	names      []string // sorted for consistent iteration
	middleware []Middleware
}

// registryBuilder accumulates configuration during registry construction.
type registryBuilder struct {
	handlers   map[string]ByteHandler
	middleware []Middleware
	errors     []error
}

// RegistryOption is a functional option for configuring a Registry.
type RegistryOption func(*registryBuilder)

// NewRegistry creates an immutable Registry with the given options.
// Returns an error if any callback name is registered twice.
//
// Example usage:
//
//	registry, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
//	    hostfuncs.WithBundle(hostfuncs.LogBundle(logger)),
//	    hostfuncs.WithBundle(hostfuncs.ClockBundle()),
//	)
func NewRegistry(opts ...RegistryOption) (*Registry, error) {
	b := &registryBuilder{
		handlers: make(map[string]ByteHandler),
	}

	for _, opt := range opts {
		opt(b)
	}

	if len(b.errors) > 0 {
		return nil, b.errors[0] // Return first error
	}

	names := make([]string, 0, len(b.handlers))
	for name := range b.handlers {
		names = append(names, name)
	}
	sort.Strings(names)

	// Apply middleware chain to all handlers (FIFO order: first middleware
	// wraps outermost).
	wrapped := make(map[string]ByteHandler, len(b.handlers))
	for name, handler := range b.handlers {
		h := handler
		for i := len(b.middleware) - 1; i >= 0; i-- {
			h = b.middleware[i](h)
		}
		wrapped[name] = h
	}

	return &Registry{
		handlers:   wrapped,
		names:      names,
		middleware: b.middleware,
	}, nil
}

// Invoke dispatches a callback by name.
// Returns the JSON response bytes, or an ErrorResponse JSON if the callback
// is not registered.
func (r *Registry) Invoke(ctx context.Context, name string, payload []byte) ([]byte, error) {
	handler, ok := r.handlers[name]
	if !ok {
		return NewNotFoundError(name).ToJSON(), nil
	}
	return handler(context.WithValue(ctx, ctxKey{}, name), payload)
}

// Has returns true if a callback with the given name is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.handlers[name]
	return ok
}

// Names returns a sorted list of all registered callback names.
func (r *Registry) Names() []string {
	result := make([]string, len(r.names))
	copy(result, r.names)
	return result
}

// addHandler registers a callback with the given name.
func (b *registryBuilder) addHandler(name string, handler ByteHandler) error {
	if name == "" {
		return fmt.Errorf("callback name cannot be empty")
	}
	if _, exists := b.handlers[name]; exists {
		return fmt.Errorf("duplicate callback name: %q", name)
	}
	b.handlers[name] = handler
	return nil
}

// WithByteHandler registers a raw ByteHandler with the given name.
// Use NewJSONHandler for type-safe registration with automatic JSON handling.
func WithByteHandler(name string, handler ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		if err := b.addHandler(name, handler); err != nil {
			b.errors = append(b.errors, err)
		}
	}
}

// WithBundle registers a named set of callbacks.
func WithBundle(bundle map[string]ByteHandler) RegistryOption {
	return func(b *registryBuilder) {
		for name, handler := range bundle {
			if err := b.addHandler(name, handler); err != nil {
				b.errors = append(b.errors, err)
			}
		}
	}
}

// WithMiddleware adds middleware to the registry.
// Middleware executes in FIFO order (first added wraps first).
func WithMiddleware(mw ...Middleware) RegistryOption {
	return func(b *registryBuilder) {
		b.middleware = append(b.middleware, mw...)
	}
}
