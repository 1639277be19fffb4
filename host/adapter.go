package host

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/lantern-dev/lanternhost/domain/ports"
	"github.com/lantern-dev/lanternhost/host/registry"
)

// Adapter manages chain sessions on top of an engine backing.
type Adapter struct {
	engine   ports.Engine
	sessions *registry.Registry[*ChainSession]
	logger   *slog.Logger
	metrics  ports.Metrics
}

// NewAdapter creates an adapter over the given engine.
func NewAdapter(engine ports.Engine, opts ...Option) (*Adapter, error) {
	if engine == nil {
		return nil, fmt.Errorf("engine must not be nil")
	}
	a := &Adapter{
		engine:   engine,
		sessions: registry.NewRegistry[*ChainSession](),
		logger:   slog.Default(),
		metrics:  nopMetrics{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

// AddChain registers a chain specification with the engine and opens a
// session for it. Chains already registered through this adapter are offered
// to the engine as potential relay chains, so a parachain spec can find its
// relay among them.
func (a *Adapter) AddChain(ctx context.Context, spec []byte) (*ChainSession, error) {
	relays := a.sessions.ActiveIDs()

	id, err := a.engine.AddChain(ctx, spec, relays)
	if err != nil {
		return nil, err
	}

	session := &ChainSession{
		id:      id,
		adapter: a,
		state:   entities.StateIdle,
	}
	if err := a.sessions.Add(id, session); err != nil {
		// An engine handing out a live handle twice is unusable.
		_ = a.engine.RemoveChain(ctx, id)
		return nil, fmt.Errorf("engine reused handle %s: %w", id, err)
	}

	a.metrics.ChainAdded()
	a.logger.InfoContext(ctx, "chain registered", "chain", id, "relays_offered", len(relays))
	return session, nil
}

// Session returns the session for a handle, if registered.
func (a *Adapter) Session(id entities.ChainID) (*ChainSession, bool) {
	return a.sessions.Get(id)
}

// Sessions returns all active sessions in handle order.
func (a *Adapter) Sessions() []*ChainSession {
	return a.sessions.All()
}

// Close ends every session and shuts the engine down. Outstanding leases are
// force-released so engine-side buffers are reclaimed even when an embedder
// forgot one.
func (a *Adapter) Close(ctx context.Context) error {
	for _, session := range a.sessions.All() {
		session.mu.Lock()
		session.state = entities.StateRemoved
		lease := session.lease
		session.mu.Unlock()

		if lease != nil {
			if err := lease.Release(ctx); err != nil {
				a.logger.WarnContext(ctx, "failed to release lease during close", "chain", session.id, "error", err)
			}
		}
		a.sessions.Remove(session.id)
	}
	return a.engine.Close(ctx)
}

// nopMetrics is the default when no metrics backend is configured.
type nopMetrics struct{}

func (nopMetrics) ChainAdded()        {}
func (nopMetrics) ChainRemoved()      {}
func (nopMetrics) RequestSubmitted()  {}
func (nopMetrics) ResponseDelivered() {}
func (nopMetrics) LeaseAcquired()     {}
func (nopMetrics) LeaseReleased()     {}
