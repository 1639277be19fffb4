package host

import (
	"context"
	"sync"

	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/lantern-dev/lanternhost/domain/errors"
	"github.com/lantern-dev/lanternhost/wireformat"
)

// ChainSession is the host-side view of one registered chain. It enforces the
// session lifecycle: requests may only be submitted while the chain is
// registered, one blocking wait runs at a time, and removal is forbidden
// while a wait is in flight or a lease is outstanding.
type ChainSession struct {
	id      entities.ChainID
	adapter *Adapter

	mu    sync.Mutex
	state entities.ChainState
	lease *ResponseLease
}

// ID returns the engine-assigned chain handle.
func (s *ChainSession) ID() entities.ChainID {
	return s.id
}

// State returns the current session state.
func (s *ChainSession) State() entities.ChainState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Submit validates and queues a JSON-RPC request with the engine. The request
// must be a JSON-RPC 2.0 call or notification; anything else is a
// RequestError and never reaches the engine.
func (s *ChainSession) Submit(ctx context.Context, request string) error {
	s.mu.Lock()
	if s.state == entities.StateRemoved {
		s.mu.Unlock()
		return &errors.StateError{Op: "submit", State: entities.StateRemoved}
	}
	s.mu.Unlock()

	if _, err := wireformat.ParseRequest(request); err != nil {
		return &errors.RequestError{Err: err}
	}

	if err := s.adapter.engine.SubmitRequest(ctx, s.id, request); err != nil {
		return err
	}
	s.adapter.metrics.RequestSubmitted()
	s.adapter.logger.DebugContext(ctx, "request submitted", "chain", s.id)
	return nil
}

// NextResponse blocks until the engine produces the next response for this
// chain and returns it as a lease. ErrChainDrained means no further responses
// will ever arrive. Only one wait may be in flight, and the previous lease
// must be released before acquiring the next.
func (s *ChainSession) NextResponse(ctx context.Context) (*ResponseLease, error) {
	s.mu.Lock()
	switch {
	case s.state == entities.StateRemoved:
		s.mu.Unlock()
		return nil, &errors.StateError{Op: "next_response", State: entities.StateRemoved}
	case s.state == entities.StateAwaitingResponse:
		s.mu.Unlock()
		return nil, &errors.StateError{Op: "next_response", State: entities.StateAwaitingResponse}
	case s.lease != nil:
		s.mu.Unlock()
		return nil, &errors.LeaseError{Op: "acquire"}
	}
	s.state = entities.StateAwaitingResponse
	s.mu.Unlock()

	response, err := s.adapter.engine.NextResponse(ctx, s.id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == entities.StateAwaitingResponse {
		s.state = entities.StateIdle
	}
	if err != nil {
		return nil, err
	}

	lease := &ResponseLease{session: s, response: response}
	s.lease = lease
	s.adapter.metrics.LeaseAcquired()
	s.adapter.metrics.ResponseDelivered()
	return lease, nil
}

// Remove unregisters the chain with the engine and ends the session.
// Removal while a wait is in flight is a StateError; an outstanding lease is
// released as part of removal so the engine-side buffer is always reclaimed.
func (s *ChainSession) Remove(ctx context.Context) error {
	s.mu.Lock()
	switch s.state {
	case entities.StateRemoved:
		s.mu.Unlock()
		return &errors.StateError{Op: "remove", State: entities.StateRemoved}
	case entities.StateAwaitingResponse:
		s.mu.Unlock()
		return &errors.StateError{Op: "remove", State: entities.StateAwaitingResponse}
	}
	s.state = entities.StateRemoved
	lease := s.lease
	s.mu.Unlock()

	if lease != nil {
		if err := lease.Release(ctx); err != nil {
			s.adapter.logger.WarnContext(ctx, "failed to release lease during removal", "chain", s.id, "error", err)
		}
	}

	err := s.adapter.engine.RemoveChain(ctx, s.id)
	s.adapter.sessions.Remove(s.id)
	s.adapter.metrics.ChainRemoved()
	s.adapter.logger.InfoContext(ctx, "chain removed", "chain", s.id)
	return err
}

// leaseReleased clears the outstanding lease slot.
func (s *ChainSession) leaseReleased(lease *ResponseLease) {
	s.mu.Lock()
	if s.lease == lease {
		s.lease = nil
	}
	s.mu.Unlock()
	s.adapter.metrics.LeaseReleased()
}
