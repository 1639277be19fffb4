package host

import (
	"context"
	"sync"

	"github.com/lantern-dev/lanternhost/domain/errors"
	"github.com/lantern-dev/lanternhost/domain/ports"
)

// ResponseLease is a loaned JSON-RPC response. The engine-side buffer stays
// alive until Release, which must be called exactly once per lease. A session
// holds at most one outstanding lease at a time.
type ResponseLease struct {
	session  *ChainSession
	response ports.Response

	mu       sync.Mutex
	released bool
}

// Text returns the response text. Valid only while the lease is held; after
// Release it returns the empty string.
func (l *ResponseLease) Text() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.released {
		return ""
	}
	return l.response.Text()
}

// Release returns the buffer to the engine. A second Release is a LeaseError.
func (l *ResponseLease) Release(ctx context.Context) error {
	l.mu.Lock()
	if l.released {
		l.mu.Unlock()
		return &errors.LeaseError{Op: "release"}
	}
	l.released = true
	l.mu.Unlock()

	err := l.response.Free(ctx)
	l.session.leaseReleased(l)
	return err
}

// Released reports whether the lease has been released.
func (l *ResponseLease) Released() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.released
}
