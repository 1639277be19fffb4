package ports

import (
	"context"

	"github.com/lantern-dev/lanternhost/domain/entities"
)

// Response is a text buffer owned by the engine and loaned to the host.
// The buffer's engine-side storage stays alive until Free is called; Free
// must be called exactly once per Response obtained from NextResponse.
type Response interface {
	// Text returns the JSON-RPC response text.
	Text() string

	// Free returns the buffer to the engine. Calling it more than once is an
	// error; reading Text afterward is a boundary-contract violation and is
	// guarded by the host lease layer.
	Free(ctx context.Context) error
}

// Engine is the boundary to the external light-client engine.
//
// All the hard engineering (networking, consensus verification, JSON-RPC
// dispatch, multiplexing) lives behind this interface. Implementations map
// the boundary's sentinel signals to typed errors: a refused registration
// becomes errors.RegistrationError, and a closed response stream becomes
// errors.ErrChainDrained.
type Engine interface {
	// AddChain registers a chain specification and returns its handle.
	// Previously registered chains are offered as potential relay chains so
	// parachain specs can resolve their relay.
	AddChain(ctx context.Context, spec []byte, potentialRelays []entities.ChainID) (entities.ChainID, error)

	// RemoveChain releases all engine-side resources for the handle.
	// The handle is invalid afterwards.
	RemoveChain(ctx context.Context, id entities.ChainID) error

	// SubmitRequest queues a JSON-RPC request. Fire-and-forget: response
	// ordering relative to submissions is determined solely by the engine.
	SubmitRequest(ctx context.Context, id entities.ChainID, request string) error

	// NextResponse blocks until a response or subscription notification for
	// the chain is available, or ctx is done. Returns errors.ErrChainDrained
	// once the chain's response stream is gone.
	NextResponse(ctx context.Context, id entities.ChainID) (Response, error)

	// Close shuts the engine down, removing any remaining chains.
	Close(ctx context.Context) error
}
