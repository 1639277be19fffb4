package ports

import (
	"context"

	"github.com/lantern-dev/lanternhost/domain/entities"
)

// ResponseSink consumes JSON-RPC responses delivered by a pump loop.
// The response text is only valid for the duration of the call; the pump
// releases the underlying lease as soon as Consume returns.
type ResponseSink interface {
	Consume(ctx context.Context, chain entities.ChainID, response string) error
}
