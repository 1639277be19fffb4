package host

import (
	"context"

	stdErrors "errors"

	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/lantern-dev/lanternhost/domain/errors"
	"github.com/lantern-dev/lanternhost/domain/ports"
)

// SinkFunc adapts a function to ports.ResponseSink.
type SinkFunc func(ctx context.Context, chain entities.ChainID, response string) error

// Consume implements ports.ResponseSink.
func (f SinkFunc) Consume(ctx context.Context, chain entities.ChainID, response string) error {
	return f(ctx, chain, response)
}

// Pump repeatedly waits for responses on a session and hands them to the
// sink, releasing each lease before the next wait regardless of how the
// iteration ends. It returns nil when the chain drains, the context error
// when canceled, and the first sink or session error otherwise.
func Pump(ctx context.Context, session *ChainSession, sink ports.ResponseSink) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		lease, err := session.NextResponse(ctx)
		if err != nil {
			if stdErrors.Is(err, errors.ErrChainDrained) {
				return nil
			}
			return err
		}

		consumeErr := sink.Consume(ctx, session.ID(), lease.Text())
		releaseErr := lease.Release(ctx)
		if consumeErr != nil {
			return consumeErr
		}
		if releaseErr != nil {
			return releaseErr
		}
	}
}
