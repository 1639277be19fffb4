package hostfuncs

import (
	"context"
	"log/slog"
)

// Middleware is a function that wraps a ByteHandler to add cross-cutting
// behavior. Middleware executes in FIFO order (first registered wraps first,
// onion model).
type Middleware func(next ByteHandler) ByteHandler

// PanicRecoveryMiddleware returns a middleware that catches panics and
// converts them to structured ErrorResponse JSON instead of crashing the
// host. An engine callback must never take the host process down.
func PanicRecoveryMiddleware() Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) (resp []byte, err error) {
			defer func() {
				if r := recover(); r != nil {
					resp = NewPanicError(r).ToJSON()
					err = nil // Return JSON error, not Go error
				}
			}()
			return next(ctx, payload)
		}
	}
}

// LoggingMiddleware returns a middleware that logs callback invocations at
// debug level through the given slog logger.
func LoggingMiddleware(logger *slog.Logger) Middleware {
	return func(next ByteHandler) ByteHandler {
		return func(ctx context.Context, payload []byte) ([]byte, error) {
			name := CallbackName(ctx)
			logger.DebugContext(ctx, "invoking engine callback", "callback", name)
			resp, err := next(ctx, payload)
			if err != nil {
				logger.ErrorContext(ctx, "engine callback failed", "callback", name, "error", err)
			}
			return resp, err
		}
	}
}
