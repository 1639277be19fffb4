package hostfuncs

import (
	"context"
	"log/slog"
	"time"

	"github.com/lantern-dev/lanternhost/wireformat"
)

// Callback names exported to the engine module.
const (
	CallbackEngineLog   = "engine_log"
	CallbackEngineNowMs = "engine_now_ms"
)

// PerformEngineLog routes an engine log record to the host logger.
// Unknown levels are logged at info so no record is silently dropped.
func PerformEngineLog(ctx context.Context, logger *slog.Logger, req wireformat.EngineLogWire) wireformat.EngineLogAckWire {
	level := slog.LevelInfo
	switch req.Level {
	case "trace", "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	attrs := []any{"source", "engine"}
	if req.Target != "" {
		attrs = append(attrs, "target", req.Target)
	}
	logger.Log(ctx, level, req.Message, attrs...)
	return wireformat.EngineLogAckWire{}
}

// LogBundle returns the engine_log callback backed by the given logger.
func LogBundle(logger *slog.Logger) map[string]ByteHandler {
	return map[string]ByteHandler{
		CallbackEngineLog: NewJSONHandler(func(ctx context.Context, req wireformat.EngineLogWire) wireformat.EngineLogAckWire {
			return PerformEngineLog(ctx, logger, req)
		}),
	}
}

// ClockBundle returns the engine_now_ms callback. Engines without their own
// clock source use it to timestamp consensus checks.
func ClockBundle() map[string]ByteHandler {
	return clockBundle(time.Now)
}

// clockBundle allows tests to pin the clock.
func clockBundle(now func() time.Time) map[string]ByteHandler {
	return map[string]ByteHandler{
		CallbackEngineNowMs: NewJSONHandler(func(ctx context.Context, _ struct{}) wireformat.ClockWire {
			return wireformat.ClockWire{NowMs: now().UnixMilli()}
		}),
	}
}
