package hostfuncs

import (
	"context"
	"encoding/json"
	"fmt"
)

// CallbackFunc is a generic function signature for engine callbacks.
// It accepts a context and a typed request, and returns a typed response.
type CallbackFunc[Req any, Resp any] func(context.Context, Req) Resp

// ByteHandler is a function that accepts raw bytes (JSON) and returns raw
// bytes (JSON). This is the common shape WASM runtimes can easily use.
type ByteHandler func(context.Context, []byte) ([]byte, error)

// NewJSONHandler wraps a typed CallbackFunc into a ByteHandler.
// It handles the JSON unmarshalling of the request and marshalling of the
// response.
//
// Usage:
//
//	logHandler := hostfuncs.NewJSONHandler(func(ctx context.Context, req wireformat.EngineLogWire) wireformat.EngineLogAckWire {
//	    return hostfuncs.PerformEngineLog(ctx, logger, req)
//	})
func NewJSONHandler[Req any, Resp any](fn CallbackFunc[Req, Resp]) ByteHandler {
	return func(ctx context.Context, payload []byte) ([]byte, error) {
		var req Req
		// Callbacks like engine_now_ms carry no payload at all.
		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &req); err != nil {
				return nil, fmt.Errorf("failed to unmarshal callback request: %w", err)
			}
		}

		resp := fn(ctx, req)

		respBytes, err := json.Marshal(resp)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal callback response: %w", err)
		}

		return respBytes, nil
	}
}
