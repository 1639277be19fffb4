package hostfuncs

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func echoHandler(ctx context.Context, payload []byte) ([]byte, error) {
	return payload, nil
}

func TestNewRegistry(t *testing.T) {
	reg, err := NewRegistry(
		WithByteHandler("echo", echoHandler),
	)
	require.NoError(t, err)
	assert.True(t, reg.Has("echo"))
	assert.False(t, reg.Has("nope"))
	assert.Equal(t, []string{"echo"}, reg.Names())
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		WithByteHandler("echo", echoHandler),
		WithByteHandler("echo", echoHandler),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate callback name")
}

func TestNewRegistryRejectsEmptyName(t *testing.T) {
	_, err := NewRegistry(WithByteHandler("", echoHandler))
	require.Error(t, err)
}

func TestInvoke(t *testing.T) {
	reg, err := NewRegistry(WithByteHandler("echo", echoHandler))
	require.NoError(t, err)

	resp, err := reg.Invoke(context.Background(), "echo", []byte(`{"x":1}`))
	require.NoError(t, err)
	assert.Equal(t, []byte(`{"x":1}`), resp)
}

func TestInvokeUnknownCallback(t *testing.T) {
	reg, err := NewRegistry()
	require.NoError(t, err)

	resp, err := reg.Invoke(context.Background(), "missing", nil)
	require.NoError(t, err, "unknown callbacks yield a JSON error response, not a Go error")

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(resp, &errResp))
	assert.Equal(t, "NOT_FOUND", errResp.Error)
	assert.Contains(t, errResp.Message, "missing")
}

func TestInvokeCarriesCallbackName(t *testing.T) {
	var seen string
	reg, err := NewRegistry(WithByteHandler("named", func(ctx context.Context, payload []byte) ([]byte, error) {
		seen = CallbackName(ctx)
		return nil, nil
	}))
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "named", nil)
	require.NoError(t, err)
	assert.Equal(t, "named", seen)
}

func TestWithBundle(t *testing.T) {
	bundle := map[string]ByteHandler{
		"a": echoHandler,
		"b": echoHandler,
	}
	reg, err := NewRegistry(WithBundle(bundle))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, reg.Names())
}

func TestMiddlewareOrder(t *testing.T) {
	var order []string
	mw := func(label string) Middleware {
		return func(next ByteHandler) ByteHandler {
			return func(ctx context.Context, payload []byte) ([]byte, error) {
				order = append(order, label)
				return next(ctx, payload)
			}
		}
	}

	reg, err := NewRegistry(
		WithMiddleware(mw("first"), mw("second")),
		WithByteHandler("echo", echoHandler),
	)
	require.NoError(t, err)

	_, err = reg.Invoke(context.Background(), "echo", nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestPanicRecoveryMiddleware(t *testing.T) {
	reg, err := NewRegistry(
		WithMiddleware(PanicRecoveryMiddleware()),
		WithByteHandler("boom", func(ctx context.Context, payload []byte) ([]byte, error) {
			panic("engine callback exploded")
		}),
	)
	require.NoError(t, err)

	resp, err := reg.Invoke(context.Background(), "boom", nil)
	require.NoError(t, err)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal(resp, &errResp))
	assert.Equal(t, "INTERNAL_ERROR", errResp.Error)
	assert.Contains(t, errResp.Message, "engine callback exploded")
}
