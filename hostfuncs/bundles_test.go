package hostfuncs

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/lantern-dev/lanternhost/wireformat"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogBundle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	reg, err := NewRegistry(WithBundle(LogBundle(logger)))
	require.NoError(t, err)

	payload, err := json.Marshal(wireformat.EngineLogWire{
		Level:   "warn",
		Target:  "sync",
		Message: "peer disconnected",
	})
	require.NoError(t, err)

	resp, err := reg.Invoke(context.Background(), CallbackEngineLog, payload)
	require.NoError(t, err)

	var ack wireformat.EngineLogAckWire
	require.NoError(t, json.Unmarshal(resp, &ack))
	assert.Nil(t, ack.Error)

	out := buf.String()
	assert.Contains(t, out, "peer disconnected")
	assert.Contains(t, out, "level=WARN")
	assert.Contains(t, out, "target=sync")
}

func TestLogBundleUnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))

	ack := PerformEngineLog(context.Background(), logger, wireformat.EngineLogWire{
		Level:   "shout",
		Message: "still logged",
	})
	assert.Nil(t, ack.Error)
	assert.Contains(t, buf.String(), "still logged")
	assert.Contains(t, buf.String(), "level=INFO")
}

func TestClockBundle(t *testing.T) {
	pinned := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	reg, err := NewRegistry(WithBundle(clockBundle(func() time.Time { return pinned })))
	require.NoError(t, err)

	resp, err := reg.Invoke(context.Background(), CallbackEngineNowMs, nil)
	require.NoError(t, err)

	var clock wireformat.ClockWire
	require.NoError(t, json.Unmarshal(resp, &clock))
	assert.Equal(t, pinned.UnixMilli(), clock.NowMs)
}
