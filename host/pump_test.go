package host

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/lantern-dev/lanternhost/infrastructure/loopback"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPumpDeliversUntilDrained(t *testing.T) {
	engine := newFakeEngine()
	adapter, err := NewAdapter(engine)
	require.NoError(t, err)
	ctx := context.Background()

	session, err := adapter.AddChain(ctx, []byte(`{"name":"test"}`))
	require.NoError(t, err)
	engine.serve(session.ID(), `{"jsonrpc":"2.0","id":1,"result":1}`)
	engine.serve(session.ID(), `{"jsonrpc":"2.0","id":2,"result":2}`)
	engine.drain(session.ID())

	var seen []string
	err = Pump(ctx, session, SinkFunc(func(ctx context.Context, chain entities.ChainID, response string) error {
		assert.Equal(t, session.ID(), chain)
		seen = append(seen, response)
		return nil
	}))
	require.NoError(t, err, "a drained chain ends the pump cleanly")
	assert.Len(t, seen, 2)
	assert.Equal(t, 2, engine.freed(), "every pumped lease must be released")
}

func TestPumpReleasesLeaseOnSinkError(t *testing.T) {
	engine := newFakeEngine()
	adapter, err := NewAdapter(engine)
	require.NoError(t, err)
	ctx := context.Background()

	session, err := adapter.AddChain(ctx, []byte(`{"name":"test"}`))
	require.NoError(t, err)
	engine.serve(session.ID(), `{"jsonrpc":"2.0","id":1,"result":1}`)

	sinkErr := fmt.Errorf("sink refused")
	err = Pump(ctx, session, SinkFunc(func(ctx context.Context, chain entities.ChainID, response string) error {
		return sinkErr
	}))
	require.ErrorIs(t, err, sinkErr)
	assert.Equal(t, 1, engine.freed(), "lease must be released even when the sink fails")
	assert.Equal(t, entities.StateIdle, session.State())
}

func TestPumpStopsOnContextCancel(t *testing.T) {
	engine := newFakeEngine()
	adapter, err := NewAdapter(engine)
	require.NoError(t, err)
	ctx := context.Background()

	session, err := adapter.AddChain(ctx, []byte(`{"name":"test"}`))
	require.NoError(t, err)

	pumpCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- Pump(pumpCtx, session, SinkFunc(func(ctx context.Context, chain entities.ChainID, response string) error {
			return nil
		}))
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("pump did not stop on cancellation")
	}
}

func TestPumpAgainstLoopbackEngine(t *testing.T) {
	engine := loopback.NewEngine(loopback.WithHeadInterval(5 * time.Millisecond))
	adapter, err := NewAdapter(engine)
	require.NoError(t, err)
	ctx := context.Background()
	defer adapter.Close(ctx)

	session, err := adapter.AddChain(ctx, []byte(`{"name":"Local Testnet","id":"local_testnet"}`))
	require.NoError(t, err)

	require.NoError(t, session.Submit(ctx, `{"jsonrpc":"2.0","id":1,"method":"chain_subscribeNewHeads","params":[]}`))

	responses := make(chan string, 8)
	pumpCtx, cancel := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- Pump(pumpCtx, session, SinkFunc(func(ctx context.Context, chain entities.ChainID, response string) error {
			select {
			case responses <- response:
			default:
			}
			return nil
		}))
	}()

	// First the subscription confirmation, then at least one head.
	select {
	case first := <-responses:
		assert.Contains(t, first, `"id":1`)
	case <-time.After(time.Second):
		t.Fatal("no subscription confirmation")
	}
	select {
	case head := <-responses:
		assert.Contains(t, head, "chain_newHead")
	case <-time.After(time.Second):
		t.Fatal("no head notification")
	}

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
