// Package loopback provides an in-process light-client engine.
//
// The loopback engine answers a small set of JSON-RPC methods directly and
// drives head subscriptions from a ticker, with the same handle, queue and
// drain semantics as a real engine boundary. It backs the host SDK in tests
// and lets the CLI run without an engine module on disk.
package loopback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/lantern-dev/lanternhost/domain/errors"
	"github.com/lantern-dev/lanternhost/domain/ports"
	"github.com/lantern-dev/lanternhost/wireformat"
)

const (
	// DefaultHeadInterval is the interval between synthetic head
	// notifications on an active subscription.
	DefaultHeadInterval = 50 * time.Millisecond

	// DefaultQueueDepth is the per-chain response queue capacity.
	DefaultQueueDepth = 64
)

const (
	methodSystemName       = "system_name"
	methodSystemVersion    = "system_version"
	methodSystemChain      = "system_chain"
	methodSubscribeHeads   = "chain_subscribeNewHeads"
	methodUnsubscribeHeads = "chain_unsubscribeNewHeads"

	notificationNewHead = "chain_newHead"
)

// EngineOption configures the loopback engine.
type EngineOption func(*Engine)

// WithHeadInterval sets the interval between synthetic head notifications.
func WithHeadInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.headInterval = d
	}
}

// WithQueueDepth sets the per-chain response queue capacity.
func WithQueueDepth(depth int) EngineOption {
	return func(e *Engine) {
		e.queueDepth = depth
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger
	}
}

// Engine is an in-process ports.Engine. Handles start at 1; 0 stays reserved
// as the refusal sentinel.
type Engine struct {
	headInterval time.Duration
	queueDepth   int
	logger       *slog.Logger

	mu     sync.Mutex
	nextID entities.ChainID
	chains map[entities.ChainID]*loopbackChain
	closed bool
}

var _ ports.Engine = (*Engine)(nil)

type loopbackChain struct {
	name      string
	responses chan string

	subMu sync.Mutex
	subs  map[string]context.CancelFunc
}

// NewEngine builds a loopback engine.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		headInterval: DefaultHeadInterval,
		queueDepth:   DefaultQueueDepth,
		logger:       slog.Default(),
		nextID:       1,
		chains:       make(map[entities.ChainID]*loopbackChain),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// AddChain registers a chain from its JSON specification. The relay handles
// are accepted but unused: the loopback engine does not model relay syncing.
func (e *Engine) AddChain(ctx context.Context, spec []byte, potentialRelays []entities.ChainID) (entities.ChainID, error) {
	var parsed struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(spec, &parsed); err != nil {
		return 0, &errors.RegistrationError{Err: err, Reason: "chain specification is not valid JSON"}
	}
	if parsed.Name == "" {
		return 0, &errors.RegistrationError{Reason: "chain specification has no name"}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return 0, &errors.EngineError{Op: "add_chain", Err: fmt.Errorf("engine is closed")}
	}

	id := e.nextID
	e.nextID++

	ch := &loopbackChain{
		name:      parsed.Name,
		responses: make(chan string, e.queueDepth),
		subs:      make(map[string]context.CancelFunc),
	}
	e.chains[id] = ch

	e.logger.DebugContext(ctx, "loopback: chain registered", "chain", id, "name", parsed.Name, "relays", len(potentialRelays))
	return id, nil
}

// RemoveChain drops the chain, stops its subscriptions and closes its
// response queue, draining any blocked waiter.
func (e *Engine) RemoveChain(ctx context.Context, id entities.ChainID) error {
	e.mu.Lock()
	ch, ok := e.chains[id]
	if ok {
		delete(e.chains, id)
	}
	e.mu.Unlock()
	if !ok {
		return &errors.EngineError{Op: "remove_chain", Err: fmt.Errorf("unknown chain %s", id)}
	}

	ch.stop()
	e.logger.DebugContext(ctx, "loopback: chain removed", "chain", id)
	return nil
}

// SubmitRequest answers the request and queues the response for the chain.
func (e *Engine) SubmitRequest(ctx context.Context, id entities.ChainID, request string) error {
	e.mu.Lock()
	ch, ok := e.chains[id]
	e.mu.Unlock()
	if !ok {
		return &errors.EngineError{Op: "json_rpc_request", Err: fmt.Errorf("unknown chain %s", id)}
	}

	req, err := wireformat.ParseRequest(request)
	if err != nil {
		// Malformed requests are answered on the queue, matching how an
		// engine reports parse errors in-band.
		ch.enqueue(errorResponse(nil, wireformat.CodeParseError, err.Error()))
		return nil
	}

	ch.enqueue(e.dispatch(ch, req))
	return nil
}

// dispatch produces the response text for a parsed request.
func (e *Engine) dispatch(ch *loopbackChain, req *wireformat.RequestWire) string {
	switch req.Method {
	case methodSystemName:
		return resultResponse(req.ID, "lanternhost-loopback")
	case methodSystemVersion:
		return resultResponse(req.ID, "1.0.0")
	case methodSystemChain:
		return resultResponse(req.ID, ch.name)
	case methodSubscribeHeads:
		subID := uuid.NewString()
		ch.startHeads(subID, e.headInterval)
		return resultResponse(req.ID, subID)
	case methodUnsubscribeHeads:
		var params []string
		ok := json.Unmarshal(req.Params, &params) == nil && len(params) == 1 && ch.stopHeads(params[0])
		return resultResponse(req.ID, ok)
	default:
		return errorResponse(req.ID, wireformat.CodeMethodNotFound, fmt.Sprintf("method %q not found", req.Method))
	}
}

// NextResponse blocks until a response is queued for the chain, the chain is
// drained, or the context ends.
func (e *Engine) NextResponse(ctx context.Context, id entities.ChainID) (ports.Response, error) {
	e.mu.Lock()
	ch, ok := e.chains[id]
	e.mu.Unlock()
	if !ok {
		return nil, errors.ErrChainDrained
	}

	select {
	case text, open := <-ch.responses:
		if !open {
			return nil, errors.ErrChainDrained
		}
		return &loopbackResponse{text: text}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Close removes every chain.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	chains := e.chains
	e.chains = make(map[entities.ChainID]*loopbackChain)
	e.closed = true
	e.mu.Unlock()

	for _, ch := range chains {
		ch.stop()
	}
	return nil
}

func (c *loopbackChain) enqueue(text string) {
	defer func() {
		// The queue channel closes on removal; a racing head ticker drops
		// its notification instead of crashing.
		_ = recover()
	}()
	select {
	case c.responses <- text:
	default:
	}
}

// startHeads begins emitting chain_newHead notifications for a subscription.
func (c *loopbackChain) startHeads(subID string, interval time.Duration) {
	subCtx, cancel := context.WithCancel(context.Background())
	c.subMu.Lock()
	c.subs[subID] = cancel
	c.subMu.Unlock()

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		height := 0
		for {
			select {
			case <-subCtx.Done():
				return
			case <-ticker.C:
				height++
				c.enqueue(headNotification(subID, height))
			}
		}
	}()
}

// stopHeads cancels a subscription. Reports whether it existed.
func (c *loopbackChain) stopHeads(subID string) bool {
	c.subMu.Lock()
	defer c.subMu.Unlock()
	cancel, ok := c.subs[subID]
	if !ok {
		return false
	}
	cancel()
	delete(c.subs, subID)
	return true
}

func (c *loopbackChain) stop() {
	c.subMu.Lock()
	for _, cancel := range c.subs {
		cancel()
	}
	c.subs = make(map[string]context.CancelFunc)
	c.subMu.Unlock()
	close(c.responses)
}

type loopbackResponse struct {
	mu    sync.Mutex
	text  string
	freed bool
}

func (r *loopbackResponse) Text() string {
	return r.text
}

func (r *loopbackResponse) Free(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.freed {
		return &errors.LeaseError{Op: "free"}
	}
	r.freed = true
	return nil
}

func resultResponse(id json.RawMessage, result any) string {
	resultBytes, _ := json.Marshal(result)
	resp := wireformat.ResponseWire{
		JSONRPC: wireformat.Version,
		ID:      id,
		Result:  resultBytes,
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func errorResponse(id json.RawMessage, code int, message string) string {
	resp := wireformat.ResponseWire{
		JSONRPC: wireformat.Version,
		ID:      id,
		Error:   &wireformat.RPCErrorWire{Code: code, Message: message},
	}
	out, _ := json.Marshal(resp)
	return string(out)
}

func headNotification(subID string, height int) string {
	result, _ := json.Marshal(map[string]any{
		"number":     fmt.Sprintf("0x%x", height),
		"parentHash": "0x" + uuid.NewString()[:8],
	})
	params, _ := json.Marshal(wireformat.SubscriptionParamsWire{
		Subscription: subID,
		Result:       result,
	})
	resp := wireformat.ResponseWire{
		JSONRPC: wireformat.Version,
		Method:  notificationNewHead,
		Params:  params,
	}
	out, _ := json.Marshal(resp)
	return string(out)
}
