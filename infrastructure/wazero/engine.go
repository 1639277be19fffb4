package wazero

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lantern-dev/lanternhost/domain/entities"
	"github.com/lantern-dev/lanternhost/domain/errors"
	"github.com/lantern-dev/lanternhost/domain/ports"
	"github.com/lantern-dev/lanternhost/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
)

// Engine ABI export names. The engine module must export all of these plus
// "allocate" for host-to-guest buffer transfers.
const (
	exportAllocate     = "allocate"
	exportAddChain     = "engine_add_chain"
	exportRemoveChain  = "engine_remove_chain"
	exportRPCRequest   = "engine_json_rpc_request"
	exportWaitResponse = "engine_wait_next_json_rpc_response"
	exportResponseFree = "engine_json_rpc_response_free"
)

// DefaultMaxResponseSize limits JSON-RPC responses read from guest memory to
// 16MB. Large storage proofs stay well under this.
const DefaultMaxResponseSize = 16 * 1024 * 1024

// Submission status codes returned by engine_json_rpc_request.
const (
	submitOK           = 0
	submitUnknownChain = 1
	submitOverloaded   = 2
)

// EngineConfig holds configuration for the wazero engine backing.
type EngineConfig struct {
	// CallbackModuleName is the import module name for host callbacks
	// (default: "lantern_host").
	CallbackModuleName string

	// MaxResponseSize limits the size of responses read from guest memory.
	MaxResponseSize uint32

	// Callbacks is the host callback registry exported to the engine.
	// When nil, a registry with the log and clock bundles is built.
	Callbacks *hostfuncs.Registry

	// Logger receives engine lifecycle and boundary diagnostics.
	Logger *slog.Logger
}

// EngineOption configures the engine backing.
type EngineOption func(*EngineConfig)

// WithCallbackModuleName sets the host callback import module name.
func WithCallbackModuleName(name string) EngineOption {
	return func(c *EngineConfig) {
		c.CallbackModuleName = name
	}
}

// WithMaxResponseSize sets the maximum response size read from guest memory.
func WithMaxResponseSize(size uint32) EngineOption {
	return func(c *EngineConfig) {
		c.MaxResponseSize = size
	}
}

// WithCallbacks sets the host callback registry exported to the engine.
func WithCallbacks(registry *hostfuncs.Registry) EngineOption {
	return func(c *EngineConfig) {
		c.Callbacks = registry
	}
}

// WithLogger sets the logger for boundary diagnostics.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(c *EngineConfig) {
		c.Logger = logger
	}
}

func defaultEngineConfig() EngineConfig {
	return EngineConfig{
		CallbackModuleName: DefaultCallbackModuleName,
		MaxResponseSize:    DefaultMaxResponseSize,
		Logger:             slog.Default(),
	}
}

// Engine drives a light-client engine module through its WASM ABI.
// It implements ports.Engine.
//
// Calls into one wasm module must not run concurrently, so every boundary
// operation is serialized behind a mutex. A blocking wait therefore holds the
// boundary until the engine produces a response; the session layer above
// already forbids removing a chain mid-wait, which keeps the serialization
// safe. Context cancellation is honored coarsely: the runtime is created with
// close-on-context-done, so canceling the context of an in-flight call tears
// the module down.
type Engine struct {
	runtime wazero.Runtime
	module  api.Module
	config  EngineConfig

	mu sync.Mutex

	allocate     api.Function
	addChain     api.Function
	removeChain  api.Function
	rpcRequest   api.Function
	waitResponse api.Function
	responseFree api.Function
}

var _ ports.Engine = (*Engine)(nil)

// NewEngine instantiates an engine module and resolves its ABI exports.
func NewEngine(ctx context.Context, wasmBytes []byte, opts ...EngineOption) (*Engine, error) {
	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if cfg.Callbacks == nil {
		registry, err := hostfuncs.NewRegistry(
			hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
			hostfuncs.WithBundle(hostfuncs.LogBundle(cfg.Logger)),
			hostfuncs.WithBundle(hostfuncs.ClockBundle()),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to build default callback registry: %w", err)
		}
		cfg.Callbacks = registry
	}

	rt := wazero.NewRuntimeWithConfig(ctx, wazero.NewRuntimeConfig().WithCloseOnContextDone(true))
	wasi_snapshot_preview1.MustInstantiate(ctx, rt)

	if err := registerCallbacks(ctx, rt, cfg.Callbacks, cfg.CallbackModuleName, DefaultMaxCallbackSize, cfg.Logger); err != nil {
		rt.Close(ctx)
		return nil, fmt.Errorf("failed to register host callbacks: %w", err)
	}

	mod, err := rt.Instantiate(ctx, wasmBytes)
	if err != nil {
		rt.Close(ctx)
		return nil, &errors.EngineError{Op: "instantiate", Err: err}
	}

	e := &Engine{
		runtime: rt,
		module:  mod,
		config:  cfg,
	}
	if err := e.resolveExports(); err != nil {
		rt.Close(ctx)
		return nil, err
	}

	cfg.Logger.InfoContext(ctx, "engine module instantiated", "module", mod.Name())
	return e, nil
}

// resolveExports looks up every ABI export up front so a truncated engine
// build fails at startup, not mid-session.
func (e *Engine) resolveExports() error {
	lookup := func(name string) (api.Function, error) {
		fn := e.module.ExportedFunction(name)
		if fn == nil {
			return nil, &errors.EngineError{Op: "resolve", Err: fmt.Errorf("engine module does not export %q", name)}
		}
		return fn, nil
	}

	var err error
	if e.allocate, err = lookup(exportAllocate); err != nil {
		return err
	}
	if e.addChain, err = lookup(exportAddChain); err != nil {
		return err
	}
	if e.removeChain, err = lookup(exportRemoveChain); err != nil {
		return err
	}
	if e.rpcRequest, err = lookup(exportRPCRequest); err != nil {
		return err
	}
	if e.waitResponse, err = lookup(exportWaitResponse); err != nil {
		return err
	}
	if e.responseFree, err = lookup(exportResponseFree); err != nil {
		return err
	}
	return nil
}

// AddChain registers a chain specification with the engine.
// The zero handle is the boundary's refusal sentinel and surfaces as a
// RegistrationError.
func (e *Engine) AddChain(ctx context.Context, spec []byte, potentialRelays []entities.ChainID) (entities.ChainID, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	specPacked, err := e.writeBytes(ctx, spec)
	if err != nil {
		return 0, &errors.EngineError{Op: "add_chain", Err: err}
	}

	relaysPacked := uint64(0)
	if len(potentialRelays) > 0 {
		relayBytes, err := json.Marshal(potentialRelays)
		if err != nil {
			return 0, &errors.EngineError{Op: "add_chain", Err: err}
		}
		if relaysPacked, err = e.writeBytes(ctx, relayBytes); err != nil {
			return 0, &errors.EngineError{Op: "add_chain", Err: err}
		}
	}

	results, err := e.addChain.Call(ctx, specPacked, relaysPacked)
	if err != nil {
		return 0, &errors.EngineError{Op: "add_chain", Err: err}
	}
	if len(results) == 0 || results[0] == 0 {
		return 0, &errors.RegistrationError{Reason: "engine rejected the chain specification"}
	}
	return entities.ChainID(results[0]), nil
}

// RemoveChain releases engine-side resources for the handle.
func (e *Engine) RemoveChain(ctx context.Context, id entities.ChainID) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if _, err := e.removeChain.Call(ctx, uint64(id)); err != nil {
		return &errors.EngineError{Op: "remove_chain", Err: err}
	}
	return nil
}

// SubmitRequest queues a JSON-RPC request with the engine.
func (e *Engine) SubmitRequest(ctx context.Context, id entities.ChainID, request string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	reqPacked, err := e.writeBytes(ctx, []byte(request))
	if err != nil {
		return &errors.EngineError{Op: "json_rpc_request", Err: err}
	}

	results, err := e.rpcRequest.Call(ctx, uint64(id), reqPacked)
	if err != nil {
		return &errors.EngineError{Op: "json_rpc_request", Err: err}
	}
	if len(results) == 0 {
		return nil
	}
	switch results[0] {
	case submitOK:
		return nil
	case submitUnknownChain:
		return &errors.EngineError{Op: "json_rpc_request", Err: fmt.Errorf("unknown chain %s", id)}
	case submitOverloaded:
		return &errors.EngineError{Op: "json_rpc_request", Err: fmt.Errorf("engine request queue is full")}
	default:
		return &errors.EngineError{Op: "json_rpc_request", Err: fmt.Errorf("unknown status %d", results[0])}
	}
}

// NextResponse blocks inside the engine until a response for the chain is
// available. The returned Response keeps its guest buffer alive until Free.
func (e *Engine) NextResponse(ctx context.Context, id entities.ChainID) (ports.Response, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	results, err := e.waitResponse.Call(ctx, uint64(id))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &errors.EngineError{Op: "wait_next_json_rpc_response", Err: err}
	}
	if len(results) == 0 || results[0] == 0 {
		// Null sentinel: the chain's response stream is gone.
		return nil, errors.ErrChainDrained
	}

	packed := results[0]
	ptr, length := unpackPtrLen(packed)
	if length > e.config.MaxResponseSize {
		e.freeLocked(ctx, packed)
		return nil, &errors.EngineError{
			Op:  "wait_next_json_rpc_response",
			Err: fmt.Errorf("response is %d bytes, limit is %d", length, e.config.MaxResponseSize),
		}
	}

	data, ok := e.module.Memory().Read(ptr, length)
	if !ok {
		e.freeLocked(ctx, packed)
		return nil, &errors.EngineError{Op: "wait_next_json_rpc_response", Err: fmt.Errorf("failed to read response from guest memory")}
	}

	// Copy out: guest memory may move on growth, and the buffer is returned
	// to the engine on Free.
	text := string(data)
	return &engineResponse{engine: e, packed: packed, text: text}, nil
}

// Close shuts the runtime down, releasing the module and all guest memory.
func (e *Engine) Close(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.runtime.Close(ctx)
}

// writeBytes copies data into guest memory via the allocate export and
// returns the packed ptr+len. Caller holds e.mu.
func (e *Engine) writeBytes(ctx context.Context, data []byte) (uint64, error) {
	if len(data) == 0 {
		return 0, nil
	}
	results, err := e.allocate.Call(ctx, uint64(len(data)))
	if err != nil {
		return 0, fmt.Errorf("engine allocate failed: %w", err)
	}
	if len(results) == 0 {
		return 0, fmt.Errorf("engine allocate returned no results")
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit
	if !e.module.Memory().Write(ptr, data) {
		return 0, fmt.Errorf("failed to write %d bytes to guest memory", len(data))
	}
	return packPtrLen(ptr, uint32(len(data))), nil //nolint:gosec // G115: len bounded by caller
}

// freeLocked returns a loaned buffer to the engine. Caller holds e.mu.
func (e *Engine) freeLocked(ctx context.Context, packed uint64) {
	if _, err := e.responseFree.Call(ctx, packed); err != nil {
		e.config.Logger.ErrorContext(ctx, "engine response free failed", "error", err)
	}
}

// engineResponse is a loaned response buffer backed by guest memory.
type engineResponse struct {
	engine *Engine
	text   string
	packed uint64

	mu    sync.Mutex
	freed bool
}

// Text returns the response text. The text was copied out of guest memory at
// wait time, so it stays readable even while the loan is outstanding.
func (r *engineResponse) Text() string {
	return r.text
}

// Free returns the buffer to the engine. Exactly once per response.
func (r *engineResponse) Free(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.freed {
		return &errors.LeaseError{Op: "free"}
	}
	r.freed = true

	r.engine.mu.Lock()
	defer r.engine.mu.Unlock()
	r.engine.freeLocked(ctx, r.packed)
	return nil
}
