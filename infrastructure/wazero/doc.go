// Package wazero drives a light-client engine compiled to WebAssembly
// through its exported ABI, using the wazero runtime.
//
// The boundary follows the packed i64 pointer+length convention: text buffers
// are written into guest linear memory through the engine's "allocate"
// export, and loaned response buffers stay alive in guest memory until the
// host returns them through "engine_json_rpc_response_free". The package also
// registers the host callback module (engine_log, engine_now_ms) so the
// engine can reach host facilities.
//
// # Basic Usage
//
//	callbacks, err := hostfuncs.NewRegistry(
//	    hostfuncs.WithMiddleware(hostfuncs.PanicRecoveryMiddleware()),
//	    hostfuncs.WithBundle(hostfuncs.LogBundle(logger)),
//	)
//	if err != nil {
//	    return err
//	}
//
//	engine, err := wazero.NewEngine(ctx, wasmBytes,
//	    wazero.WithCallbacks(callbacks),
//	)
//	if err != nil {
//	    return err
//	}
//	defer engine.Close(ctx)
package wazero
