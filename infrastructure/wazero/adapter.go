package wazero

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lantern-dev/lanternhost/hostfuncs"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
)

// DefaultCallbackModuleName is the import module name the engine uses to
// reach host callbacks.
const DefaultCallbackModuleName = "lantern_host"

// DefaultMaxCallbackSize limits the size of callback payloads read from
// guest memory. This prevents a misbehaving engine module from triggering
// OOM by claiming huge payload sizes.
const DefaultMaxCallbackSize = 1 * 1024 * 1024

// registerCallbacks exports all handlers from a callback registry as a host
// module the engine can import.
//
// Each handler is wrapped to:
//   - Read the payload from guest memory using the packed i64 ptr+len format
//   - Invoke the ByteHandler
//   - Allocate response memory in the guest using the "allocate" export
//   - Write response bytes to guest memory
//   - Return packed i64 ptr+len of the response
func registerCallbacks(ctx context.Context, runtime wazero.Runtime, registry *hostfuncs.Registry, moduleName string, maxPayload uint32, logger *slog.Logger) error {
	builder := runtime.NewHostModuleBuilder(moduleName)

	for _, name := range registry.Names() {
		funcName := name // capture for closure
		builder.NewFunctionBuilder().
			WithGoModuleFunction(api.GoModuleFunc(func(ctx context.Context, mod api.Module, stack []uint64) {
				handleCallback(ctx, mod, stack, registry, funcName, maxPayload, logger)
			}), []api.ValueType{api.ValueTypeI64}, []api.ValueType{api.ValueTypeI64}).
			Export(funcName)
	}

	_, err := builder.Instantiate(ctx)
	return err
}

// handleCallback handles one callback invocation from the engine module.
func handleCallback(ctx context.Context, mod api.Module, stack []uint64, registry *hostfuncs.Registry, name string, maxPayload uint32, logger *slog.Logger) {
	ptr, length := unpackPtrLen(stack[0])

	if length > maxPayload {
		errMsg := fmt.Sprintf("callback payload %d exceeds maximum %d bytes", length, maxPayload)
		logger.ErrorContext(ctx, "wazero: "+errMsg, "callback", name)
		stack[0] = writeResponse(ctx, mod, hostfuncs.NewValidationError(errMsg).ToJSON(), logger)
		return
	}

	var payload []byte
	if length > 0 {
		data, ok := mod.Memory().Read(ptr, length)
		if !ok {
			errMsg := "failed to read callback payload from guest memory"
			logger.ErrorContext(ctx, "wazero: "+errMsg, "callback", name)
			stack[0] = writeResponse(ctx, mod, hostfuncs.NewInternalError(errMsg).ToJSON(), logger)
			return
		}
		payload = data
	}

	responseBytes, err := registry.Invoke(ctx, name, payload)
	if err != nil {
		logger.ErrorContext(ctx, "wazero: callback invocation failed", "callback", name, "error", err)
		stack[0] = writeResponse(ctx, mod, hostfuncs.NewInternalError(err.Error()).ToJSON(), logger)
		return
	}

	stack[0] = writeResponse(ctx, mod, responseBytes, logger)
}

// writeResponse allocates memory in the guest and writes the response bytes.
// Returns packed ptr+len or 0 on failure.
func writeResponse(ctx context.Context, mod api.Module, data []byte, logger *slog.Logger) uint64 {
	if len(data) == 0 {
		return 0
	}

	allocateFn := mod.ExportedFunction(exportAllocate)
	if allocateFn == nil {
		logger.ErrorContext(ctx, "wazero: engine module missing 'allocate' export")
		return 0
	}

	results, err := allocateFn.Call(ctx, uint64(len(data)))
	if err != nil {
		logger.ErrorContext(ctx, "wazero: failed to call engine allocate", "error", err)
		return 0
	}
	ptr := uint32(results[0]) //nolint:gosec // G115: WASM32 pointers are always 32-bit

	if !mod.Memory().Write(ptr, data) {
		logger.ErrorContext(ctx, "wazero: failed to write response to guest memory")
		return 0
	}

	return packPtrLen(ptr, uint32(len(data))) //nolint:gosec // G115: Data length is bounded by config
}

// packPtrLen packs a pointer and length into a single i64.
// Upper 32 bits: pointer, lower 32 bits: length.
func packPtrLen(ptr, length uint32) uint64 {
	return (uint64(ptr) << 32) | uint64(length)
}

// unpackPtrLen unpacks a pointer and length from a packed i64.
func unpackPtrLen(packed uint64) (ptr, length uint32) {
	ptr = uint32(packed >> 32)           //nolint:gosec // G115: Packed format stores 32-bit values
	length = uint32(packed & 0xFFFFFFFF) //nolint:gosec // G115: Packed format stores 32-bit values
	return ptr, length
}
