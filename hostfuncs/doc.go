// Package hostfuncs provides pure Go implementations of the callbacks a
// light-client engine module may import from its host: a structured log sink
// and a wall clock. The implementations have NO WASM runtime dependencies;
// the wazero adapter wires them to guest memory.
package hostfuncs
