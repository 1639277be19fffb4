// Package ports defines interfaces for infrastructure operations.
// These ports enable dependency inversion - the host adapter depends on
// abstractions, and engine backings implement these interfaces.
package ports
