// Package errors provides domain-specific error types for the host SDK.
// All error types support error unwrapping via errors.As() and errors.Is().
package errors

import (
	stdErrors "errors"
	"fmt"

	"github.com/lantern-dev/lanternhost/domain/entities"
)

// ErrorDetail is an alias to entities.ErrorDetail for convenience.
type ErrorDetail = entities.ErrorDetail

// ErrChainDrained signals that the engine has no further responses for a
// chain: the chain was removed or the engine shut its response stream down.
// It is the typed rendering of the boundary's null-response sentinel.
var ErrChainDrained = stdErrors.New("engine: chain response stream drained")

// DetailedError is an interface for custom error types that can convert
// themselves to a structured ErrorDetail.
type DetailedError interface {
	error
	ToErrorDetail() *entities.ErrorDetail
}

// ToErrorDetail converts a Go error to a structured ErrorDetail.
// It recognizes custom error types and categorizes them appropriately.
func ToErrorDetail(err error) *entities.ErrorDetail {
	if err == nil {
		return nil
	}

	var e *entities.ErrorDetail
	if stdErrors.As(err, &e) {
		return e
	}

	var de DetailedError
	if stdErrors.As(err, &de) {
		return de.ToErrorDetail()
	}

	if stdErrors.Is(err, ErrChainDrained) {
		return &entities.ErrorDetail{Message: err.Error(), Type: "engine", Code: "drained"}
	}

	// Generic error - categorize as internal
	return &entities.ErrorDetail{
		Message: err.Error(),
		Type:    "internal",
	}
}

// SpecIOError represents a failure to read a chain specification from storage.
// It is fatal for startup: no handle is ever produced from an unreadable spec.
type SpecIOError struct {
	Err  error
	Path string
}

func (e *SpecIOError) Error() string {
	return fmt.Sprintf("reading chain spec %s: %v", e.Path, e.Err)
}

func (e *SpecIOError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SpecIOError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "io", Code: "spec_read", IsFatal: true}
}

// SpecFormatError represents a chain specification that is not valid JSON or
// fails host-side shape validation.
type SpecFormatError struct {
	Err   error
	Field string
}

func (e *SpecFormatError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("chain spec validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("chain spec validation failed: %v", e.Err)
}

func (e *SpecFormatError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *SpecFormatError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: e.Field}
}

// RequestError represents a JSON-RPC request that failed host-side
// well-formedness checks before reaching the engine.
type RequestError struct {
	Err error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("json-rpc request rejected: %v", e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *RequestError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: "json_rpc"}
}

// RegistrationError represents the engine rejecting a chain specification.
// The boundary signals this with the zero-handle sentinel; the host surfaces
// it as this typed error instead.
type RegistrationError struct {
	Err    error
	Reason string
}

func (e *RegistrationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("engine refused chain registration: %v", e.Err)
	}
	return fmt.Sprintf("engine refused chain registration: %s", e.Reason)
}

func (e *RegistrationError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *RegistrationError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "engine", Code: "add_chain"}
}

// StateError represents an operation attempted in a session state that does
// not permit it: submitting after removal, waiting while a response lease is
// still outstanding, or removing a chain mid-wait.
type StateError struct {
	Op    string
	State entities.ChainState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("cannot %s in state %q", e.Op, e.State)
}

// ToErrorDetail implements DetailedError.
func (e *StateError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "state", Code: e.Op}
}

// LeaseError represents misuse of a loaned response buffer: releasing it
// twice, or acquiring a new lease while one is still outstanding.
type LeaseError struct {
	Op string
}

func (e *LeaseError) Error() string {
	return fmt.Sprintf("response lease violation during %s", e.Op)
}

// ToErrorDetail implements DetailedError.
func (e *LeaseError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "lease", Code: e.Op}
}

// EngineError represents an engine-side failure: a trap inside the engine
// module, a missing export, or an operation on an unknown handle.
type EngineError struct {
	Err error
	Op  string
}

func (e *EngineError) Error() string {
	return fmt.Sprintf("engine %s failed: %v", e.Op, e.Err)
}

func (e *EngineError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *EngineError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "engine", Code: e.Op}
}

// ConfigError represents a host configuration validation error.
type ConfigError struct {
	Err   error
	Field string
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("config validation failed for field '%s': %v", e.Field, e.Err)
	}
	return fmt.Sprintf("config validation failed: %v", e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// ToErrorDetail implements DetailedError.
func (e *ConfigError) ToErrorDetail() *entities.ErrorDetail {
	return &entities.ErrorDetail{Message: e.Error(), Type: "validation", Code: e.Field}
}
