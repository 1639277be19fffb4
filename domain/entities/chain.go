package entities

import "fmt"

// ChainID is the opaque handle identifying one active chain session inside
// the external engine. The host never interprets its value beyond equality;
// it is acquired on registration and invalid after removal.
type ChainID uint64

// String formats the handle for logging.
func (id ChainID) String() string {
	return fmt.Sprintf("chain-%d", uint64(id))
}

// ChainState is the lifecycle state of a chain session.
//
// Transitions: Unregistered -> Idle <-> AwaitingResponse -> Removed.
// Removed is terminal; no operation is valid on a removed session.
type ChainState int

const (
	// StateUnregistered means the chain has not been registered with the engine.
	StateUnregistered ChainState = iota

	// StateIdle means the session is registered and no wait call is in flight.
	StateIdle

	// StateAwaitingResponse means a blocking wait call is in flight.
	StateAwaitingResponse

	// StateRemoved means the session has been deregistered. Terminal.
	StateRemoved
)

// String returns the state name used in logs and error messages.
func (s ChainState) String() string {
	switch s {
	case StateUnregistered:
		return "unregistered"
	case StateIdle:
		return "idle"
	case StateAwaitingResponse:
		return "awaiting-response"
	case StateRemoved:
		return "removed"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}
