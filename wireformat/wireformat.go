// Package wireformat defines the JSON wire format structures exchanged with
// the light-client engine: JSON-RPC 2.0 envelopes for requests and responses,
// and the callback payloads the engine sends to the host. These types must
// remain stable and backward compatible as they define the boundary contract.
package wireformat

import (
	"encoding/json"
	"fmt"
)

// Version is the JSON-RPC protocol version carried in every envelope.
const Version = "2.0"

// RequestWire is the JSON wire format for a JSON-RPC request submitted to the
// engine. The host only checks well-formedness; the engine interprets the
// method and parameters.
type RequestWire struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// IsNotification reports whether the request carries no ID and therefore
// expects no response.
func (r *RequestWire) IsNotification() bool {
	return len(r.ID) == 0
}

// ResponseWire is the JSON wire format for a JSON-RPC response received from
// the engine. Exactly one of Result and Error is set on a well-formed reply.
type ResponseWire struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCErrorWire   `json:"error,omitempty"`
	// Method and Params are set on subscription notifications, which carry no ID.
	Method string          `json:"method,omitempty"`
	Params json.RawMessage `json:"params,omitempty"`
}

// IsSubscriptionNotification reports whether the message is a server-initiated
// notification rather than a reply to a submitted request.
func (r *ResponseWire) IsSubscriptionNotification() bool {
	return len(r.ID) == 0 && r.Method != ""
}

// RPCErrorWire is the JSON-RPC error object.
type RPCErrorWire struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// Error implements the error interface.
func (e *RPCErrorWire) Error() string {
	return fmt.Sprintf("json-rpc error %d: %s", e.Code, e.Message)
}

// SubscriptionParamsWire is the params object of a subscription notification.
type SubscriptionParamsWire struct {
	Subscription string          `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

// Standard JSON-RPC 2.0 error codes used by engine backings.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ParseRequest validates and decodes a caller-constructed JSON-RPC request.
// It rejects text that is not a JSON object, carries the wrong protocol
// version, or names no method.
func ParseRequest(text string) (*RequestWire, error) {
	var req RequestWire
	if err := json.Unmarshal([]byte(text), &req); err != nil {
		return nil, fmt.Errorf("malformed json-rpc request: %w", err)
	}
	if req.JSONRPC != Version {
		return nil, fmt.Errorf("unsupported json-rpc version %q", req.JSONRPC)
	}
	if req.Method == "" {
		return nil, fmt.Errorf("json-rpc request has no method")
	}
	return &req, nil
}

// DecodeResponse decodes a response or subscription notification received
// from the engine. It does not reject unknown fields: engines may extend the
// envelope, and the host must pass the raw text through untouched.
func DecodeResponse(text string) (*ResponseWire, error) {
	var resp ResponseWire
	if err := json.Unmarshal([]byte(text), &resp); err != nil {
		return nil, fmt.Errorf("malformed json-rpc response: %w", err)
	}
	return &resp, nil
}

// NewRequest builds a request envelope and returns its JSON text.
// Used by tests and the CLI's default request construction.
func NewRequest(id int64, method string, params any) (string, error) {
	req := RequestWire{
		JSONRPC: Version,
		Method:  method,
	}
	idBytes, err := json.Marshal(id)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request id: %w", err)
	}
	req.ID = idBytes
	if params != nil {
		paramBytes, err := json.Marshal(params)
		if err != nil {
			return "", fmt.Errorf("failed to marshal request params: %w", err)
		}
		req.Params = paramBytes
	}
	out, err := json.Marshal(&req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	return string(out), nil
}

// EngineLogWire is the JSON wire format for a log record the engine module
// emits through the engine_log callback.
type EngineLogWire struct {
	Level   string `json:"level"`
	Target  string `json:"target,omitempty"`
	Message string `json:"message"`
}

// EngineLogAckWire is the host's reply to an engine_log callback.
type EngineLogAckWire struct {
	Error *ErrorDetail `json:"error,omitempty"`
}

// ErrorDetail provides structured error information on the callback wire.
// It mirrors entities.ErrorDetail but is duplicated here so the wire contract
// has no dependency on host-side types.
type ErrorDetail struct {
	Wrapped *ErrorDetail `json:"wrapped,omitempty"`
	Message string       `json:"message"`
	Type    string       `json:"type"`
	Code    string       `json:"code"`
}

// Error implements the error interface for ErrorDetail.
func (e *ErrorDetail) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Message
	if e.Type != "" && e.Type != "internal" {
		msg = fmt.Sprintf("%s: %s", e.Type, msg)
	}
	if e.Code != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Code)
	}
	if e.Wrapped != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Wrapped.Error())
	}
	return msg
}

// ClockWire is the host's reply to an engine_now_ms callback.
type ClockWire struct {
	NowMs int64 `json:"now_ms"`
}
