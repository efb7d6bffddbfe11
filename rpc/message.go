// Package rpc implements a bidirectional JSON-RPC 2.0 engine over an
// arbitrary byte stream: request/response correlation, notification
// dispatch, and a method registry shared by application code and the
// client package's handle-bound objects.
package rpc

import "encoding/json"

// ProtocolVersion is the JSON-RPC version tag carried by every envelope.
const ProtocolVersion = "2.0"

// Envelope is the single wire message shape: request, notification, or
// response. Exactly one of (Method) or (Result/Error) is meaningful per
// spec.md §3's Message invariants; Params/Result/Error are raw so the
// engine can dispatch before committing to a concrete Go type.
type Envelope struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *WireError      `json:"error,omitempty"`
}

// WireError is the JSON-RPC error object.
type WireError struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

// IsResponse reports whether the envelope carries a result/error for
// some prior request (no method).
func (e *Envelope) IsResponse() bool {
	return e.Method == "" && (e.Result != nil || e.Error != nil)
}

// IsNotification reports whether the envelope is a method invocation
// with no id expecting no response.
func (e *Envelope) IsNotification() bool {
	return e.Method != "" && e.ID == nil
}

// IsRequest reports whether the envelope is a method invocation that
// expects a response.
func (e *Envelope) IsRequest() bool {
	return e.Method != "" && e.ID != nil
}

// newRequest builds a request envelope with freshly encoded params.
func newRequest(id int64, method string, params interface{}) (*Envelope, error) {
	raw, err := encodeParams(params)
	if err != nil {
		return nil, err
	}
	return &Envelope{JSONRPC: ProtocolVersion, ID: &id, Method: method, Params: raw}, nil
}

// newNotification builds a notification envelope (no id).
func newNotification(method string, params interface{}) (*Envelope, error) {
	raw, err := encodeParams(params)
	if err != nil {
		return nil, err
	}
	return &Envelope{JSONRPC: ProtocolVersion, Method: method, Params: raw}, nil
}

// encodeParams marshals params as given; nil params are omitted. This
// is what lets by-position arrays, by-name objects, and bare scalar
// values all round-trip per spec.md §4.2's params encoding rule.
func encodeParams(params interface{}) (json.RawMessage, error) {
	if params == nil {
		return nil, nil
	}
	return json.Marshal(params)
}

func newResultResponse(id int64, result interface{}) (*Envelope, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	return &Envelope{JSONRPC: ProtocolVersion, ID: &id, Result: raw}, nil
}

func newErrorResponse(id int64, rpcErr *Error) *Envelope {
	return &Envelope{
		JSONRPC: ProtocolVersion,
		ID:      &id,
		Error: &WireError{
			Code:    rpcErr.Code,
			Message: rpcErr.Message,
			Data:    rpcErr.Data,
		},
	}
}
