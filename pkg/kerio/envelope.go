// Package kerio provides the JSON-RPC 2.0 wire layer for the Kerio Connect webmail API.
package kerio

import (
	"encoding/json"
)

const (
	// ProtocolVersion is the JSON-RPC version sent on every request.
	ProtocolVersion = "2.0"

	// ContentType is the fixed content type of JSON-RPC requests.
	ContentType = "application/json-rpc"

	// APIPath is the JSON-RPC endpoint path relative to the server origin.
	APIPath = "/webmail/api/jsonrpc/"

	// UploadPath is the binary attachment upload endpoint.
	UploadPath = "/webmail/api/jsonrpc/attachment-upload"

	// UploadMethod names attachment uploads in logs, spans and errors.
	UploadMethod = "attachment-upload"

	HeaderToken  = "X-Token"
	HeaderCookie = "Cookie"
)

// Request is a JSON-RPC 2.0 request envelope.
// A nil Params is omitted from the wire body; an empty map is sent as {}.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// NewRequest builds a request envelope for method with the given id and params.
func NewRequest(id int, method string, params any) Request {
	return Request{
		JSONRPC: ProtocolVersion,
		ID:      id,
		Method:  method,
		Params:  params,
	}
}

// Response is a JSON-RPC 2.0 response envelope.
type Response struct {
	JSONRPC string          `json:"jsonrpc,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *RPCError       `json:"error,omitempty"`
}

// RPCError is the error object returned by the server.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}
