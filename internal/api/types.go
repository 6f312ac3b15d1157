package api

import "encoding/json"

// ErrorResp is the generic error envelope for transport-level failures.
type ErrorResp struct {
	Detail string `json:"detail"`
}

// ToolCallRequest is the body of POST /v1/tools/call.
type ToolCallRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments,omitempty"`
}

// ToolCallResponse is the success envelope of a tool call.
type ToolCallResponse struct {
	RequestID string `json:"request_id"`
	Result    any    `json:"result"`
}

// ToolCallErrorResponse is the failure envelope of a tool call. The code
// mirrors the HTTP status so SDK callers can switch on either.
type ToolCallErrorResponse struct {
	RequestID string        `json:"request_id"`
	Error     ToolCallError `json:"error"`
}

// ToolCallError describes why a tool call failed.
type ToolCallError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// ToolListResponse is the body of GET /v1/tools.
type ToolListResponse struct {
	Tools []ToolInfo `json:"tools"`
}

// ToolInfo is one tool in a tool list.
type ToolInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"inputSchema"`
}
