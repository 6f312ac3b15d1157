package api

import (
	"net/http"
)

// handleListTools implements GET /v1/tools.
func (d *Dependencies) handleListTools(w http.ResponseWriter, _ *http.Request) {
	defs := d.Tools.Definitions()
	resp := ToolListResponse{Tools: make([]ToolInfo, 0, len(defs))}
	for _, def := range defs {
		resp.Tools = append(resp.Tools, ToolInfo{
			Name:        def.Name,
			Description: def.Description,
			InputSchema: def.InputSchema,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// handleToolCall implements POST /v1/tools/call.
// Auth middleware has already validated the Bearer token, which also
// guarantees the runtime state is initialized.
func (d *Dependencies) handleToolCall(w http.ResponseWriter, r *http.Request) {
	var req ToolCallRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "Invalid JSON body"})
		return
	}
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, ErrorResp{Detail: "name is required"})
		return
	}

	result, requestID, callErr := d.Tools.Call(r.Context(), req.Name, req.Arguments)
	if callErr != nil {
		writeJSON(w, callErr.Code, ToolCallErrorResponse{
			RequestID: requestID,
			Error:     ToolCallError{Code: callErr.Code, Message: callErr.Message},
		})
		return
	}

	writeJSON(w, http.StatusOK, ToolCallResponse{RequestID: requestID, Result: result})
}
