package models

// ToolCall is the inbound request envelope handled by the gateway.
type ToolCall struct {
	Tool      string         `json:"tool" binding:"required"`
	Action    string         `json:"action" binding:"required"`
	Params    map[string]any `json:"params"`
	RequestID string         `json:"requestId,omitempty"`
}

// APIResponse is the uniform response envelope for every tool call.
type APIResponse struct {
	Status    string `json:"status"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	Error     string `json:"error,omitempty"`
	FromCache bool   `json:"fromCache,omitempty"`
}

// OKResponse wraps an action result in a success envelope.
func OKResponse(data any, fromCache bool) APIResponse {
	return APIResponse{
		Status:    "ok",
		Message:   "OK",
		Data:      data,
		FromCache: fromCache,
	}
}

// FailResponse wraps an error code and message in a failure envelope.
func FailResponse(code, message string) APIResponse {
	return APIResponse{
		Status:  "error",
		Error:   code,
		Message: message,
	}
}
