package model

// Response is the uniform envelope every endpoint answers with.
type Response struct {
	Success bool     `json:"success"`
	Message string   `json:"message,omitempty"`
	Errors  []string `json:"errors,omitempty"`
	Data    any      `json:"data,omitempty"`
}

// OK wraps a successful payload.
func OK(data any) Response {
	return Response{Success: true, Data: data}
}

// OKMessage wraps a successful payload with a message.
func OKMessage(message string, data any) Response {
	return Response{Success: true, Message: message, Data: data}
}

// Fail wraps an error message with optional per-field details.
func Fail(message string, errs ...string) Response {
	return Response{Success: false, Message: message, Errors: errs}
}
