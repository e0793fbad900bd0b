package models

// Result is the envelope returned by every endpoint.
type Result struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

// NewResult builds a Result envelope.
func NewResult(success bool, data interface{}, message string) Result {
	return Result{Success: success, Data: data, Message: message}
}
