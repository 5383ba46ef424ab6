package gemini

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is returned when the endpoint answers with a non-2xx status.
// Message is taken from the Google error envelope when the body has one.
type APIError struct {
	StatusCode int
	Status     string
	Message    string
	Body       []byte // raw response body
}

func (e *APIError) Error() string {
	status := e.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	if e.Message != "" {
		return fmt.Sprintf("gemini API returned %s: %s", status, e.Message)
	}
	return fmt.Sprintf("gemini API returned %s", status)
}

// ResponseError is returned when a 2xx response cannot be decoded or lacks the
// completion text. Raw holds the response body when one was received.
type ResponseError struct {
	Reason string
	Raw    []byte
	Err    error
}

func (e *ResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error parsing response JSON: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("error parsing response JSON: %s", e.Reason)
}

func (e *ResponseError) Unwrap() error { return e.Err }

// errorBody rebuilds a Google error envelope for SDK failures that do not
// expose the raw response body.
func errorBody(code int, message, status string, details any) []byte {
	type errorInfo struct {
		Code    int    `json:"code,omitempty"`
		Message string `json:"message,omitempty"`
		Status  string `json:"status,omitempty"`
		Details any    `json:"details,omitempty"`
	}
	b, err := json.Marshal(struct {
		Error errorInfo `json:"error"`
	}{Error: errorInfo{Code: code, Message: message, Status: status, Details: details}})
	if err != nil {
		return []byte(message)
	}
	return b
}
