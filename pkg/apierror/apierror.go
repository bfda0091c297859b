package apierror

import (
	"fmt"
	"net/http"
)

type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    string `json:"details,omitempty"`
	HTTPStatus int    `json:"-"`
}

func (e *APIError) Error() string {
	if e == nil {
		return ""
	}

	if e.Details != "" {
		return fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Details)
	}

	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func New(code string, message string, details string, status int) *APIError {
	return &APIError{Code: code, Message: message, Details: details, HTTPStatus: status}
}

// FromDetail wraps a backend-reported domain error (the `detail` string
// of an error response) so it reaches the UI verbatim. An empty detail
// falls back to a generic failure message.
func FromDetail(detail string, status int) *APIError {
	if detail == "" {
		detail = "Request failed"
	}
	if status < http.StatusBadRequest {
		status = http.StatusBadGateway
	}
	return &APIError{Code: "BACKEND_ERROR", Message: detail, HTTPStatus: status}
}
