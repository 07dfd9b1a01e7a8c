package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrMalformedResponse is returned when a body does not have the
	// expected shape, for example a list endpoint not returning an array.
	ErrMalformedResponse = errors.New("malformed response")

	// ErrUnauthorized is returned for 401 and 403 responses.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRejected is returned when the backend answers success=false.
	ErrRejected = errors.New("request rejected")

	// ErrInvalidLoanType is returned for loan types other than personal
	// and business.
	ErrInvalidLoanType = errors.New(`loan type must be "personal" or "business"`)
)

// APIError is a non-2xx backend response.
type APIError struct {
	Status    int
	Message   string
	Field     string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("API error (status %d): %s (field %s)", e.Status, e.Message, e.Field)
	}
	return fmt.Sprintf("API error (status %d): %s", e.Status, e.Message)
}

// Unwrap classifies authentication failures as ErrUnauthorized.
func (e *APIError) Unwrap() error {
	if e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden {
		return ErrUnauthorized
	}
	return nil
}

// newAPIError reads the server's message, falling back to the body text
func newAPIError(status int, body []byte, requestID string) *APIError {
	e := &APIError{Status: status, RequestID: requestID}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Field   string `json:"field"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		e.Message = payload.Message
		if e.Message == "" {
			e.Message = payload.Error
		}
		e.Field = payload.Field
	}
	if e.Message == "" {
		e.Message = strings.TrimSpace(string(body))
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}
	return e
}

// Message returns a user-facing message for err.
func Message(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
