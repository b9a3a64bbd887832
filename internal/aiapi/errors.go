package aiapi

import (
	"encoding/json"
	"io"
	"net/http"
)

// ErrorType represents different types of assistant API errors
type ErrorType int

const (
	ErrorUnknown ErrorType = iota
	ErrorRateLimited
	ErrorUnauthorized
	ErrorBadRequest
	ErrorContentFiltered
	ErrorModelOverloaded
	ErrorServerError
)

// APIError represents an assistant API error with additional context
type APIError struct {
	Type       ErrorType
	StatusCode int
	Message    string
	Retryable  bool
}

func (e *APIError) Error() string {
	return e.Message
}

// errorResponse is the JSON body the assistant API returns on failure.
type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// ClassifyError determines the type of error from an HTTP response
func ClassifyError(resp *http.Response) *APIError {
	if resp == nil {
		return &APIError{
			Type:      ErrorUnknown,
			Message:   "nil response",
			Retryable: false,
		}
	}

	var body errorResponse
	if resp.Body != nil {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err == nil {
			_ = json.Unmarshal(bodyBytes, &body)
		}
		// Body is already read, caller should not try to read it again
	}

	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Type:       ErrorUnknown,
		Retryable:  false,
	}

	switch resp.StatusCode {
	case http.StatusTooManyRequests:
		apiErr.Type = ErrorRateLimited
		apiErr.Message = "rate limited by assistant API"
		apiErr.Retryable = true

	case http.StatusUnauthorized, http.StatusForbidden:
		apiErr.Type = ErrorUnauthorized
		apiErr.Message = "assistant API rejected credentials"
		apiErr.Retryable = false

	case http.StatusBadRequest:
		apiErr.Type = ErrorBadRequest
		apiErr.Message = "bad request (400)"
		apiErr.Retryable = false
		if body.Error.Type == "content_filtered" {
			apiErr.Type = ErrorContentFiltered
			apiErr.Message = "request rejected by content filter"
		}

	case http.StatusServiceUnavailable:
		apiErr.Type = ErrorModelOverloaded
		apiErr.Message = "assistant model overloaded (503)"
		apiErr.Retryable = true

	default:
		if resp.StatusCode >= 500 {
			apiErr.Type = ErrorServerError
			apiErr.Message = "assistant server error (5xx)"
			apiErr.Retryable = true
		} else if resp.StatusCode >= 400 {
			apiErr.Type = ErrorBadRequest
			apiErr.Message = "client error"
			apiErr.Retryable = false
		}
	}

	if body.Error.Message != "" {
		apiErr.Message += ": " + body.Error.Message
	}

	return apiErr
}

// IsRetryable checks if an error should be retried
func IsRetryable(err *APIError) bool {
	return err != nil && err.Retryable
}
