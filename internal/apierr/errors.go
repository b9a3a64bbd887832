package apierr

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/garrycui/wellnest/internal/logger"
)

// ErrorCode represents a structured error code
type ErrorCode string

// Error code constants organized by category
const (
	// AUTH_ - Authentication and authorization errors
	ErrAuthMissing   ErrorCode = "AUTH_MISSING"
	ErrAuthInvalid   ErrorCode = "AUTH_INVALID"
	ErrAuthForbidden ErrorCode = "AUTH_FORBIDDEN"

	// FORUM_ - Forum operation errors
	ErrForumPostNotFound  ErrorCode = "FORUM_POST_NOT_FOUND"
	ErrForumInvalidParams ErrorCode = "FORUM_INVALID_PARAMS"
	ErrForumMutation      ErrorCode = "FORUM_MUTATION_FAILED"

	// TUTORIAL_ - Tutorial errors
	ErrTutorialNotFound ErrorCode = "TUTORIAL_NOT_FOUND"

	// CHAT_ - Chat session and assistant errors
	ErrChatSessionNotFound ErrorCode = "CHAT_SESSION_NOT_FOUND"
	ErrChatAssistant       ErrorCode = "CHAT_ASSISTANT_FAILED"
	ErrChatUnavailable     ErrorCode = "CHAT_ASSISTANT_UNAVAILABLE"

	// USER_ - User profile errors
	ErrUserNotFound ErrorCode = "USER_NOT_FOUND"

	// ASSESSMENT_ - Assessment errors
	ErrAssessmentNotFound ErrorCode = "ASSESSMENT_NOT_FOUND"

	// SYSTEM_ - System and server errors
	ErrSystemInternal ErrorCode = "SYSTEM_INTERNAL"
	ErrSystemDatabase ErrorCode = "SYSTEM_DATABASE"
	ErrSystemTimeout  ErrorCode = "SYSTEM_TIMEOUT"

	// VALIDATION_ - Request validation errors
	ErrValidationInvalidJSON  ErrorCode = "VALIDATION_INVALID_JSON"
	ErrValidationMissingField ErrorCode = "VALIDATION_MISSING_FIELD"
	ErrValidationInvalidValue ErrorCode = "VALIDATION_INVALID_VALUE"

	// RATE_LIMIT_ - Rate limiting errors
	ErrRateLimitGlobal ErrorCode = "RATE_LIMIT_GLOBAL"
	ErrRateLimitIP     ErrorCode = "RATE_LIMIT_IP"
)

// Error represents a structured API error
type Error struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	status    int                    // HTTP status code (not serialized)
}

// ErrorResponse is the top-level error response wrapper
type ErrorResponse struct {
	Error *Error `json:"error"`
}

// New creates a new API error
func New(code ErrorCode, message string, status int) *Error {
	return &Error{
		Code:    code,
		Message: message,
		status:  status,
	}
}

// WithDetails adds details to the error
func (e *Error) WithDetails(details map[string]interface{}) *Error {
	e.Details = details
	return e
}

// WithRequestID adds a request ID to the error
func (e *Error) WithRequestID(requestID string) *Error {
	e.RequestID = requestID
	return e
}

// Error implements the error interface
func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Message
}

// Status returns the HTTP status code
func (e *Error) Status() int {
	return e.status
}

// WriteError writes a structured error response to the HTTP response writer
func WriteError(w http.ResponseWriter, err *Error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.Status())
	json.NewEncoder(w).Encode(ErrorResponse{Error: err})
}

// Helper functions for common errors

// AuthMissing creates an authentication missing error
func AuthMissing(message string) *Error {
	if message == "" {
		message = "Authentication required"
	}
	return New(ErrAuthMissing, message, http.StatusUnauthorized)
}

// AuthForbidden creates a forbidden error
func AuthForbidden(message string) *Error {
	if message == "" {
		message = "Access forbidden"
	}
	return New(ErrAuthForbidden, message, http.StatusForbidden)
}

// PostNotFound creates a forum post not found error
func PostNotFound() *Error {
	return New(ErrForumPostNotFound, "Post not found", http.StatusNotFound)
}

// ForumInvalidParams creates an invalid forum query error
func ForumInvalidParams(message string) *Error {
	if message == "" {
		message = "Invalid forum query parameters"
	}
	return New(ErrForumInvalidParams, message, http.StatusBadRequest)
}

// ForumMutationFailed creates a forum mutation error
func ForumMutationFailed(message string) *Error {
	if message == "" {
		message = "Forum update failed - try again"
	}
	return New(ErrForumMutation, message, http.StatusInternalServerError)
}

// TutorialNotFound creates a tutorial not found error
func TutorialNotFound() *Error {
	return New(ErrTutorialNotFound, "Tutorial not found", http.StatusNotFound)
}

// ChatSessionNotFound creates a chat session not found error
func ChatSessionNotFound() *Error {
	return New(ErrChatSessionNotFound, "Chat session not found", http.StatusNotFound)
}

// ChatAssistantFailed creates an assistant call failed error
func ChatAssistantFailed(message string) *Error {
	if message == "" {
		message = "Assistant request failed"
	}
	return New(ErrChatAssistant, message, http.StatusBadGateway)
}

// ChatUnavailable creates an assistant unavailable error (circuit open)
func ChatUnavailable() *Error {
	return New(ErrChatUnavailable, "Assistant temporarily unavailable - try again shortly", http.StatusServiceUnavailable)
}

// UserNotFound creates a user not found error
func UserNotFound() *Error {
	return New(ErrUserNotFound, "User not found", http.StatusNotFound)
}

// AssessmentNotFound creates an assessment not found error
func AssessmentNotFound() *Error {
	return New(ErrAssessmentNotFound, "No completed assessment found", http.StatusNotFound)
}

// SystemInternal creates an internal system error
func SystemInternal(message string) *Error {
	if message == "" {
		message = "Internal server error"
	}
	return New(ErrSystemInternal, message, http.StatusInternalServerError)
}

// SystemDatabase creates a database error
func SystemDatabase(message string) *Error {
	if message == "" {
		message = "Database operation failed"
	}
	return New(ErrSystemDatabase, message, http.StatusInternalServerError)
}

// SystemTimeout creates a timeout error
func SystemTimeout(message string) *Error {
	if message == "" {
		message = "Operation timed out"
	}
	return New(ErrSystemTimeout, message, http.StatusRequestTimeout)
}

// ValidationInvalidJSON creates an invalid JSON error
func ValidationInvalidJSON() *Error {
	return New(ErrValidationInvalidJSON, "Invalid JSON in request body", http.StatusBadRequest)
}

// ValidationMissingField creates a missing field error
func ValidationMissingField(field string) *Error {
	return New(ErrValidationMissingField, "Missing required field: "+field, http.StatusBadRequest).
		WithDetails(map[string]interface{}{"field": field})
}

// ValidationInvalidValue creates an invalid value error
func ValidationInvalidValue(field string, message string) *Error {
	return New(ErrValidationInvalidValue, message, http.StatusBadRequest).
		WithDetails(map[string]interface{}{"field": field})
}

// RateLimitGlobal creates a global rate limit error
func RateLimitGlobal() *Error {
	return New(ErrRateLimitGlobal, "Rate limit exceeded - too many requests", http.StatusTooManyRequests)
}

// RateLimitIP creates a per-IP rate limit error
func RateLimitIP() *Error {
	return New(ErrRateLimitIP, "Rate limit exceeded for your IP - slow down", http.StatusTooManyRequests)
}

// GetRequestID extracts the request ID from context
func GetRequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(logger.RequestIDKey).(string); ok {
		return reqID
	}
	return ""
}

// WriteErrorWithContext writes an error response, attaching the request ID
// from the request context when present.
func WriteErrorWithContext(w http.ResponseWriter, r *http.Request, err *Error) {
	if reqID := GetRequestID(r.Context()); reqID != "" {
		err = err.WithRequestID(reqID)
	}
	WriteError(w, err)
}
