package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/helixml/linedit/domain/edit"
	"github.com/helixml/linedit/infrastructure/api/jsonapi"
)

// Base API errors as sentinels.
var (
	// ErrAuthentication indicates authentication failure.
	ErrAuthentication = errors.New("authentication failed")

	// ErrServer indicates the server returned an error response.
	ErrServer = errors.New("server error")
)

// APIError is a request failure with an explicit HTTP status.
type APIError struct {
	code    int
	message string
	cause   error
}

// NewAPIError creates a new APIError.
func NewAPIError(code int, message string, cause error) *APIError {
	return &APIError{code: code, message: message, cause: cause}
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("api error %d: %s: %v", e.code, e.message, e.cause)
	}
	return fmt.Sprintf("api error %d: %s", e.code, e.message)
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error { return e.cause }

// Code returns the HTTP status.
func (e *APIError) Code() int { return e.code }

// Message returns the error message.
func (e *APIError) Message() string { return e.message }

// AuthenticationError represents an authentication failure.
type AuthenticationError struct {
	message string
}

// NewAuthenticationError creates a new AuthenticationError.
func NewAuthenticationError(message string) *AuthenticationError {
	return &AuthenticationError{message: message}
}

// Error implements the error interface.
func (e *AuthenticationError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.message)
}

// Unwrap returns ErrAuthentication for errors.Is.
func (e *AuthenticationError) Unwrap() error { return ErrAuthentication }

// ServerError represents a failure the server reports with a status code.
type ServerError struct {
	statusCode int
	message    string
}

// NewServerError creates a new ServerError.
func NewServerError(statusCode int, message string) *ServerError {
	return &ServerError{statusCode: statusCode, message: message}
}

// Error implements the error interface.
func (e *ServerError) Error() string {
	return fmt.Sprintf("server error %d: %s", e.statusCode, e.message)
}

// Unwrap returns ErrServer for errors.Is.
func (e *ServerError) Unwrap() error { return ErrServer }

// StatusCode returns the HTTP status.
func (e *ServerError) StatusCode() int { return e.statusCode }

// Message returns the error message.
func (e *ServerError) Message() string { return e.message }

// StatusForKind maps an edit failure kind to an HTTP status.
func StatusForKind(kind edit.Kind) int {
	switch kind {
	case edit.KindNotFound:
		return http.StatusNotFound
	case edit.KindOutOfRange:
		return http.StatusRequestedRangeNotSatisfiable
	case edit.KindConflict:
		return http.StatusConflict
	case edit.KindSyntaxRejected:
		return http.StatusUnprocessableEntity
	case edit.KindTooLarge:
		return http.StatusRequestEntityTooLarge
	case edit.KindInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes a JSON:API error document. Edit failures keep their
// kind in the error code so clients can branch on it.
func WriteError(w http.ResponseWriter, r *http.Request, err error, logger *slog.Logger) {
	status := http.StatusInternalServerError
	title := http.StatusText(status)
	detail := err.Error()
	code := ""

	var apiErr *APIError
	var serverErr *ServerError
	var authErr *AuthenticationError
	var editErr *edit.Error

	switch {
	case errors.As(err, &apiErr):
		status = apiErr.Code()
		title = http.StatusText(status)
		detail = apiErr.Message()
	case errors.As(err, &serverErr):
		status = serverErr.StatusCode()
		title = http.StatusText(status)
		detail = serverErr.Message()
	case errors.As(err, &authErr):
		status = http.StatusUnauthorized
		title = "Unauthorized"
	case errors.As(err, &editErr):
		kind := editErr.Kind()
		status = StatusForKind(kind)
		title = http.StatusText(status)
		code = kind.String()
	}

	if logger != nil {
		level := slog.LevelWarn
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(r.Context(), level, "request error",
			slog.String("request_id", GetCorrelationID(r.Context())),
			slog.Int("status", status),
			slog.String("error", err.Error()),
			slog.String("path", r.URL.Path),
		)
	}

	e := jsonapi.NewError(fmt.Sprintf("%d", status), title, detail)
	e.Code = code
	e.ID = GetCorrelationID(r.Context())

	w.Header().Set("Content-Type", jsonapi.ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(jsonapi.NewErrorResponse(e))
}

// WriteJSON writes a JSON response.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", jsonapi.ContentType)
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
