// Package domain provides the canonical types and error taxonomy for the assistant.
package domain

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the category of a request failure.
type ErrorType string

const (
	// ErrorTypeBadRequest indicates a malformed or empty inbound payload.
	ErrorTypeBadRequest ErrorType = "bad_request"

	// ErrorTypeUnknownTool indicates the model asked for a tool that is not registered.
	ErrorTypeUnknownTool ErrorType = "unknown_tool"

	// ErrorTypeInvalidArguments indicates tool arguments failed schema validation.
	ErrorTypeInvalidArguments ErrorType = "invalid_arguments"

	// ErrorTypeUpstream indicates the model service failed or timed out.
	ErrorTypeUpstream ErrorType = "upstream"

	// ErrorTypeServer indicates an internal failure, such as a tool executor error.
	ErrorTypeServer ErrorType = "server"
)

// UnknownToolMessage is the only text a client sees for an unknown tool.
const UnknownToolMessage = "Unknown tool requested."

// APIError is a request-terminating failure. Soft tool errors are never APIErrors;
// they travel inside a ToolResult.
type APIError struct {
	// Type is the category of error
	Type ErrorType `json:"type"`

	// Message is the client-facing message
	Message string `json:"message"`

	// Param names the offending field or tool, if any
	Param string `json:"param,omitempty"`

	// StatusCode overrides the status derived from Type
	StatusCode int `json:"-"`

	// Cause is the underlying error, kept for logs only
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Type, e.Message)
	if e.Param != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Param)
	}
	if e.Cause != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Cause)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *APIError) Unwrap() error {
	return e.Cause
}

// HTTPStatusCode returns the appropriate HTTP status code for this error.
func (e *APIError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}

	switch e.Type {
	case ErrorTypeBadRequest, ErrorTypeUnknownTool, ErrorTypeInvalidArguments:
		return http.StatusBadRequest
	case ErrorTypeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// NewAPIError creates a new API error.
func NewAPIError(errType ErrorType, message string) *APIError {
	return &APIError{
		Type:    errType,
		Message: message,
	}
}

// WithParam adds a parameter name to the error.
func (e *APIError) WithParam(param string) *APIError {
	e.Param = param
	return e
}

// WithStatusCode sets a specific HTTP status code.
func (e *APIError) WithStatusCode(code int) *APIError {
	e.StatusCode = code
	return e
}

// WithCause records the underlying error.
func (e *APIError) WithCause(err error) *APIError {
	e.Cause = err
	return e
}

// ErrBadRequest creates a bad request error.
func ErrBadRequest(message string) *APIError {
	return NewAPIError(ErrorTypeBadRequest, message)
}

// ErrUnknownTool creates an unknown tool error. The tool name is kept in Param
// for logging; the message stays generic.
func ErrUnknownTool(name string) *APIError {
	return NewAPIError(ErrorTypeUnknownTool, UnknownToolMessage).WithParam(name)
}

// ErrInvalidArguments creates an argument validation error naming the field.
func ErrInvalidArguments(field, reason string) *APIError {
	return NewAPIError(ErrorTypeInvalidArguments,
		fmt.Sprintf("invalid argument %q: %s", field, reason)).WithParam(field)
}

// ErrUpstream creates an upstream failure wrapping cause.
func ErrUpstream(cause error) *APIError {
	return NewAPIError(ErrorTypeUpstream, "The model service is unavailable.").WithCause(cause)
}

// ErrUpstreamTimeout creates an upstream failure for a timed out call.
func ErrUpstreamTimeout(cause error) *APIError {
	return NewAPIError(ErrorTypeUpstream, "The model service did not answer in time.").
		WithStatusCode(http.StatusGatewayTimeout).
		WithCause(cause)
}

// ErrServer creates a server error.
func ErrServer(message string) *APIError {
	return NewAPIError(ErrorTypeServer, message)
}

// AsAPIError extracts an APIError from err's chain.
func AsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsType reports whether err carries an APIError of the given type.
func IsType(err error, t ErrorType) bool {
	apiErr, ok := AsAPIError(err)
	return ok && apiErr.Type == t
}
