// Package dto contains the JSON shapes of the HTTP API.
package dto

import "time"

// CodeValidation is the error code of a request whose fields were rejected.
const CodeValidation = "VALIDATION_ERROR"

// APIResponse is the envelope every JSON body is wrapped in.
type APIResponse[T any] struct {
	Success bool          `json:"success"`
	Data    T             `json:"data,omitempty"`
	Error   *APIError     `json:"error,omitempty"`
	Meta    *ResponseMeta `json:"meta,omitempty"`
}

// APIError describes why a request failed.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`

	// Details carries machine-readable context, e.g. the body size limit.
	Details map[string]any `json:"details,omitempty"`

	ValidationErrors []ValidationError `json:"validation_errors,omitempty"`
}

// ValidationError points at one rejected request field.
type ValidationError struct {
	// Field is a JSON path such as items[2].quantity.
	Field   string `json:"field"`
	Message string `json:"message"`

	// Value echoes what was rejected; nil when it cannot be shown.
	Value any `json:"value,omitempty"`
}

// ResponseMeta identifies the request and the API build behind a response.
type ResponseMeta struct {
	RequestID string `json:"request_id,omitempty"`

	// Timestamp is RFC 3339 in UTC.
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
}

// NewResponseMeta stamps a response produced at the given instant.
func NewResponseMeta(requestID, version string, at time.Time) *ResponseMeta {
	return &ResponseMeta{
		RequestID: requestID,
		Timestamp: at.UTC().Format(time.RFC3339),
		Version:   version,
	}
}

// NewSuccessResponse wraps data in a successful envelope.
func NewSuccessResponse[T any](data T) APIResponse[T] {
	return APIResponse[T]{Success: true, Data: data}
}

// NewErrorResponse builds a failed envelope. Errors never carry data.
func NewErrorResponse(code, message string) APIResponse[any] {
	return APIResponse[any]{
		Error: &APIError{Code: code, Message: message},
	}
}

// NewValidationErrorResponse builds a failed envelope listing rejected fields.
func NewValidationErrorResponse(errs ...ValidationError) APIResponse[any] {
	resp := NewErrorResponse(CodeValidation, "Request validation failed")
	resp.Error.ValidationErrors = errs
	return resp
}

// WithDetail returns the error with one more detail entry.
func (e *APIError) WithDetail(key string, value any) *APIError {
	if e.Details == nil {
		e.Details = make(map[string]any, 1)
	}
	e.Details[key] = value
	return e
}
