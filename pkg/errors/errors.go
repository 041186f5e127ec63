package errors

import "errors"

// Codes shared by the domain services and the HTTP layer.
const (
	CodeInvalidInput       = "invalid_input"
	CodeNotFound           = "not_found"
	CodeStorage            = "storage_error"
	CodeConfiguration      = "configuration_error"
	CodeUpstream           = "upstream_error"
	CodeMalformedResponse  = "malformed_response"
	CodeSemanticValidation = "semantic_validation_error"
	CodeBackgroundRemoval  = "background_removal_error"
	CodeWeather            = "weather_error"
)

// AppError encodes domain specific error details.
type AppError struct {
	Code    string
	Message string
	// Status is the upstream HTTP status when the failure came from a remote call.
	Status int
	// Detail holds a truncated upstream body or model output for diagnostics.
	Detail string
	Err    error
}

func (e *AppError) Error() string {
	msg := e.Message
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Wrap produces a new AppError instance.
func Wrap(code, message string, err error) error {
	if err == nil {
		return &AppError{Code: code, Message: message}
	}
	return &AppError{Code: code, Message: message, Err: err}
}

// Upstream records a non-success response from a remote service.
func Upstream(message string, status int, detail string) error {
	return &AppError{Code: CodeUpstream, Message: message, Status: status, Detail: detail}
}

// WithDetail returns an AppError carrying diagnostic text.
func WithDetail(code, message, detail string, err error) error {
	return &AppError{Code: code, Message: message, Detail: detail, Err: err}
}

// IsCode helps handler differentiate failures.
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// StatusOf returns the upstream status recorded on the first AppError in the chain.
func StatusOf(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return 0
}

// CodeOf returns the code of the first AppError in the chain, or "" when there is none.
func CodeOf(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// MessageOf returns the client-facing message of the first AppError in the chain.
// Wrapped causes are left out; Detail is kept for failures reported by a remote service.
func MessageOf(err error) string {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return ""
	}
	switch appErr.Code {
	case CodeUpstream, CodeMalformedResponse, CodeSemanticValidation:
		if appErr.Detail != "" {
			return appErr.Message + " (" + appErr.Detail + ")"
		}
	}
	return appErr.Message
}
