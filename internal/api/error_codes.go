package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// FailureKind is the coarse category of a failed call.
type FailureKind string

const (
	// KindTransport means no usable response was received.
	KindTransport FailureKind = "transport"
	// KindHTTP means the server answered with a status the transport rejects.
	KindHTTP FailureKind = "http"
	// KindParse means the response did not match the expected domain shape.
	KindParse FailureKind = "parse"
	// KindUnauthorized means a 401 arrived with a status the transport accepted.
	KindUnauthorized FailureKind = "unauthorized"
)

// ErrorCode represents machine-readable error codes.
type ErrorCode string

const (
	ErrBadRequest      ErrorCode = "bad_request"
	ErrUnauthorized    ErrorCode = "unauthorized"
	ErrForbidden       ErrorCode = "forbidden"
	ErrNotFound        ErrorCode = "not_found"
	ErrConflict        ErrorCode = "conflict"
	ErrValidation      ErrorCode = "validation_failed"
	ErrRateLimited     ErrorCode = "rate_limited"
	ErrServerError     ErrorCode = "server_error"
	ErrTimeout         ErrorCode = "timeout"
	ErrCanceled        ErrorCode = "canceled"
	ErrTransportFailed ErrorCode = "transport_failed"
	ErrParseFailed     ErrorCode = "parse_failed"
	ErrUnknown         ErrorCode = "unknown"
)

// IsRetryable returns true if errors with this code may succeed on retry.
func (c ErrorCode) IsRetryable() bool {
	switch c {
	case ErrRateLimited, ErrServerError, ErrTimeout, ErrTransportFailed:
		return true
	default:
		return false
	}
}

// Suggestion returns a human-readable suggestion for resolving this error.
func (c ErrorCode) Suggestion() string {
	switch c {
	case ErrUnauthorized:
		return "Run 'hat auth login' to refresh your token"
	case ErrForbidden:
		return "Check that the application has access to this resource"
	case ErrNotFound:
		return "Verify the namespace, endpoint or record ID"
	case ErrRateLimited:
		return "Wait a moment and retry"
	case ErrValidation, ErrBadRequest:
		return "Check the request payload and parameters"
	case ErrServerError:
		return "The HAT encountered an error; try again later"
	case ErrTimeout, ErrTransportFailed:
		return "Check network connectivity and the HAT domain, then retry"
	case ErrParseFailed:
		return "The HAT returned data in an unexpected shape; check the API version"
	default:
		return ""
	}
}

// ErrorCodeFromStatus maps an HTTP status code to an ErrorCode.
func ErrorCodeFromStatus(statusCode int) ErrorCode {
	switch statusCode {
	case 400:
		return ErrBadRequest
	case 401:
		return ErrUnauthorized
	case 403:
		return ErrForbidden
	case 404:
		return ErrNotFound
	case 409:
		return ErrConflict
	case 422:
		return ErrValidation
	case 429:
		return ErrRateLimited
	default:
		if statusCode >= 500 && statusCode < 600 {
			return ErrServerError
		}
		return ErrUnknown
	}
}

// StructuredError is the failure handed to onFailure callbacks.
//
// Status is the HTTP status (0 when no response existed). Message is the raw
// response body for HTTP failures and the cause text otherwise.
type StructuredError struct {
	Kind       FailureKind `json:"kind"`
	Code       ErrorCode   `json:"code"`
	Status     int         `json:"status,omitempty"`
	Message    string      `json:"message"`
	Retryable  bool        `json:"retryable"`
	Suggestion string      `json:"suggestion,omitempty"`
	Cause      error       `json:"-"`
}

// Error implements the error interface.
func (e *StructuredError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("[%s] status %d: %s", e.Code, e.Status, e.summary())
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.summary())
}

func (e *StructuredError) summary() string {
	if e.Kind == KindHTTP || e.Kind == KindUnauthorized {
		return summarizeBody(e.Message)
	}
	return e.Message
}

func (e *StructuredError) Unwrap() error {
	return e.Cause
}

// MarshalJSON includes the cause text, which encoding/json cannot see.
func (e *StructuredError) MarshalJSON() ([]byte, error) {
	type Alias StructuredError
	out := struct {
		*Alias
		CauseText string `json:"cause,omitempty"`
	}{Alias: (*Alias)(e)}
	if e.Cause != nil {
		out.CauseText = e.Cause.Error()
	}
	return json.Marshal(out)
}

// NewStructuredError creates a StructuredError from a kind, code and message.
func NewStructuredError(kind FailureKind, code ErrorCode, message string) *StructuredError {
	return &StructuredError{
		Kind:       kind,
		Code:       code,
		Message:    message,
		Retryable:  code.IsRetryable(),
		Suggestion: code.Suggestion(),
	}
}

// StructuredErrorFromResult converts a Failure into the caller-facing error.
func StructuredErrorFromResult(f Failure) *StructuredError {
	cause := f.Cause
	if cause == nil {
		cause = errors.New("exchange failed")
	}
	se := StructuredErrorFromError(cause)
	if se.Kind == "" {
		se.Kind = KindTransport
	}
	se.Status = f.StatusCode
	if f.Body != "" {
		se.Message = f.Body
	}
	return se
}

// unauthorizedError is what a 401 with an accepted status becomes.
func unauthorizedError(s Success) *StructuredError {
	se := NewStructuredError(KindUnauthorized, ErrUnauthorized, "")
	se.Status = s.StatusCode
	switch b := s.Body.(type) {
	case JSONBody:
		se.Message = string(b)
	case StringBody:
		se.Message = string(b)
	}
	return se
}

// StructuredErrorFromError classifies any error.
func StructuredErrorFromError(err error) *StructuredError {
	if err == nil {
		return nil
	}

	var se *StructuredError
	if errors.As(err, &se) {
		return se
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		code := ErrorCodeFromStatus(httpErr.StatusCode)
		out := NewStructuredError(KindHTTP, code, httpErr.Body)
		out.Status = httpErr.StatusCode
		out.Cause = err
		return out
	}

	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		out := NewStructuredError(KindParse, ErrParseFailed, err.Error())
		out.Status = decodeErr.StatusCode
		out.Cause = err
		return out
	}

	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		out := NewStructuredError(KindParse, ErrParseFailed, err.Error())
		out.Cause = err
		return out
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		out := NewStructuredError(KindTransport, ErrValidation, err.Error())
		out.Cause = err
		return out
	}

	code := ErrUnknown
	switch {
	case errors.Is(err, context.Canceled):
		code = ErrCanceled
	case IsTimeout(err):
		code = ErrTimeout
	case IsTransportError(err):
		code = ErrTransportFailed
	}
	kind := KindTransport
	if code == ErrUnknown {
		kind = ""
	}
	out := NewStructuredError(kind, code, err.Error())
	out.Cause = err
	return out
}
