package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sort"
	"strings"
)

// TransportError is a failure before a usable response existed: DNS, dial,
// TLS, timeouts, cancellation, or a broken body read.
type TransportError struct {
	Method string
	URL    string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RequestError is a request that could not be built from the caller's input.
// Nothing was sent.
type RequestError struct {
	Method string
	URL    string
	Err    error
}

func (e *RequestError) Error() string {
	if e.URL == "" {
		return fmt.Sprintf("invalid %s request: %v", e.Method, e.Err)
	}
	return fmt.Sprintf("invalid %s request to %s: %v", e.Method, e.URL, e.Err)
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// HTTPError is a response whose status the transport does not accept.
type HTTPError struct {
	StatusCode int
	Body       string
	RequestID  string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HAT error (status %d): %s", e.StatusCode, summarizeBody(e.Body))
}

// DecodeError is an accepted response whose body is not valid JSON.
type DecodeError struct {
	StatusCode int
	Err        error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unexpected response format (status %d, JSON decode failed): %v", e.StatusCode, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if the error happened before a response existed.
func IsTransportError(err error) bool {
	var e *TransportError
	return errors.As(err, &e)
}

// IsHTTPError checks if the error is a rejected HTTP status.
func IsHTTPError(err error) bool {
	var e *HTTPError
	return errors.As(err, &e)
}

// IsParseError checks if the error is a response that did not match the
// expected domain shape.
func IsParseError(err error) bool {
	var p *ParseError
	if errors.As(err, &p) {
		return true
	}
	var d *DecodeError
	return errors.As(err, &d)
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// IsNotFoundError checks if the error indicates a resource was not found.
func IsNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	var se *StructuredError
	if errors.As(err, &se) {
		return se.Status == 404
	}
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == 404
	}
	return false
}

// summarizeBody extracts a readable message from a HAT error payload
// ({"message": ..., "cause": ...}) without echoing arbitrary response data.
func summarizeBody(body string) string {
	var errResp struct {
		Error   string      `json:"error"`
		Message string      `json:"message"`
		Cause   string      `json:"cause"`
		Errors  interface{} `json:"errors"`
	}
	if err := json.Unmarshal([]byte(body), &errResp); err != nil {
		if strings.TrimSpace(body) == "" {
			return "empty response body"
		}
		return "request failed (response body is not JSON)"
	}

	var result string
	switch {
	case errResp.Message != "":
		result = errResp.Message
	case errResp.Error != "":
		result = errResp.Error
	}
	if errResp.Cause != "" && errResp.Cause != result {
		if result != "" {
			result += ": "
		}
		result += errResp.Cause
	}

	if validationErrors := formatValidationErrors(errResp.Errors); validationErrors != "" {
		if result != "" {
			return result + "\nValidation errors:\n" + validationErrors
		}
		return "Validation errors:\n" + validationErrors
	}
	if result != "" {
		return result
	}
	return "request failed"
}

// formatValidationErrors handles both map[string]string and map[string][]string.
func formatValidationErrors(errors interface{}) string {
	errMap, ok := errors.(map[string]interface{})
	if !ok || len(errMap) == 0 {
		return ""
	}

	var lines []string
	for field, value := range errMap {
		switch v := value.(type) {
		case string:
			lines = append(lines, fmt.Sprintf("  %s: %s", field, v))
		case []interface{}:
			for _, msg := range v {
				if msgStr, ok := msg.(string); ok {
					lines = append(lines, fmt.Sprintf("  %s: %s", field, msgStr))
				}
			}
		}
	}
	if len(lines) == 0 {
		return ""
	}
	sort.Strings(lines)
	return strings.Join(lines, "\n")
}
