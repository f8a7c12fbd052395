package api

import (
	"encoding/json"
	"net/http"
)

// AuthTokenHeader carries rotated tokens on responses and credentials on requests.
const AuthTokenHeader = "X-Auth-Token"

// Result is the outcome of a single exchange. It is either a Success or a
// Failure; both are plain values built once per exchange and never mutated.
type Result interface {
	// Status returns the HTTP status code, or 0 when no response was received.
	Status() int
	result()
}

// Body is the decoded-enough payload of a successful exchange: JSONBody,
// StringBody, or nil when the response carried nothing.
type Body interface {
	body()
}

// JSONBody holds a syntactically valid JSON document.
type JSONBody json.RawMessage

// StringBody holds a response read as plain text.
type StringBody string

func (JSONBody) body()   {}
func (StringBody) body() {}

// Success is a response the transport accepted.
type Success struct {
	StatusCode int
	Body       Body
	// Token is the last X-Auth-Token value of the response, nil when absent.
	Token *string
}

// Failure is an exchange that produced no usable response.
type Failure struct {
	// StatusCode is 0 when the failure happened before a response existed.
	StatusCode int
	// Body is the raw response body, if any was read.
	Body  string
	Cause error
}

func (s Success) Status() int { return s.StatusCode }
func (f Failure) Status() int { return f.StatusCode }

func (Success) result() {}
func (Failure) result() {}

// tokenFromHeader returns the last X-Auth-Token value; repeated headers mean
// the server rotated more than once and only the newest one is valid.
func tokenFromHeader(h http.Header) *string {
	values := h.Values(AuthTokenHeader)
	if len(values) == 0 {
		return nil
	}
	token := values[len(values)-1]
	return &token
}
