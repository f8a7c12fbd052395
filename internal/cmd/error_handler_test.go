package cmd

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/config"
	"github.com/hubofallthings/hat-cli/internal/resolve"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		contains []string
	}{
		{
			name:     "not configured",
			err:      config.ErrNotConfigured,
			contains: []string{"No HAT credentials configured", "hat auth login", "HAT_TOKEN"},
		},
		{
			name:     "no result",
			err:      fmt.Errorf("%w: context deadline exceeded", errNoResult),
			contains: []string{"no result delivered", "--compat-delivery"},
		},
		{
			name: "http with request id",
			err: api.StructuredErrorFromResult(api.Failure{
				StatusCode: 404,
				Body:       `{"message":"Not found"}`,
				Cause:      &api.HTTPError{StatusCode: 404, Body: `{"message":"Not found"}`, RequestID: "req-42"},
			}),
			contains: []string{"HAT error (HTTP 404)", "Not found", "namespace, endpoint or ID", "Request ID: req-42"},
		},
		{
			name:     "accepted 401 without body",
			err:      &api.StructuredError{Kind: api.KindUnauthorized, Code: api.ErrUnauthorized, Status: 401},
			contains: []string{"HAT error (HTTP 401): unauthorized", "hat auth login"},
		},
		{
			name:     "parse",
			err:      api.StructuredErrorFromError(&api.ParseError{Target: "[]api.FeedItem", Index: 2, Field: "actionCode", Err: errors.New("failed \"required\" validation")}),
			contains: []string{"Unexpected response", "element 2", "actionCode", "API version"},
		},
		{
			name:     "connection refused",
			err:      api.StructuredErrorFromError(&api.TransportError{Method: "GET", URL: "http://x", Err: errors.New("dial tcp: connection refused")}),
			contains: []string{"Connection refused", "hat auth status"},
		},
		{
			name:     "dns",
			err:      api.StructuredErrorFromError(&api.TransportError{Method: "GET", URL: "https://x", Err: errors.New("lookup x: no such host")}),
			contains: []string{"DNS resolution failed"},
		},
		{
			name:     "ambiguous",
			err:      &resolve.AmbiguousError{Query: "tr", Matches: []resolve.Match{{ID: "a", Name: "Tracker A"}, {ID: "b", Name: "Tracker B"}}},
			contains: []string{"ambiguous match for \"tr\"", "a: Tracker A"},
		},
		{
			name:     "plain",
			err:      errors.New("something broke"),
			contains: []string{"Error: something broke"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := HandleError(tt.err)
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("HandleError() missing %q in:\n%s", want, got)
				}
			}
		})
	}

	if HandleError(nil) != "" {
		t.Error("HandleError(nil) should be empty")
	}
}

func TestSuggestionsForStatusCode(t *testing.T) {
	for code, want := range map[int]string{
		400: "request parameters",
		401: "hat auth login",
		403: "permission",
		429: "retry",
		502: "Server error",
		418: "--debug",
	} {
		if got := suggestionsForStatusCode(code); !strings.Contains(got, want) {
			t.Errorf("suggestionsForStatusCode(%d) = %q, want it to mention %q", code, got, want)
		}
	}
}
