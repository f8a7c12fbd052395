package api

import (
	"context"
	"errors"
	"net/url"
	"strings"
)

// List returns the tools available on domain.
func (s ToolsService) List(
	ctx context.Context,
	domain, token string,
	onSuccess func([]Tool, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		u, err := s.apiURL(domain, "she/function", "")
		return Request{Verb: VerbGet, URL: u, Headers: authHeaders(token)}, err
	}, DecodeList[Tool], onSuccess, onFailure)
}

// Get returns a single tool.
func (s ToolsService) Get(
	ctx context.Context,
	domain, token, toolID string,
	onSuccess func(Tool, *string),
	onFailure func(*StructuredError),
) {
	s.toolCall(ctx, domain, token, toolID, "", onSuccess, onFailure)
}

// SetEnabled enables or disables a tool and returns its new state.
func (s ToolsService) SetEnabled(
	ctx context.Context,
	domain, token, toolID string,
	enabled bool,
	onSuccess func(Tool, *string),
	onFailure func(*StructuredError),
) {
	action := "/disable"
	if enabled {
		action = "/enable"
	}
	s.toolCall(ctx, domain, token, toolID, action, onSuccess, onFailure)
}

func (s ToolsService) toolCall(
	ctx context.Context,
	domain, token, toolID, action string,
	onSuccess func(Tool, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		toolID = strings.TrimSpace(toolID)
		if toolID == "" {
			return Request{Verb: VerbGet}, errors.New("tool ID is required")
		}
		u, err := s.apiURL(domain, "she/function/"+url.PathEscape(toolID), action)
		return Request{Verb: VerbGet, URL: u, Headers: authHeaders(token)}, err
	}, DecodeObject[Tool], onSuccess, onFailure)
}
