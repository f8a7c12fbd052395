package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hubofallthings/hat-cli/internal/api"
	"github.com/hubofallthings/hat-cli/internal/config"
	"github.com/hubofallthings/hat-cli/internal/resolve"
)

// HandleError processes an error and returns a user-friendly message with suggestions
func HandleError(err error) string {
	if err == nil {
		return ""
	}

	var msg strings.Builder

	var structured *api.StructuredError
	var ambiguous *resolve.AmbiguousError

	switch {
	case errors.Is(err, config.ErrNotConfigured):
		msg.WriteString("No HAT credentials configured.\n\n")
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - Run: hat auth login --domain YOUR.hubofallthings.net --username YOU\n")
		msg.WriteString("  - Or set HAT_DOMAIN and HAT_TOKEN\n")

	case errors.Is(err, errNoResult):
		fmt.Fprintf(&msg, "Error: %s\n\n", err.Error())
		msg.WriteString("Suggestions:\n")
		msg.WriteString("  - The HAT answered with 401 or an empty body, which compat delivery drops\n")
		msg.WriteString("  - Retry without --compat-delivery to see the failure\n")

	case errors.As(err, &ambiguous):
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())

	case errors.As(err, &structured):
		msg.WriteString(describeStructured(structured))

	default:
		fmt.Fprintf(&msg, "Error: %s\n", err.Error())
	}

	return msg.String()
}

func describeStructured(se *api.StructuredError) string {
	var msg strings.Builder
	switch se.Kind {
	case api.KindHTTP, api.KindUnauthorized:
		body := strings.TrimSpace(se.Message)
		if body == "" {
			body = strings.ToLower(strings.ReplaceAll(string(se.Code), "_", " "))
		}
		fmt.Fprintf(&msg, "HAT error (HTTP %d): %s\n\n", se.Status, body)
		msg.WriteString(suggestionsForStatusCode(se.Status))
		var httpErr *api.HTTPError
		if errors.As(se, &httpErr) && httpErr.RequestID != "" {
			fmt.Fprintf(&msg, "\nRequest ID: %s\n", httpErr.RequestID)
		}
	case api.KindParse:
		fmt.Fprintf(&msg, "Unexpected response: %s\n", se.Message)
		if se.Suggestion != "" {
			fmt.Fprintf(&msg, "\nSuggestions:\n  - %s\n", se.Suggestion)
		}
	default:
		text := se.Message
		if text == "" {
			text = se.Error()
		}
		lower := strings.ToLower(text)
		switch {
		case strings.Contains(lower, "connection refused"):
			msg.WriteString("Connection refused.\n\n")
			msg.WriteString("Suggestions:\n")
			msg.WriteString("  - Check that the HAT is running\n")
			msg.WriteString("  - Verify the domain: hat auth status\n")
		case strings.Contains(lower, "no such host"):
			msg.WriteString("DNS resolution failed.\n\n")
			msg.WriteString("Suggestions:\n")
			msg.WriteString("  - Check the HAT domain spelling\n")
			msg.WriteString("  - Verify your DNS settings\n")
		case strings.Contains(lower, "certificate"):
			msg.WriteString("TLS certificate error.\n\n")
			msg.WriteString("Suggestions:\n")
			msg.WriteString("  - Verify the HAT's TLS certificate\n")
		default:
			fmt.Fprintf(&msg, "Error: %s\n", text)
			if se.Suggestion != "" {
				fmt.Fprintf(&msg, "\nSuggestions:\n  - %s\n", se.Suggestion)
			}
		}
	}
	return msg.String()
}

func suggestionsForStatusCode(code int) string {
	var suggestions strings.Builder
	suggestions.WriteString("Suggestions:\n")

	switch code {
	case 400:
		suggestions.WriteString("  - Check your request parameters\n")
		suggestions.WriteString("  - Use --debug to see the full request\n")

	case 401:
		suggestions.WriteString("  - Your token may be invalid or expired\n")
		suggestions.WriteString("  - Run: hat auth login\n")

	case 403:
		suggestions.WriteString("  - The token lacks permission for this resource\n")
		suggestions.WriteString("  - Owner tokens are required for data and tool management\n")

	case 404:
		suggestions.WriteString("  - The resource doesn't exist\n")
		suggestions.WriteString("  - Check the namespace, endpoint or ID\n")

	case 429:
		suggestions.WriteString("  - Too many requests\n")
		suggestions.WriteString("  - Wait and retry in a few seconds\n")

	case 500, 502, 503, 504:
		suggestions.WriteString("  - Server error - not your fault\n")
		suggestions.WriteString("  - Wait and retry\n")

	default:
		suggestions.WriteString("  - Use --debug for more details\n")
	}

	return suggestions.String()
}
