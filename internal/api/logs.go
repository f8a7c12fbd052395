package api

import (
	"context"
	"strings"

	"github.com/hubofallthings/hat-cli/internal/validation"
)

// Log sends one client log entry to the HAT.
func (s LogService) Log(
	ctx context.Context,
	domain, token string,
	entry LogEntry,
	onSuccess func(Ack, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		entry.ActionCode = strings.TrimSpace(entry.ActionCode)
		if err := validate.Struct(entry); err != nil {
			return Request{Verb: VerbPost}, err
		}
		if entry.Message != nil {
			if err := validation.ValidateMessageContent(*entry.Message); err != nil {
				return Request{Verb: VerbPost}, err
			}
		}
		body, err := marshalBody(entry)
		if err != nil {
			return Request{Verb: VerbPost}, err
		}
		u, err := s.apiURL(domain, "log", "")
		return Request{
			Verb:        VerbPost,
			URL:         u,
			Body:        body,
			ContentType: "application/json",
			Headers:     authHeaders(token),
		}, err
	}, DecodeAck, onSuccess, onFailure)
}
