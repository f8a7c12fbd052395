package api

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hubofallthings/hat-cli/internal/validation"
)

// Register creates a file entry and returns its metadata, including the
// presigned content URL the bytes are uploaded to.
func (s FilesService) Register(
	ctx context.Context,
	domain, token string,
	meta FileMeta,
	onSuccess func(FileMeta, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		if strings.TrimSpace(meta.Name) == "" || strings.TrimSpace(meta.Source) == "" {
			return Request{Verb: VerbPost}, errors.New("file name and source are required")
		}
		body, err := marshalBody(meta)
		if err != nil {
			return Request{Verb: VerbPost}, err
		}
		u, err := s.apiURL(domain, "files/upload", "")
		return Request{
			Verb:        VerbPost,
			URL:         u,
			Body:        body,
			ContentType: "application/json",
			Headers:     authHeaders(token),
		}, err
	}, DecodeObject[FileMeta], onSuccess, onFailure)
}

// UploadContent sends file bytes to a content URL returned by Register. The
// URL is presigned, so no HAT token is attached.
func (s FilesService) UploadContent(
	ctx context.Context,
	contentURL, name string,
	content []byte,
	onSuccess func(Ack, *string),
	onFailure func(*StructuredError),
) {
	call(ctx, s.Client, func() (Request, error) {
		contentURL = strings.TrimSpace(contentURL)
		if contentURL == "" {
			return Request{Verb: VerbUpload}, errors.New("content URL is required")
		}
		if !s.skipDomainValidation {
			if err := validation.ValidateContentURL(contentURL); err != nil {
				return Request{Verb: VerbUpload, URL: contentURL}, fmt.Errorf("invalid content URL: %w", err)
			}
		}
		if err := validation.ValidateUploadSize(int64(len(content))); err != nil {
			return Request{Verb: VerbUpload, URL: contentURL}, err
		}
		return Request{Verb: VerbUpload, URL: contentURL, Body: content, UploadName: name}, nil
	}, DecodeAck, onSuccess, onFailure)
}
