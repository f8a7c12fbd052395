package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/hubofallthings/hat-cli/internal/debug"
)

// Decoder turns a successful response body into a domain value.
type Decoder[T any] func(Body) (T, error)

// call is the single path every service method takes: build the request,
// exchange it, then hand the Result to normalize on a second goroutine.
func call[T any](
	ctx context.Context,
	c *Client,
	build func() (Request, error),
	decode Decoder[T],
	onSuccess func(T, *string),
	onFailure func(*StructuredError),
) {
	deliver(ctx, c, c.delivery(), build, decode, onSuccess, onFailure)
}

func deliver[T any](
	ctx context.Context,
	x Exchanger,
	d delivery,
	build func() (Request, error),
	decode Decoder[T],
	onSuccess func(T, *string),
	onFailure func(*StructuredError),
) {
	req, err := build()
	if err != nil {
		failed := make(chan Result, 1)
		failed <- Failure{Cause: &RequestError{Method: req.Verb.method(), URL: req.URL, Err: err}}
		close(failed)
		go normalize(ctx, d, req, failed, decode, onSuccess, onFailure)
		return
	}
	go normalize(ctx, d, req, x.Exchange(ctx, req), decode, onSuccess, onFailure)
}

// normalize consumes the one Result of an exchange and invokes at most one
// callback through the dispatcher.
func normalize[T any](
	ctx context.Context,
	d delivery,
	req Request,
	results <-chan Result,
	decode Decoder[T],
	onSuccess func(T, *string),
	onFailure func(*StructuredError),
) {
	fail := func(se *StructuredError) {
		if onFailure != nil {
			d.dispatcher.Dispatch(func() { onFailure(se) })
		}
	}
	canceled := func(err error) {
		fail(StructuredErrorFromResult(Failure{
			Cause: &TransportError{Method: req.Verb.method(), URL: req.URL, Err: err},
		}))
	}

	var r Result
	select {
	case res, ok := <-results:
		if !ok {
			canceled(errors.New("exchange ended without a result"))
			return
		}
		r = res
	case <-ctx.Done():
		canceled(ctx.Err())
		return
	}

	switch r := r.(type) {
	case Failure:
		fail(StructuredErrorFromResult(r))

	case Success:
		if r.StatusCode == 401 {
			if d.mode == DeliverCompat {
				if debug.IsEnabled(ctx) {
					slog.Debug("dropping accepted 401 response", "url", req.URL)
				}
				return
			}
			fail(unauthorizedError(r))
			return
		}
		if r.Body == nil && d.mode == DeliverCompat {
			if debug.IsEnabled(ctx) {
				slog.Debug("dropping response without body", "url", req.URL, "status", r.StatusCode)
			}
			return
		}
		if err := ctx.Err(); err != nil {
			canceled(err)
			return
		}

		value, err := safeDecode(decode, r.Body)
		if err != nil {
			se := StructuredErrorFromError(err)
			se.Status = r.StatusCode
			fail(se)
			return
		}
		if err := ctx.Err(); err != nil {
			canceled(err)
			return
		}
		if onSuccess != nil {
			token := r.Token
			d.dispatcher.Dispatch(func() { onSuccess(value, token) })
		}

	default:
		canceled(fmt.Errorf("unknown result type %T", r))
	}
}

// safeDecode keeps a misbehaving decoder from crashing the process; a panic
// becomes a ParseError like any other shape mismatch.
func safeDecode[T any](decode Decoder[T], body Body) (value T, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			var zero T
			value = zero
			err = &ParseError{Target: typeName[T](), Index: -1, Err: fmt.Errorf("decoder panic: %v", rec)}
		}
	}()
	return decode(body)
}
