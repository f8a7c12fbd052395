package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/hubofallthings/hat-cli/internal/api"
)

// errNoResult means the call ended without either callback firing, which
// happens under compat delivery for accepted 401s and empty bodies.
var errNoResult = errors.New("no result delivered")

// sdkCall adapts one api service method: it starts the call on ctx with the
// two callbacks.
type sdkCall[T any] func(ctx context.Context, onSuccess func(T, *string), onFailure func(*api.StructuredError))

// await runs one SDK call and blocks until a callback fires or ctx ends.
func await[T any](ctx context.Context, call sdkCall[T]) (T, *string, error) {
	type outcome struct {
		value T
		token *string
		err   error
	}
	// At most one callback fires, so one slot never blocks the SDK.
	done := make(chan outcome, 1)
	call(ctx,
		func(v T, token *string) { done <- outcome{value: v, token: token} },
		func(se *api.StructuredError) { done <- outcome{err: se} },
	)

	select {
	case o := <-done:
		return o.value, o.token, o.err
	case <-ctx.Done():
		// A late callback may already be queued; prefer it.
		select {
		case o := <-done:
			return o.value, o.token, o.err
		default:
		}
		var zero T
		return zero, nil, fmt.Errorf("%w: %w", errNoResult, ctx.Err())
	}
}

// do runs a call on the session under its call timeout and keeps any rotated
// token.
func do[T any](ctx context.Context, s *session, call sdkCall[T]) (T, error) {
	ctx, cancel := s.context(ctx)
	defer cancel()
	value, token, err := await(ctx, call)
	s.rotate(token)
	return value, err
}
