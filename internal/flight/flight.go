// Package flight tracks the identity of each in-flight storefront request.
//
// Every request carries a Token in its context: the view that initiated it
// and a request id. A result that arrives after the initiating request is
// done (client gone, view navigated away) is discarded rather than written
// to a stale view. This replaces any process-wide "request in progress"
// flag: tokens are per request, so concurrent requests never block or
// clobber each other.
package flight

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Views that initiate requests.
const (
	ViewOrderStatus  = "order_status"
	ViewCancellation = "cancellation"
	ViewTracking     = "tracking"
	ViewReturns      = "returns"
	ViewWebhook      = "webhook"
)

// ErrAbandoned reports a result discarded because its request was already done.
var ErrAbandoned = errors.New("flight abandoned")

// Token identifies one in-flight request.
type Token struct {
	ID   string
	View string
}

// New returns a token with a fresh random id.
func New(view string) Token {
	return Token{ID: uuid.NewString(), View: view}
}

// contextKey is the type for context values to avoid collisions
type contextKey string

const tokenKey contextKey = "storefront.flight"

// WithToken returns a context carrying t.
func WithToken(ctx context.Context, t Token) context.Context {
	return context.WithValue(ctx, tokenKey, t)
}

// FromContext returns the token stored in ctx, if any.
func FromContext(ctx context.Context) (Token, bool) {
	t, ok := ctx.Value(tokenKey).(Token)
	return t, ok
}

// Deliver passes v and err through unless ctx is already done,
// in which case the result is dropped and ErrAbandoned returned.
func Deliver[T any](ctx context.Context, v T, err error) (T, error) {
	if ctx.Err() != nil {
		var zero T
		return zero, ErrAbandoned
	}
	return v, err
}

// Run executes fn and returns its result, or ErrAbandoned as soon as ctx is
// done. fn receives ctx and should stop its own work on cancellation; a late
// result is dropped.
func Run[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)

	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()

	select {
	case <-ctx.Done():
		var zero T
		return zero, ErrAbandoned
	case r := <-ch:
		return Deliver(ctx, r.v, r.err)
	}
}
