package testutil

import (
	"context"
	"net/http"
	"time"

	"veilcredit/pkg/requestcontext"
)

// WithCaller stamps a caller identity on the request context, simulating what
// the auth middleware does for authenticated requests.
func WithCaller(req *http.Request, caller string) *http.Request {
	return req.WithContext(requestcontext.WithCaller(req.Context(), caller))
}

// WithRequestTime pins the request time so transition timestamps are
// deterministic in tests.
func WithRequestTime(req *http.Request, now time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), now))
}

// Context returns a background context carrying a caller and a fixed time.
func Context(caller string, now time.Time) context.Context {
	ctx := requestcontext.WithCaller(context.Background(), caller)
	return requestcontext.WithTime(ctx, now)
}
