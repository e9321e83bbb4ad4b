package tracker

import "context"

type contextKey struct{}

// WithTracker returns a copy of ctx carrying t.
func WithTracker(ctx context.Context, t *Tracker) context.Context {
	return context.WithValue(ctx, contextKey{}, t)
}

// FromContext returns the Tracker carried by ctx, if any.
func FromContext(ctx context.Context) (*Tracker, bool) {
	t, ok := ctx.Value(contextKey{}).(*Tracker)
	return t, ok && t != nil
}
