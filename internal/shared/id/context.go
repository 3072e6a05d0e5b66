package id

import "context"

type requestIDKey struct{}

// WithRequestID stores id on ctx
func WithRequestID(ctx context.Context, id RequestID) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom returns the request ID on ctx, if any
func RequestIDFrom(ctx context.Context) (RequestID, bool) {
	id, ok := ctx.Value(requestIDKey{}).(RequestID)
	return id, ok && id != ""
}

// EnsureRequestID returns ctx carrying a request ID, generating one when
// ctx has none
func EnsureRequestID(ctx context.Context) (context.Context, RequestID) {
	if id, ok := RequestIDFrom(ctx); ok {
		return ctx, id
	}
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}
