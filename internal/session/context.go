package session

import "context"

type visitorContextKey struct{}

// WithVisitor stores the request's visitor on the context.
func WithVisitor(ctx context.Context, v *Visitor) context.Context {
	return context.WithValue(ctx, visitorContextKey{}, v)
}

// VisitorFromContext returns the visitor set by the bootstrap middleware.
func VisitorFromContext(ctx context.Context) (*Visitor, bool) {
	v, ok := ctx.Value(visitorContextKey{}).(*Visitor)
	return v, ok && v != nil
}
