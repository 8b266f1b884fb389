package audit

import "context"

type contextKey struct{}

// ClientInfo identifies the caller behind a request.
type ClientInfo struct {
	RequestID string
	ClientIP  string
}

// WithClient returns a copy of ctx carrying info.
func WithClient(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, contextKey{}, info)
}

// ClientFromContext returns the caller stored by WithClient, or the zero value.
func ClientFromContext(ctx context.Context) ClientInfo {
	if ctx == nil {
		return ClientInfo{}
	}
	info, _ := ctx.Value(contextKey{}).(ClientInfo)
	return info
}
