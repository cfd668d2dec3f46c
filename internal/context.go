package internal

import "context"

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	RequestIDKey      contextKey = "request_id"
	RequestContextKey contextKey = "mem0_request_context"
)

// Well-known request context keys
const (
	KeyUserID   = "user_id"
	KeyAgentID  = "agent_id"
	KeyRunID    = "run_id"
	KeyInfer    = "infer"
	KeyEndpoint = "endpoint"
)

// RequestContext holds correlation metadata for one logical request
type RequestContext map[string]any

// Token remembers the context that was active before SetRequestContext
type Token struct {
	parent context.Context
}

// GetRequestID retrieves the request ID from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return "unknown"
	}
	if id, ok := ctx.Value(RequestIDKey).(string); ok {
		return id
	}
	return "unknown"
}

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDKey, requestID)
}

// WithRequestContext attaches rc to ctx. The parent keeps its own value.
func WithRequestContext(ctx context.Context, rc RequestContext) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, RequestContextKey, rc)
}

// SetRequestContext installs rc for the current request and returns a token
// that restores the previously active value.
func SetRequestContext(ctx context.Context, rc RequestContext) (context.Context, Token) {
	if ctx == nil {
		ctx = context.Background()
	}
	return WithRequestContext(ctx, rc), Token{parent: ctx}
}

// ResetRequestContext returns the context that was active before the
// SetRequestContext call that produced token.
func ResetRequestContext(token Token) context.Context {
	if token.parent == nil {
		return context.Background()
	}
	return token.parent
}

// GetRequestContext returns the active request context, or def when none is set
func GetRequestContext(ctx context.Context, def RequestContext) RequestContext {
	if ctx == nil {
		return def
	}
	if rc, ok := ctx.Value(RequestContextKey).(RequestContext); ok && rc != nil {
		return rc
	}
	return def
}
