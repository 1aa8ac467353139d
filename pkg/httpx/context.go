package httpx

import "context"

type ctxKey string

const (
	CtxKeySessionID ctxKey = "session_id"
)

// WithSessionID records the console session id for downstream middleware
// such as the per-session rate limiter.
func WithSessionID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, CtxKeySessionID, id)
}

// SessionIDFromContext returns the session id or "" when the request is anonymous.
func SessionIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(CtxKeySessionID).(string); ok {
		return v
	}
	return ""
}
