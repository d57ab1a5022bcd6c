package middleware

import (
	"context"

	"github.com/garrisonhq/garrison-backend/internal/authz"
)

type contextKey string

const (
	ctxPrincipal contextKey = "principal"
	ctxAccessID  contextKey = "access_id"
)

// PrincipalFromContext returns the authenticated caller seeded by Auth.
func PrincipalFromContext(ctx context.Context) (authz.Principal, bool) {
	if ctx == nil {
		return authz.Principal{}, false
	}
	p, ok := ctx.Value(ctxPrincipal).(authz.Principal)
	return p, ok
}

// AccessIDFromContext returns the jti of the presented access token.
func AccessIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxAccessID).(string); ok {
		return v
	}
	return ""
}

// WithPrincipal injects the caller into the context. Exposed for handler tests.
func WithPrincipal(ctx context.Context, p authz.Principal) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxPrincipal, p)
}

// WithAccessID injects the access token id into the context.
func WithAccessID(ctx context.Context, accessID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxAccessID, accessID)
}
