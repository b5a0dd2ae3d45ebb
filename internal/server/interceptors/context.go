package interceptors

import (
	"context"

	identitydomain "biblio/backend/internal/identity/domain"
)

type contextKey struct{ name string }

var principalKey = contextKey{"principal"}

// WithPrincipal returns a context carrying the authenticated caller.
// Handlers and services read it via GetPrincipal, GetUserID, GetSessionID.
func WithPrincipal(ctx context.Context, p *identitydomain.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// GetPrincipal returns the authenticated caller and true if set; otherwise nil, false.
func GetPrincipal(ctx context.Context) (*identitydomain.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*identitydomain.Principal)
	return p, ok && p != nil
}

// GetUserID returns the caller's user id and true if authenticated; otherwise "", false.
func GetUserID(ctx context.Context) (string, bool) {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return "", false
	}
	return p.UserID, true
}

// GetSessionID returns the caller's session id and true if authenticated; otherwise "", false.
func GetSessionID(ctx context.Context) (string, bool) {
	p, ok := GetPrincipal(ctx)
	if !ok {
		return "", false
	}
	return p.SessionID, true
}
