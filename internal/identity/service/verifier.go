package service

import (
	"context"
	"time"

	identitydomain "biblio/backend/internal/identity/domain"
	"biblio/backend/internal/security"
	"biblio/backend/internal/session"
	userrepo "biblio/backend/internal/user/repository"
)

// Verifier resolves a bearer access token to a Principal. It is the single
// authentication path for protected requests: codec verification, then the
// session registry, then current account status. It performs no writes.
type Verifier struct {
	tokens   *security.TokenProvider
	registry *session.Registry
	users    userrepo.Repository
}

// NewVerifier returns a Verifier over the given token provider, session
// registry, and user directory.
func NewVerifier(tokens *security.TokenProvider, registry *session.Registry, users userrepo.Repository) *Verifier {
	return &Verifier{tokens: tokens, registry: registry, users: users}
}

// Authenticate verifies the access token and returns the caller's Principal.
// Roles come from the user record, not the token's scope claim, so role
// changes apply to requests already holding a valid token. Fails with the
// security codec sentinels, ErrSessionNotFound/ErrSessionRevoked for registry
// misses, or the account-status sentinels for deleted, unverified, or
// reset-pending accounts.
func (v *Verifier) Authenticate(ctx context.Context, token string) (*identitydomain.Principal, error) {
	claims, err := v.tokens.Verify(token, false)
	if err != nil {
		return nil, err
	}
	if claims.Type() != security.TypeAccess {
		return nil, security.ErrInvalidTokenType
	}
	sess, err := v.registry.Get(ctx, claims.SessionID())
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, ErrSessionNotFound
	}
	if !sess.Live(time.Now().UTC()) {
		return nil, ErrSessionRevoked
	}
	user, err := v.users.GetByID(ctx, claims.Subject)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Deleted {
		return nil, ErrAccountDeleted
	}
	if !user.Verified {
		return nil, ErrAccountUnverified
	}
	if user.MustResetPassword {
		return nil, ErrMustResetPassword
	}
	return &identitydomain.Principal{
		UserID:    user.ID,
		Email:     user.Email,
		SessionID: claims.SessionID(),
		Roles:     user.Roles,
	}, nil
}
