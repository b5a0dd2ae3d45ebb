// Package session tracks every issued token session so that signed tokens can
// be revoked server-side before their stated expiry.
package session

import (
	"context"
	"errors"
	"time"

	"biblio/backend/internal/session/domain"
	"biblio/backend/internal/session/repository"
)

// ErrSessionExists is returned by Open when the session id is already
// registered. Session ids carry enough entropy that this indicates a caller
// bug, never something to retry silently.
var ErrSessionExists = errors.New("session id already registered")

// Registry is the write/read surface over session storage. No other component
// touches the sessions table directly.
type Registry struct {
	repo repository.Repository
	nowF func() time.Time
}

// NewRegistry returns a Registry over the given repository.
func NewRegistry(repo repository.Repository) *Registry {
	return &Registry{repo: repo, nowF: func() time.Time { return time.Now().UTC() }}
}

// Open registers an enabled session atomically with token issuance.
// Fails with ErrSessionExists on a duplicate id.
func (r *Registry) Open(ctx context.Context, sessionID, userID string, expiresAt time.Time) error {
	s := &domain.Session{
		ID:        sessionID,
		UserID:    userID,
		Enabled:   true,
		ExpiresAt: expiresAt,
		CreatedAt: r.nowF(),
	}
	if err := r.repo.Create(ctx, s); err != nil {
		if errors.Is(err, repository.ErrDuplicateID) {
			return ErrSessionExists
		}
		return err
	}
	return nil
}

// Close disables the session. Idempotent: closing a missing or already-closed
// session succeeds, so logout always succeeds from the caller's perspective.
func (r *Registry) Close(ctx context.Context, sessionID string) error {
	return r.repo.Disable(ctx, sessionID)
}

// CloseAllByUser disables every session of a user. Used for bulk revocation
// after a completed password reset.
func (r *Registry) CloseAllByUser(ctx context.Context, userID string) error {
	return r.repo.DisableAllByUser(ctx, userID)
}

// Get returns the session record, or nil when none exists.
func (r *Registry) Get(ctx context.Context, sessionID string) (*domain.Session, error) {
	return r.repo.GetByID(ctx, sessionID)
}

// IsLive reports whether the session exists, is enabled, and has not expired.
func (r *Registry) IsLive(ctx context.Context, sessionID string) (bool, error) {
	s, err := r.repo.GetByID(ctx, sessionID)
	if err != nil {
		return false, err
	}
	return s.Live(r.nowF()), nil
}

// SweepExpired deletes sessions whose expiry has passed. Expired rows are
// already dead for authentication; this only reclaims storage.
func (r *Registry) SweepExpired(ctx context.Context) (int64, error) {
	return r.repo.DeleteExpired(ctx, r.nowF())
}
