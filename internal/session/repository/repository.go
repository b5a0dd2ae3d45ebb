package repository

import (
	"context"
	"time"

	"biblio/backend/internal/session/domain"
)

// Repository defines persistence for sessions.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	// Create inserts the session; the insert must be atomic so a duplicate id
	// fails instead of silently overwriting.
	Create(ctx context.Context, s *domain.Session) error
	// Disable clears the enabled flag. Disabling a missing or already-disabled
	// session is not an error.
	Disable(ctx context.Context, id string) error
	// DisableAllByUser clears the enabled flag on every session of a user.
	DisableAllByUser(ctx context.Context, userID string) error
	// DeleteExpired removes rows whose expiry predates cutoff and returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
