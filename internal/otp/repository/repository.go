package repository

import (
	"context"
	"time"

	"biblio/backend/internal/otp/domain"
)

// Repository defines persistence for one-time codes.
type Repository interface {
	Get(ctx context.Context, contact string, purpose domain.Purpose) (*domain.Code, error)
	// Replace atomically supersedes any live code for (contact, purpose) with c.
	// The (contact, purpose) uniqueness constraint makes concurrent issues
	// linearizable: exactly one code survives.
	Replace(ctx context.Context, c *domain.Code) error
	// Delete removes the code for (contact, purpose). Missing rows are not an error.
	Delete(ctx context.Context, contact string, purpose domain.Purpose) error
	// Consume removes the code for (contact, purpose) only if its stored hash
	// still equals codeHash, reporting whether a row was removed. The
	// conditional delete is the single-use point: of N concurrent matches
	// exactly one consumes the row.
	Consume(ctx context.Context, contact string, purpose domain.Purpose, codeHash string) (bool, error)
	// DeleteExpired removes codes whose expiry predates cutoff and returns how many were removed.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
