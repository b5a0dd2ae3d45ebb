// Package otp issues and verifies short-lived one-time codes scoped by
// (contact, purpose). Codes gate sensitive account-state transitions:
// registration verification, password reset, and contact changes.
package otp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"biblio/backend/internal/otp/domain"
	"biblio/backend/internal/otp/repository"
	"biblio/backend/internal/security"
)

var (
	// ErrCodeNotFound is returned by Verify when no code exists for (contact, purpose).
	ErrCodeNotFound = errors.New("no code for contact and purpose")
	// ErrCodeExpired is returned by Verify when the code exists but its TTL has passed.
	ErrCodeExpired = errors.New("code expired")
)

// Store is the only surface over one-time code storage.
type Store struct {
	repo   repository.Repository
	digits int
	ttl    time.Duration
	nowF   func() time.Time
}

// NewStore returns a Store issuing codes of the given digit count that expire
// after ttl.
func NewStore(repo repository.Repository, digits int, ttl time.Duration) *Store {
	return &Store{
		repo:   repo,
		digits: digits,
		ttl:    ttl,
		nowF:   func() time.Time { return time.Now().UTC() },
	}
}

// Issue generates a fresh code for (contact, purpose), superseding any live
// code for the same pair, and returns the plain code for out-of-band delivery.
// Only the code's hash is persisted.
func (s *Store) Issue(ctx context.Context, contact string, purpose domain.Purpose) (string, error) {
	if contact == "" {
		return "", errors.New("contact is required")
	}
	if !purpose.Valid() {
		return "", fmt.Errorf("unknown code purpose %q", purpose)
	}
	code, err := security.RandomCode(s.digits)
	if err != nil {
		return "", err
	}
	now := s.nowF()
	rec := &domain.Code{
		Contact:   contact,
		Purpose:   purpose,
		CodeHash:  security.HashCode(code),
		ExpiresAt: now.Add(s.ttl),
		CreatedAt: now,
	}
	if err := s.repo.Replace(ctx, rec); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks candidate against the stored code for (contact, purpose).
//
// Returns ErrCodeNotFound when no record exists, ErrCodeExpired (removing the
// stale record) when the TTL has passed, true after consuming the record on an
// exact match, and false without consuming on a mismatch so the caller may
// retry within the TTL.
func (s *Store) Verify(ctx context.Context, contact string, purpose domain.Purpose, candidate string) (bool, error) {
	rec, err := s.repo.Get(ctx, contact, purpose)
	if err != nil {
		return false, err
	}
	if rec == nil {
		return false, ErrCodeNotFound
	}
	if rec.Expired(s.nowF()) {
		if err := s.repo.Delete(ctx, contact, purpose); err != nil {
			return false, err
		}
		return false, ErrCodeExpired
	}
	if !security.CodeHashEqual(candidate, rec.CodeHash) {
		return false, nil
	}
	consumed, err := s.repo.Consume(ctx, contact, purpose, rec.CodeHash)
	if err != nil {
		return false, err
	}
	if !consumed {
		// Lost the race: another verify consumed it, or a fresh issue
		// superseded it between our read and the delete.
		return false, ErrCodeNotFound
	}
	return true, nil
}

// SweepExpired deletes codes whose expiry has passed.
func (s *Store) SweepExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.nowF())
}
