package repository

import (
	"context"

	"biblio/backend/internal/user/domain"
)

// Repository is the user-directory contract consumed by the credential core.
// CRUD beyond what authentication needs (profiles, borrowing limits, search)
// lives in the collaborating user service.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
	// SetMustResetPassword sets or clears the forced-reset flag.
	SetMustResetPassword(ctx context.Context, userID string, mustReset bool) error
	// SetVerified marks the account's mail address as confirmed (or not).
	SetVerified(ctx context.Context, userID string, verified bool) error
	// UpdateEmail replaces the account's mail address after an OTP-confirmed change.
	UpdateEmail(ctx context.Context, userID, email string) error
	// UpdatePhone replaces the account's phone number after an OTP-confirmed change.
	UpdatePhone(ctx context.Context, userID, phone string) error
}
