package repository

import (
	"context"
	"time"

	"biblio/backend/internal/audit/domain"
)

// Repository defines persistence for audit logs.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.AuditLog, error)
	ListByUser(ctx context.Context, userID string, limit, offset int32) ([]*domain.AuditLog, error)
	Create(ctx context.Context, a *domain.AuditLog) error
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
