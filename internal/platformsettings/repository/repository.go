package repository

import (
	"context"

	"biblio/backend/internal/platformsettings/domain"
)

// Repository defines access to platform settings.
type Repository interface {
	// GetMaintenanceSettings returns the platform maintenance state.
	// Uses defaults when keys are missing (maintenance off, empty notice).
	GetMaintenanceSettings(ctx context.Context) (*domain.MaintenanceSettings, error)
	// SetSetting upserts one settings key.
	SetSetting(ctx context.Context, key, value string) error
}
