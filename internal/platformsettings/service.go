// Package platformsettings manages platform-wide operational state, currently
// the maintenance switch.
package platformsettings

import (
	"context"
	"strconv"

	"biblio/backend/internal/audit"
	"biblio/backend/internal/platform/rbac"
	"biblio/backend/internal/platformsettings/domain"
	"biblio/backend/internal/platformsettings/repository"
)

// Service exposes maintenance state to administrators.
type Service struct {
	repo  repository.Repository
	audit audit.AuditLogger
}

// NewService returns a Service over the given repository.
// auditLogger may be nil; audit events are then skipped.
func NewService(repo repository.Repository, auditLogger audit.AuditLogger) *Service {
	return &Service{repo: repo, audit: auditLogger}
}

// Get returns the current maintenance state. Readable by any caller; the
// state is also what the maintenance gate advertises to rejected requests.
func (s *Service) Get(ctx context.Context) (*domain.MaintenanceSettings, error) {
	return s.repo.GetMaintenanceSettings(ctx)
}

// SetMaintenanceMode flips the maintenance switch. Admin only.
func (s *Service) SetMaintenanceMode(ctx context.Context, enabled bool, notice string) error {
	p, err := rbac.RequireAdmin(ctx)
	if err != nil {
		return err
	}
	if err := s.repo.SetSetting(ctx, "maintenance_mode", strconv.FormatBool(enabled)); err != nil {
		return err
	}
	if err := s.repo.SetSetting(ctx, "maintenance_notice", notice); err != nil {
		return err
	}
	if s.audit != nil {
		action := "maintenance_disabled"
		if enabled {
			action = "maintenance_enabled"
		}
		s.audit.LogEvent(ctx, p.UserID, action, "platform", notice)
	}
	return nil
}
