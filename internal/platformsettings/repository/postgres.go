package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"biblio/backend/internal/platformsettings/domain"
)

// PostgresRepository reads and writes the platform_settings table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a platform settings repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetMaintenanceSettings returns the platform maintenance state from DB, or defaults.
func (r *PostgresRepository) GetMaintenanceSettings(ctx context.Context) (*domain.MaintenanceSettings, error) {
	out := &domain.MaintenanceSettings{}
	mode, err := r.getSetting(ctx, "maintenance_mode")
	if err != nil {
		return nil, err
	}
	if v, err := parseBool(mode); err == nil {
		out.MaintenanceMode = v
	}
	notice, err := r.getSetting(ctx, "maintenance_notice")
	if err != nil {
		return nil, err
	}
	out.Notice = notice
	return out, nil
}

// SetSetting upserts one settings key.
func (r *PostgresRepository) SetSetting(ctx context.Context, key, value string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO platform_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

// getSetting returns the value for key, or "" when the key is missing.
func (r *PostgresRepository) getSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := r.db.QueryRowContext(ctx,
		`SELECT value FROM platform_settings WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "1":
		return true, nil
	case "false", "0", "":
		return false, nil
	default:
		return false, strconv.ErrSyntax
	}
}
