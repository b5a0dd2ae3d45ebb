package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"biblio/backend/internal/session/domain"
)

// ErrDuplicateID is returned by Create when the session id already exists.
var ErrDuplicateID = errors.New("session id already exists")

// PostgresRepository persists sessions in the sessions table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByID returns the session for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, enabled, expires_at, created_at FROM sessions WHERE id = $1`, id)
	var s domain.Session
	if err := row.Scan(&s.ID, &s.UserID, &s.Enabled, &s.ExpiresAt, &s.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts the session. The primary-key constraint makes the insert
// atomic; a duplicate id surfaces as ErrDuplicateID.
func (r *PostgresRepository) Create(ctx context.Context, s *domain.Session) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO sessions (id, user_id, enabled, expires_at, created_at) VALUES ($1, $2, $3, $4, $5)`,
		s.ID, s.UserID, s.Enabled, s.ExpiresAt, s.CreatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" { // unique_violation
			return ErrDuplicateID
		}
		return err
	}
	return nil
}

// Disable clears the enabled flag for id. Missing rows are not an error.
func (r *PostgresRepository) Disable(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET enabled = FALSE WHERE id = $1`, id)
	return err
}

// DisableAllByUser clears the enabled flag on every session of userID.
func (r *PostgresRepository) DisableAllByUser(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE sessions SET enabled = FALSE WHERE user_id = $1`, userID)
	return err
}

// DeleteExpired removes sessions whose expiry predates cutoff.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
