package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"biblio/backend/internal/user/domain"
)

// PostgresRepository persists users in the users table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a user repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const userColumns = `id, email, name, phone, password_hash, roles, verified, deleted, must_reset_password, created_at, updated_at`

// GetByID returns the user for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

// GetByEmail returns the user for email, or nil if not found.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// GetByPhone returns the user for phone, or nil if not found.
func (r *PostgresRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

// Create persists the user. The user must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, u *domain.User) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, email, name, phone, password_hash, roles, verified, deleted, must_reset_password, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		u.ID, u.Email, u.Name, nullIfEmpty(u.Phone), u.PasswordHash, domain.JoinRoles(u.Roles),
		u.Verified, u.Deleted, u.MustResetPassword, u.CreatedAt, u.UpdatedAt,
	)
	return err
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, userID, passwordHash string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash = $2, updated_at = $3 WHERE id = $1`,
		userID, passwordHash, time.Now().UTC(),
	)
	return err
}

// SetMustResetPassword sets or clears the forced-reset flag.
func (r *PostgresRepository) SetMustResetPassword(ctx context.Context, userID string, mustReset bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET must_reset_password = $2, updated_at = $3 WHERE id = $1`,
		userID, mustReset, time.Now().UTC(),
	)
	return err
}

// SetVerified marks the account's mail address as confirmed (or not).
func (r *PostgresRepository) SetVerified(ctx context.Context, userID string, verified bool) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET verified = $2, updated_at = $3 WHERE id = $1`,
		userID, verified, time.Now().UTC(),
	)
	return err
}

// UpdateEmail replaces the account's mail address.
func (r *PostgresRepository) UpdateEmail(ctx context.Context, userID, email string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET email = $2, updated_at = $3 WHERE id = $1`,
		userID, email, time.Now().UTC(),
	)
	return err
}

// UpdatePhone replaces the account's phone number.
func (r *PostgresRepository) UpdatePhone(ctx context.Context, userID, phone string) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET phone = $2, updated_at = $3 WHERE id = $1`,
		userID, nullIfEmpty(phone), time.Now().UTC(),
	)
	return err
}

func scanUser(row *sql.Row) (*domain.User, error) {
	var u domain.User
	var phone sql.NullString
	var roles string
	err := row.Scan(&u.ID, &u.Email, &u.Name, &phone, &u.PasswordHash, &roles,
		&u.Verified, &u.Deleted, &u.MustResetPassword, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if phone.Valid {
		u.Phone = phone.String
	}
	u.Roles = domain.SplitRoles(roles)
	return &u, nil
}

func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
