package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"biblio/backend/internal/otp/domain"
)

// PostgresRepository persists one-time codes in the otp_codes table.
type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a one-time code repository that uses the given db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Get returns the code for (contact, purpose), or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) Get(ctx context.Context, contact string, purpose domain.Purpose) (*domain.Code, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT contact, purpose, code_hash, expires_at, created_at FROM otp_codes WHERE contact = $1 AND purpose = $2`,
		contact, string(purpose))
	var c domain.Code
	var p string
	if err := row.Scan(&c.Contact, &p, &c.CodeHash, &c.ExpiresAt, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	c.Purpose = domain.Purpose(p)
	return &c, nil
}

// Replace upserts the code for (contact, purpose) in one statement. The
// composite primary key guarantees at most one live code per pair even under
// concurrent issues.
func (r *PostgresRepository) Replace(ctx context.Context, c *domain.Code) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO otp_codes (contact, purpose, code_hash, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (contact, purpose)
		DO UPDATE SET code_hash = EXCLUDED.code_hash, expires_at = EXCLUDED.expires_at, created_at = EXCLUDED.created_at`,
		c.Contact, string(c.Purpose), c.CodeHash, c.ExpiresAt, c.CreatedAt,
	)
	return err
}

// Delete removes the code for (contact, purpose). Missing rows are not an error.
func (r *PostgresRepository) Delete(ctx context.Context, contact string, purpose domain.Purpose) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM otp_codes WHERE contact = $1 AND purpose = $2`, contact, string(purpose))
	return err
}

// Consume removes the code for (contact, purpose) if its hash still matches,
// reporting whether this call removed the row. The hash condition makes the
// delete the linearization point for single use: a concurrent consume or a
// superseding Replace leaves nothing for this statement to match.
func (r *PostgresRepository) Consume(ctx context.Context, contact string, purpose domain.Purpose, codeHash string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM otp_codes WHERE contact = $1 AND purpose = $2 AND code_hash = $3`,
		contact, string(purpose), codeHash)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteExpired removes codes whose expiry predates cutoff.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM otp_codes WHERE expires_at < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
