package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/akarpov87/predictgate/internal/errs"
	"github.com/akarpov87/predictgate/internal/model"
	"github.com/gofrs/uuid/v5"
	"github.com/jackc/pgx/v5"
)

// CredentialRepo implements CredentialRepository using PostgreSQL.
type CredentialRepo struct{ db *DB }

// NewCredentialRepo constructs a credential repository.
func NewCredentialRepo(db *DB) *CredentialRepo { return &CredentialRepo{db: db} }

// Create inserts a new credential row and fills in the server-side
// timestamp, so callers report the exact stored creation time.
func (r *CredentialRepo) Create(ctx context.Context, c *model.Credential) error {
	const q = `
INSERT INTO credentials (id, name, description, key_prefix, key_hash, salt, revoked)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at`
	row := r.db.Pool.QueryRow(ctx, q, c.ID, c.Name, c.Description, c.KeyPrefix, c.KeyHash, c.Salt, c.Revoked)
	if err := row.Scan(&c.CreatedAt); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return nil
}

// GetByID selects a credential by ID.
func (r *CredentialRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.Credential, error) {
	const q = `
SELECT id, name, description, key_prefix, key_hash, salt, revoked, created_at
FROM credentials WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var c model.Credential
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.KeyPrefix, &c.KeyHash, &c.Salt, &c.Revoked, &c.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return &c, nil
}

// FindByPrefix selects non-revoked candidates sharing a key prefix.
func (r *CredentialRepo) FindByPrefix(ctx context.Context, prefix string) ([]model.Credential, error) {
	const q = `
SELECT id, name, description, key_prefix, key_hash, salt, revoked, created_at
FROM credentials WHERE key_prefix=$1 AND NOT revoked`
	rows, err := r.db.Pool.Query(ctx, q, prefix)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	defer rows.Close()

	var out []model.Credential
	for rows.Next() {
		var c model.Credential
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.KeyPrefix, &c.KeyHash, &c.Salt, &c.Revoked, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return out, nil
}

// List selects credentials newest first with limit/offset.
func (r *CredentialRepo) List(ctx context.Context, limit, offset int) ([]model.Credential, error) {
	const q = `
SELECT id, name, description, key_prefix, key_hash, salt, revoked, created_at
FROM credentials ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`
	rows, err := r.db.Pool.Query(ctx, q, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	defer rows.Close()

	var out []model.Credential
	for rows.Next() {
		var c model.Credential
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.KeyPrefix, &c.KeyHash, &c.Salt, &c.Revoked, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return out, nil
}

// Revoke soft-revokes a credential. Revoking twice is not an error.
func (r *CredentialRepo) Revoke(ctx context.Context, id uuid.UUID) error {
	const q = `UPDATE credentials SET revoked=TRUE WHERE id=$1`
	tag, err := r.db.Pool.Exec(ctx, q, id)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
