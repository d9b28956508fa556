// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/akarpov87/predictgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// CredentialRepository provides access to long-lived API key records.
// Plaintext keys never reach this layer; rows hold hashes only.
type CredentialRepository interface {
	// Create inserts a new credential row.
	Create(ctx context.Context, c *model.Credential) error
	// GetByID loads a credential by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.Credential, error)
	// FindByPrefix returns non-revoked candidates sharing a key prefix.
	FindByPrefix(ctx context.Context, prefix string) ([]model.Credential, error)
	// List returns credentials ordered by creation time, newest first.
	List(ctx context.Context, limit, offset int) ([]model.Credential, error)
	// Revoke soft-revokes a credential; the row is kept for auditability.
	Revoke(ctx context.Context, id uuid.UUID) error
}
