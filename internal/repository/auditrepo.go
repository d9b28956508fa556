package repository

import (
	"context"

	"github.com/akarpov87/predictgate/internal/model"
	"github.com/gofrs/uuid/v5"
)

// AuditRepository provides append-only access to the prediction audit trail.
// Records are immutable once written; there is no update or delete.
type AuditRepository interface {
	// Create appends one audit record.
	Create(ctx context.Context, rec *model.AuditRecord) error
	// CreateBatch appends several records sharing a batch ID atomically.
	CreateBatch(ctx context.Context, recs []model.AuditRecord) error
	// GetByID loads a record by ID.
	GetByID(ctx context.Context, id uuid.UUID) (*model.AuditRecord, error)
	// ListByCredential returns records for a credential, newest first,
	// starting strictly after the given position (zero position = start).
	ListByCredential(ctx context.Context, credentialID uuid.UUID, after model.AuditPosition, limit int) ([]model.AuditRecord, error)
	// CountByCredential returns the number of records for a credential.
	CountByCredential(ctx context.Context, credentialID uuid.UUID) (int64, error)
	// CountAll returns the total number of records.
	CountAll(ctx context.Context) (int64, error)
}
