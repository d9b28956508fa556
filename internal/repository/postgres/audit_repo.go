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

// AuditRepo implements AuditRepository using PostgreSQL. The table is
// append-only; no update or delete statements exist in this file on purpose.
type AuditRepo struct{ db *DB }

// NewAuditRepo constructs an audit repository.
func NewAuditRepo(db *DB) *AuditRepo { return &AuditRepo{db: db} }

const insertAuditSQL = `
INSERT INTO audit_records (id, credential_id, features, predicted_price, response_time_ms, request_type, batch_id)
VALUES ($1, $2, $3, $4, $5, $6, $7)
RETURNING created_at`

// Create appends one audit record and fills in its server-side timestamp.
func (r *AuditRepo) Create(ctx context.Context, rec *model.AuditRecord) error {
	row := r.db.Pool.QueryRow(ctx, insertAuditSQL,
		rec.ID, rec.CredentialID, rec.Features, rec.PredictedPrice,
		rec.ResponseTimeMS, rec.RequestType, rec.BatchID)
	if err := row.Scan(&rec.CreatedAt); err != nil {
		return fmt.Errorf("%w: %w", errs.ErrAuditWrite, err)
	}
	return nil
}

// CreateBatch appends several records in one transaction. Either all
// records of a batch become durable or none do.
func (r *AuditRepo) CreateBatch(ctx context.Context, recs []model.AuditRecord) (err error) {
	if len(recs) == 0 {
		return nil
	}
	tx, err := r.db.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrAuditWrite, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if e := tx.Commit(ctx); e != nil {
			err = fmt.Errorf("%w: %w", errs.ErrAuditWrite, e)
		}
	}()

	for i := range recs {
		rec := &recs[i]
		row := tx.QueryRow(ctx, insertAuditSQL,
			rec.ID, rec.CredentialID, rec.Features, rec.PredictedPrice,
			rec.ResponseTimeMS, rec.RequestType, rec.BatchID)
		if scanErr := row.Scan(&rec.CreatedAt); scanErr != nil {
			err = fmt.Errorf("record[%d]: %w: %w", i, errs.ErrAuditWrite, scanErr)
			return err
		}
	}
	return nil
}

// GetByID selects a record by ID.
func (r *AuditRepo) GetByID(ctx context.Context, id uuid.UUID) (*model.AuditRecord, error) {
	const q = `
SELECT id, credential_id, features, predicted_price, response_time_ms, request_type, batch_id, created_at
FROM audit_records WHERE id=$1`
	row := r.db.Pool.QueryRow(ctx, q, id)
	var rec model.AuditRecord
	if err := row.Scan(&rec.ID, &rec.CredentialID, &rec.Features, &rec.PredictedPrice,
		&rec.ResponseTimeMS, &rec.RequestType, &rec.BatchID, &rec.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, errs.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return &rec, nil
}

// ListByCredential selects records newest first, strictly after the given
// keyset position. A zero position starts from the newest record.
func (r *AuditRepo) ListByCredential(
	ctx context.Context, credentialID uuid.UUID, after model.AuditPosition, limit int,
) ([]model.AuditRecord, error) {
	const qFirst = `
SELECT id, credential_id, features, predicted_price, response_time_ms, request_type, batch_id, created_at
FROM audit_records
WHERE credential_id=$1
ORDER BY created_at DESC, id DESC
LIMIT $2`
	const qAfter = `
SELECT id, credential_id, features, predicted_price, response_time_ms, request_type, batch_id, created_at
FROM audit_records
WHERE credential_id=$1 AND (created_at, id) < ($2, $3)
ORDER BY created_at DESC, id DESC
LIMIT $4`

	var rows pgx.Rows
	var err error
	if after.IsZero() {
		rows, err = r.db.Pool.Query(ctx, qFirst, credentialID, limit)
	} else {
		rows, err = r.db.Pool.Query(ctx, qAfter, credentialID, after.CreatedAt, after.ID, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	defer rows.Close()

	var out []model.AuditRecord
	for rows.Next() {
		var rec model.AuditRecord
		if err := rows.Scan(&rec.ID, &rec.CredentialID, &rec.Features, &rec.PredictedPrice,
			&rec.ResponseTimeMS, &rec.RequestType, &rec.BatchID, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return out, nil
}

// CountByCredential counts records for one credential.
func (r *AuditRepo) CountByCredential(ctx context.Context, credentialID uuid.UUID) (int64, error) {
	const q = `SELECT count(*) FROM audit_records WHERE credential_id=$1`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q, credentialID).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return n, nil
}

// CountAll counts all records.
func (r *AuditRepo) CountAll(ctx context.Context) (int64, error) {
	const q = `SELECT count(*) FROM audit_records`
	var n int64
	if err := r.db.Pool.QueryRow(ctx, q).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: %w", errs.ErrStorage, err)
	}
	return n, nil
}
