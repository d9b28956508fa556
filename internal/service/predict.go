package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/akarpov87/predictgate/internal/errs"
	"github.com/akarpov87/predictgate/internal/limiter"
	"github.com/akarpov87/predictgate/internal/model"
	"github.com/akarpov87/predictgate/internal/predictor"
	"github.com/akarpov87/predictgate/internal/repository"
	"github.com/gofrs/uuid/v5"
)

// PredictService defines the protected prediction operations and access
// to the audit trail.
type PredictService interface {
	// Predict runs one prediction for the subject. The audit record is
	// part of the operation: if it cannot be written, the call fails.
	Predict(ctx context.Context, subject uuid.UUID, features predictor.Features) (model.AuditRecord, error)
	// PredictBatch prices several properties under one batch ID.
	PredictBatch(ctx context.Context, subject uuid.UUID, features []predictor.Features) ([]model.AuditRecord, error)
	// ListLogs pages through the subject's audit records, newest first.
	ListLogs(ctx context.Context, subject uuid.UUID, pageToken string, limit int) (model.AuditPage, error)
	// GetLog returns one audit record; subjects only see their own.
	GetLog(ctx context.Context, subject, id uuid.UUID) (*model.AuditRecord, error)
	// Stats summarizes the audit trail for the subject.
	Stats(ctx context.Context, subject uuid.UUID) (model.AuditStats, error)
}

type PredictServiceImpl struct {
	predictor predictor.Predictor
	audit     repository.AuditRepository
	gate      limiter.Gate
	maxBatch  int

	now func() time.Time
}

// NewPredictService constructs PredictService with batch limits.
func NewPredictService(p predictor.Predictor, audit repository.AuditRepository, gate limiter.Gate, maxBatch int) *PredictServiceImpl {
	if maxBatch <= 0 {
		maxBatch = 100
	}
	return &PredictServiceImpl{predictor: p, audit: audit, gate: gate, maxBatch: maxBatch, now: time.Now}
}

// Predict admits the request through the gate, prices the property, and
// appends the audit record. Denied requests write nothing.
func (s *PredictServiceImpl) Predict(ctx context.Context, subject uuid.UUID, features predictor.Features) (model.AuditRecord, error) {
	if ok, _ := s.gate.Allow(subject.String()); !ok {
		return model.AuditRecord{}, errs.ErrRateLimited
	}

	start := s.now()
	price, err := s.predictor.Predict(features)
	if err != nil {
		return model.AuditRecord{}, fmt.Errorf("predict: %w", err)
	}
	rec, err := s.newRecord(subject, features, price, start, model.RequestTypeSingle, nil)
	if err != nil {
		return model.AuditRecord{}, err
	}
	if err := s.audit.Create(ctx, &rec); err != nil {
		return model.AuditRecord{}, err
	}
	return rec, nil
}

// PredictBatch counts as one admission and writes all records atomically
// under a shared batch ID.
func (s *PredictServiceImpl) PredictBatch(ctx context.Context, subject uuid.UUID, features []predictor.Features) ([]model.AuditRecord, error) {
	if len(features) == 0 {
		return nil, errors.New("empty batch")
	}
	if len(features) > s.maxBatch {
		return nil, fmt.Errorf("batch size %d exceeds limit %d", len(features), s.maxBatch)
	}
	if ok, _ := s.gate.Allow(subject.String()); !ok {
		return nil, errs.ErrRateLimited
	}

	batchID, err := uuid.NewV4()
	if err != nil {
		return nil, err
	}
	start := s.now()
	recs := make([]model.AuditRecord, 0, len(features))
	for i, f := range features {
		price, err := s.predictor.Predict(f)
		if err != nil {
			return nil, fmt.Errorf("predict[%d]: %w", i, err)
		}
		rec, err := s.newRecord(subject, f, price, start, model.RequestTypeBatch, &batchID)
		if err != nil {
			return nil, err
		}
		recs = append(recs, rec)
	}
	if err := s.audit.CreateBatch(ctx, recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *PredictServiceImpl) newRecord(
	subject uuid.UUID, features predictor.Features, price float64,
	start time.Time, requestType string, batchID *uuid.UUID,
) (model.AuditRecord, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return model.AuditRecord{}, err
	}
	raw, err := json.Marshal(features)
	if err != nil {
		return model.AuditRecord{}, err
	}
	return model.AuditRecord{
		ID:             id,
		CredentialID:   subject,
		Features:       raw,
		PredictedPrice: price,
		ResponseTimeMS: s.now().Sub(start).Milliseconds(),
		RequestType:    requestType,
		BatchID:        batchID,
	}, nil
}

// ListLogs resolves the page token and returns one page plus the token
// for the next one.
func (s *PredictServiceImpl) ListLogs(ctx context.Context, subject uuid.UUID, pageToken string, limit int) (model.AuditPage, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	after, err := model.ParsePageToken(pageToken)
	if err != nil {
		return model.AuditPage{}, fmt.Errorf("bad page token: %w", err)
	}
	recs, err := s.audit.ListByCredential(ctx, subject, after, limit)
	if err != nil {
		return model.AuditPage{}, err
	}
	page := model.AuditPage{Records: recs}
	if len(recs) == limit {
		last := recs[len(recs)-1]
		page.NextToken = model.AuditPosition{CreatedAt: last.CreatedAt, ID: last.ID}.Token()
	}
	return page, nil
}

// GetLog returns one record, hiding other subjects' records behind NotFound.
func (s *PredictServiceImpl) GetLog(ctx context.Context, subject, id uuid.UUID) (*model.AuditRecord, error) {
	rec, err := s.audit.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.CredentialID != subject {
		return nil, errs.ErrNotFound
	}
	return rec, nil
}

// Stats returns total and per-subject record counts.
func (s *PredictServiceImpl) Stats(ctx context.Context, subject uuid.UUID) (model.AuditStats, error) {
	total, err := s.audit.CountAll(ctx)
	if err != nil {
		return model.AuditStats{}, err
	}
	mine, err := s.audit.CountByCredential(ctx, subject)
	if err != nil {
		return model.AuditStats{}, err
	}
	return model.AuditStats{TotalRecords: total, CallerRecords: mine}, nil
}
