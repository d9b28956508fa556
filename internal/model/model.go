// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"
)

// Credential is a long-lived API key record. The plaintext key is never
// stored; only an Argon2id hash with a per-credential salt and a short
// prefix used to narrow lookups.
type Credential struct {
	ID          uuid.UUID // PK
	Name        string    // caller-supplied label, not unique
	Description string    // optional free text
	KeyPrefix   string    // first characters of the plaintext key, indexed
	KeyHash     []byte    // Argon2id(key, Salt)
	Salt        []byte    // per-credential salt
	Revoked     bool      // soft revocation; rows are never deleted
	CreatedAt   time.Time
}

// IssuedKey pairs a new credential with its plaintext key. The plaintext
// exists only in this value, on the single response that returns it.
type IssuedKey struct {
	Credential Credential
	Plaintext  string
}

// Session is a short-lived signed assertion issued for a valid API key.
type Session struct {
	Token     string
	ExpiresAt time.Time
}

// AuditRecord is one immutable entry of the prediction audit trail.
type AuditRecord struct {
	ID             uuid.UUID
	CredentialID   uuid.UUID
	Features       []byte // input features as submitted, JSON
	PredictedPrice float64
	ResponseTimeMS int64
	RequestType    string     // "single" or "batch"
	BatchID        *uuid.UUID // set for records written by one batch call
	CreatedAt      time.Time
}

// Audit request types.
const (
	RequestTypeSingle = "single"
	RequestTypeBatch  = "batch"
)

// AuditPage is one page of audit records, newest first. NextToken is an
// opaque position marker; empty means the listing is exhausted.
type AuditPage struct {
	Records   []AuditRecord
	NextToken string
}

// AuditStats summarizes the audit trail for the stats endpoint.
type AuditStats struct {
	TotalRecords  int64
	CallerRecords int64
}
