// Package errs contains sentinel errors used across layers for stable error mapping.
package errs

import "errors"

// Common sentinels across repo/service layers.
var (
	// ErrNotFound indicates the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidCredential indicates an unknown or revoked API key.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrInvalidToken indicates a session token with a bad signature or shape.
	ErrInvalidToken = errors.New("invalid token")

	// ErrExpiredToken indicates an authentic session token past its expiry.
	ErrExpiredToken = errors.New("expired token")

	// ErrRateLimited indicates the admission gate denied the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrStorage indicates a storage backend failure (timeout, connectivity).
	ErrStorage = errors.New("storage failure")

	// ErrAuditWrite indicates the audit record could not be written; the
	// triggering prediction must fail as a whole.
	ErrAuditWrite = errors.New("audit write failure")
)
