// Package service contains application services for authentication and predictions.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	pkgcrypto "github.com/akarpov87/predictgate/internal/crypto"
	"github.com/akarpov87/predictgate/internal/errs"
	"github.com/akarpov87/predictgate/internal/model"
	"github.com/akarpov87/predictgate/internal/repository"
	"github.com/gofrs/uuid/v5"
	"github.com/golang-jwt/jwt/v5"
)

// AuthService defines credential and session operations.
type AuthService interface {
	// IssueKey creates a credential and returns its plaintext key exactly once.
	IssueKey(ctx context.Context, name, description string) (model.IssuedKey, error)
	// Exchange verifies a plaintext key and mints a session token.
	Exchange(ctx context.Context, key string) (model.Session, error)
	// Verify validates a session token and returns its subject. Pure:
	// no store access, usable on every request.
	Verify(token string) (uuid.UUID, error)
	// Revoke soft-revokes a credential; existing tokens live out their TTL.
	Revoke(ctx context.Context, id uuid.UUID) error
	// ListKeys returns credential metadata (never key material), newest first.
	ListKeys(ctx context.Context, limit, offset int) ([]model.Credential, error)
}

type AuthServiceImpl struct {
	creds      repository.CredentialRepository
	signKey    []byte
	sessionTTL time.Duration

	now func() time.Time // injectable for expiry tests
}

// NewAuthService constructs AuthService with required dependencies.
func NewAuthService(creds repository.CredentialRepository, signKey []byte, sessionTTL time.Duration) *AuthServiceImpl {
	return &AuthServiceImpl{creds: creds, signKey: signKey, sessionTTL: sessionTTL, now: time.Now}
}

// IssueKey generates a random key, stores only its salted hash, and
// returns the plaintext to the caller. No later code path can recover it.
func (s *AuthServiceImpl) IssueKey(ctx context.Context, name, description string) (model.IssuedKey, error) {
	if name == "" {
		return model.IssuedKey{}, errors.New("empty name")
	}
	id, err := uuid.NewV4()
	if err != nil {
		return model.IssuedKey{}, err
	}
	key, err := pkgcrypto.NewKey()
	if err != nil {
		return model.IssuedKey{}, err
	}
	salt, err := pkgcrypto.RandBytes(16)
	if err != nil {
		return model.IssuedKey{}, err
	}

	c := model.Credential{
		ID:          id,
		Name:        name,
		Description: description,
		KeyPrefix:   pkgcrypto.Prefix(key),
		KeyHash:     pkgcrypto.HashKey([]byte(key), salt),
		Salt:        salt,
	}
	// the repository fills CreatedAt from the stored row
	if err := s.creds.Create(ctx, &c); err != nil {
		return model.IssuedKey{}, err
	}
	return model.IssuedKey{Credential: c, Plaintext: key}, nil
}

// Exchange looks up non-revoked candidates by key prefix and verifies the
// presented key against each stored hash in constant time. Unknown and
// revoked keys are indistinguishable to the caller.
func (s *AuthServiceImpl) Exchange(ctx context.Context, key string) (model.Session, error) {
	if key == "" {
		return model.Session{}, errs.ErrInvalidCredential
	}
	candidates, err := s.creds.FindByPrefix(ctx, pkgcrypto.Prefix(key))
	if err != nil {
		return model.Session{}, err
	}
	for i := range candidates {
		c := &candidates[i]
		if pkgcrypto.VerifyKey([]byte(key), c.Salt, c.KeyHash) {
			return s.issueSession(c.ID)
		}
	}
	return model.Session{}, errs.ErrInvalidCredential
}

// issueSession creates a signed HS256 JWT for the given subject.
func (s *AuthServiceImpl) issueSession(credentialID uuid.UUID) (model.Session, error) {
	now := s.now()
	exp := now.Add(s.sessionTTL)
	claims := jwt.RegisteredClaims{
		Subject:   credentialID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(exp),
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := tok.SignedString(s.signKey)
	if err != nil {
		return model.Session{}, err
	}
	return model.Session{Token: signed, ExpiresAt: exp}, nil
}

// Verify checks signature first, then expiry with zero leeway, then the
// subject shape. jwt/v5 verifies the signature before claim validation,
// so ErrTokenExpired is only ever reported for an authentic token.
func (s *AuthServiceImpl) Verify(token string) (uuid.UUID, error) {
	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{},
		func(t *jwt.Token) (any, error) { return s.signKey, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return s.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, errs.ErrExpiredToken
		}
		return uuid.Nil, fmt.Errorf("%w: %w", errs.ErrInvalidToken, err)
	}
	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || claims.Subject == "" {
		return uuid.Nil, errs.ErrInvalidToken
	}
	subject, err := uuid.FromString(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", errs.ErrInvalidToken)
	}
	return subject, nil
}

// Revoke soft-revokes a credential.
func (s *AuthServiceImpl) Revoke(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return errs.ErrNotFound
	}
	return s.creds.Revoke(ctx, id)
}

// ListKeys returns credential metadata. Hash and salt are cleared before
// the records leave the service layer.
func (s *AuthServiceImpl) ListKeys(ctx context.Context, limit, offset int) ([]model.Credential, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	creds, err := s.creds.List(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	for i := range creds {
		creds[i].KeyHash = nil
		creds[i].Salt = nil
	}
	return creds, nil
}
