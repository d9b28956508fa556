package service

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/akarpov87/predictgate/internal/errs"
	"github.com/akarpov87/predictgate/internal/model"
	"github.com/akarpov87/predictgate/internal/repository"
	"github.com/gofrs/uuid/v5"
)

type fakeCreds struct {
	byID map[uuid.UUID]*model.Credential

	createErr error
	findErr   error
	revokeErr error
	listErr   error
}

var _ repository.CredentialRepository = (*fakeCreds)(nil)

func (f *fakeCreds) Create(_ context.Context, c *model.Credential) error {
	if f.createErr != nil {
		return f.createErr
	}
	if f.byID == nil {
		f.byID = map[uuid.UUID]*model.Credential{}
	}
	c.CreatedAt = time.Now().UTC() // the real repository scans it back from the row
	cpy := *c
	f.byID[c.ID] = &cpy
	return nil
}

func (f *fakeCreds) GetByID(_ context.Context, id uuid.UUID) (*model.Credential, error) {
	c, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cpy := *c
	return &cpy, nil
}

func (f *fakeCreds) FindByPrefix(_ context.Context, prefix string) ([]model.Credential, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []model.Credential
	for _, c := range f.byID {
		if c.KeyPrefix == prefix && !c.Revoked {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCreds) List(_ context.Context, limit, offset int) ([]model.Credential, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []model.Credential
	for _, c := range f.byID {
		out = append(out, *c)
	}
	return out, nil
}

func (f *fakeCreds) Revoke(_ context.Context, id uuid.UUID) error {
	if f.revokeErr != nil {
		return f.revokeErr
	}
	c, ok := f.byID[id]
	if !ok {
		return errs.ErrNotFound
	}
	c.Revoked = true
	return nil
}

func newAuth(creds *fakeCreds, ttl time.Duration) *AuthServiceImpl {
	return NewAuthService(creds, []byte("0123456789abcdef0123456789abcdef"), ttl)
}

func TestAuth_IssueKey_Basics(t *testing.T) {
	t.Parallel()
	creds := &fakeCreds{byID: map[uuid.UUID]*model.Credential{}}
	s := newAuth(creds, time.Minute)

	if _, err := s.IssueKey(context.Background(), "", ""); err == nil {
		t.Fatalf("want validation error on empty name")
	}

	issued, err := s.IssueKey(context.Background(), "ci", "deploy bot")
	if err != nil {
		t.Fatalf("IssueKey: %v", err)
	}
	if issued.Plaintext == "" {
		t.Fatalf("empty plaintext key")
	}
	stored := creds.byID[issued.Credential.ID]
	if stored == nil {
		t.Fatalf("credential not stored")
	}
	if strings.Contains(string(stored.KeyHash), issued.Plaintext) {
		t.Fatalf("plaintext leaked into stored hash")
	}
	if !strings.HasPrefix(issued.Plaintext, stored.KeyPrefix) {
		t.Fatalf("stored prefix does not match key")
	}
}

func TestAuth_IssueKey_SameNameDistinctSecrets(t *testing.T) {
	t.Parallel()
	creds := &fakeCreds{byID: map[uuid.UUID]*model.Credential{}}
	s := newAuth(creds, time.Minute)

	a, err := s.IssueKey(context.Background(), "ci", "")
	if err != nil {
		t.Fatalf("IssueKey(1): %v", err)
	}
	b, err := s.IssueKey(context.Background(), "ci", "")
	if err != nil {
		t.Fatalf("IssueKey(2): %v", err)
	}
	if a.Credential.ID == b.Credential.ID {
		t.Fatalf("ids must differ")
	}
	if a.Plaintext == b.Plaintext {
		t.Fatalf("secrets must differ")
	}
}

func TestAuth_Exchange_RoundTrip(t *testing.T) {
	t.Parallel()
	creds := &fakeCreds{byID: map[uuid.UUID]*model.Credential{}}
	s := newAuth(creds, 5*time.Minute)

	issued, err := s.IssueKey(context.Background(), "ci", "")
	if err != nil {
		t.Fatalf("IssueKey: %v", err)
	}

	sess, err := s.Exchange(context.Background(), issued.Plaintext)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	subject, err := s.Verify(sess.Token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if subject != issued.Credential.ID {
		t.Fatalf("subject=%s, want=%s", subject, issued.Credential.ID)
	}
}

func TestAuth_Exchange_Failures(t *testing.T) {
	t.Parallel()
	creds := &fakeCreds{byID: map[uuid.UUID]*model.Credential{}}
	s := newAuth(creds, time.Minute)

	issued, err := s.IssueKey(context.Background(), "ci", "")
	if err != nil {
		t.Fatalf("IssueKey: %v", err)
	}

	// unknown key with a matching prefix
	wrong := issued.Plaintext[:len(issued.Plaintext)-1] + "0"
	if wrong == issued.Plaintext {
		wrong = issued.Plaintext[:len(issued.Plaintext)-1] + "1"
	}
	if _, err := s.Exchange(context.Background(), wrong); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Fatalf("wrong key: err=%v, want ErrInvalidCredential", err)
	}

	if _, err := s.Exchange(context.Background(), ""); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Fatalf("empty key: err=%v, want ErrInvalidCredential", err)
	}

	// revoked credential never yields a token, even with the correct key
	if err := s.Revoke(context.Background(), issued.Credential.ID); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, err := s.Exchange(context.Background(), issued.Plaintext); !errors.Is(err, errs.ErrInvalidCredential) {
		t.Fatalf("revoked key: err=%v, want ErrInvalidCredential", err)
	}

	// storage failure propagates as-is
	creds.findErr = errs.ErrStorage
	if _, err := s.Exchange(context.Background(), issued.Plaintext); !errors.Is(err, errs.ErrStorage) {
		t.Fatalf("storage failure: err=%v, want ErrStorage", err)
	}
}

func TestAuth_Verify_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	creds := &fakeCreds{byID: map[uuid.UUID]*model.Credential{}}
	s := newAuth(creds, 5*time.Minute)

	issuedAt := time.Date(2026, 2, 1, 10, 0, 0, 0, time.UTC)
	now := issuedAt
	s.now = func() time.Time { return now }

	issued, err := s.IssueKey(context.Background(), "ci", "")
	if err != nil {
		t.Fatalf("IssueKey: %v", err)
	}
	sess, err := s.Exchange(context.Background(), issued.Plaintext)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if !sess.ExpiresAt.Equal(issuedAt.Add(5 * time.Minute)) {
		t.Fatalf("ExpiresAt=%v, want issued+TTL", sess.ExpiresAt)
	}

	// valid over [T, T+D)
	for _, offset := range []time.Duration{0, time.Minute, 5*time.Minute - time.Second} {
		now = issuedAt.Add(offset)
		if _, err := s.Verify(sess.Token); err != nil {
			t.Fatalf("Verify at +%v: %v", offset, err)
		}
	}

	// expired at exactly T+D and beyond
	for _, offset := range []time.Duration{5 * time.Minute, time.Hour} {
		now = issuedAt.Add(offset)
		if _, err := s.Verify(sess.Token); !errors.Is(err, errs.ErrExpiredToken) {
			t.Fatalf("Verify at +%v: err=%v, want ErrExpiredToken", offset, err)
		}
	}
}

func TestAuth_Verify_TamperedSignature(t *testing.T) {
	t.Parallel()
	creds := &fakeCreds{byID: map[uuid.UUID]*model.Credential{}}
	s := newAuth(creds, time.Minute)

	issued, err := s.IssueKey(context.Background(), "ci", "")
	if err != nil {
		t.Fatalf("IssueKey: %v", err)
	}
	sess, err := s.Exchange(context.Background(), issued.Plaintext)
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}

	parts := strings.Split(sess.Token, ".")
	if len(parts) != 3 {
		t.Fatalf("unexpected token shape")
	}
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	if err != nil {
		t.Fatalf("decode signature: %v", err)
	}
	for i := range sig {
		mutated := append([]byte(nil), sig...)
		mutated[i] ^= 0x01
		tampered := parts[0] + "." + parts[1] + "." + base64.RawURLEncoding.EncodeToString(mutated)
		if _, err := s.Verify(tampered); !errors.Is(err, errs.ErrInvalidToken) {
			t.Fatalf("byte %d: err=%v, want ErrInvalidToken", i, err)
		}
	}
}

func TestAuth_Verify_GarbageAndWrongAlg(t *testing.T) {
	t.Parallel()
	creds := &fakeCreds{byID: map[uuid.UUID]*model.Credential{}}
	s := newAuth(creds, time.Minute)

	for _, tok := range []string{"", "garbage", "a.b.c"} {
		if _, err := s.Verify(tok); !errors.Is(err, errs.ErrInvalidToken) {
			t.Fatalf("token %q: err=%v, want ErrInvalidToken", tok, err)
		}
	}

	// alg=none style token must be rejected
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"none","typ":"JWT"}`))
	payload := base64.RawURLEncoding.EncodeToString([]byte(`{"sub":"x"}`))
	if _, err := s.Verify(header + "." + payload + "."); !errors.Is(err, errs.ErrInvalidToken) {
		t.Fatalf("alg=none: err=%v, want ErrInvalidToken", err)
	}
}

func TestAuth_ListKeys_NeverExposesKeyMaterial(t *testing.T) {
	t.Parallel()
	creds := &fakeCreds{byID: map[uuid.UUID]*model.Credential{}}
	s := newAuth(creds, time.Minute)

	if _, err := s.IssueKey(context.Background(), "ci", ""); err != nil {
		t.Fatalf("IssueKey: %v", err)
	}

	list, err := s.ListKeys(context.Background(), 10, 0)
	if err != nil {
		t.Fatalf("ListKeys: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("len=%d, want 1", len(list))
	}
	if list[0].KeyHash != nil || list[0].Salt != nil {
		t.Fatalf("key material leaked from ListKeys")
	}
}
