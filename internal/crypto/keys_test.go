package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestRandBytes_LengthAndUniqueness(t *testing.T) {
	t.Parallel()

	const n = 64
	a, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes: %v", err)
	}
	if len(a) != n {
		t.Fatalf("len=%d, want=%d", len(a), n)
	}
	b, err := RandBytes(n)
	if err != nil {
		t.Fatalf("RandBytes(2): %v", err)
	}
	if bytes.Equal(a, b) {
		t.Fatalf("two subsequent RandBytes(%d) are equal, looks non-random", n)
	}

	zero := make([]byte, n)
	if bytes.Equal(a, zero) {
		t.Fatalf("RandBytes returned all zeros")
	}
}

func TestNewKey_FormatAndUniqueness(t *testing.T) {
	t.Parallel()

	k1, err := NewKey()
	if err != nil {
		t.Fatalf("NewKey: %v", err)
	}
	if len(k1) != KeyBytes*2 {
		t.Fatalf("len=%d, want=%d", len(k1), KeyBytes*2)
	}
	if _, err := hex.DecodeString(k1); err != nil {
		t.Fatalf("key is not hex: %v", err)
	}

	k2, err := NewKey()
	if err != nil {
		t.Fatalf("NewKey(2): %v", err)
	}
	if k1 == k2 {
		t.Fatalf("two subsequent keys are equal")
	}
	if Prefix(k1) == k1 {
		t.Fatalf("prefix should be shorter than the key")
	}
	if len(Prefix(k1)) != PrefixLen {
		t.Fatalf("prefix len=%d, want=%d", len(Prefix(k1)), PrefixLen)
	}
}

func TestHashKey_DeterministicOnSameInput(t *testing.T) {
	t.Parallel()

	key := []byte("0badc0de0badc0de")
	salt := []byte("NaCl-16-bytes?")

	h1 := HashKey(key, salt)
	h2 := HashKey(key, salt)

	if len(h1) == 0 || len(h2) == 0 {
		t.Fatalf("empty hash")
	}
	if !bytes.Equal(h1, h2) {
		t.Fatalf("hash not deterministic for same input")
	}

	h3 := HashKey(key, []byte("another-salt----"))
	if bytes.Equal(h1, h3) {
		t.Fatalf("hash should differ when salt differs")
	}

	h4 := HashKey([]byte("0badc0de0badc0df"), salt)
	if bytes.Equal(h1, h4) {
		t.Fatalf("hash should differ when key differs")
	}
}

func TestVerifyKey(t *testing.T) {
	t.Parallel()

	key := []byte("correct horse battery staple")
	salt := []byte("salty-salt-123456")

	hash := HashKey(key, salt)

	if !VerifyKey(key, salt, hash) {
		t.Fatalf("VerifyKey: expected true for correct key")
	}
	if VerifyKey([]byte("wrong"), salt, hash) {
		t.Fatalf("VerifyKey: expected false for wrong key")
	}
	if VerifyKey(key, []byte("wrong-salt"), hash) {
		t.Fatalf("VerifyKey: expected false for wrong salt")
	}
	if VerifyKey([]byte{}, salt, hash) {
		t.Fatalf("VerifyKey: expected false for empty key")
	}
}
