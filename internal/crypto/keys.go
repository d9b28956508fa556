// Package crypto implements API key generation, hashing, and verification.
package crypto

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"golang.org/x/crypto/argon2"
)

// Argon2id parameters (tuned for server-side hashing).
const (
	argonTime    uint32 = 3         // iterations
	argonMemory  uint32 = 64 * 1024 // 64 MB
	argonThreads uint8  = 1
	argonKeyLen  uint32 = 32
)

// KeyBytes is the entropy of a generated API key (256 bits).
const KeyBytes = 32

// PrefixLen is the number of leading key characters stored in clear for
// candidate lookup. Too short to narrow a brute force meaningfully.
const PrefixLen = 8

// RandBytes returns n cryptographically secure random bytes.
func RandBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// NewKey generates a new plaintext API key: KeyBytes of randomness,
// hex-encoded.
func NewKey() (string, error) {
	b, err := RandBytes(KeyBytes)
	if err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// Prefix returns the clear lookup prefix of a plaintext key.
func Prefix(key string) string {
	if len(key) < PrefixLen {
		return key
	}
	return key[:PrefixLen]
}

// HashKey returns the Argon2id hash of key using the provided salt.
func HashKey(key, salt []byte) []byte {
	return argon2.IDKey(key, salt, argonTime, argonMemory, argonThreads, argonKeyLen)
}

// VerifyKey verifies key against the expected Argon2id hash and salt in
// constant time.
func VerifyKey(key, salt, expected []byte) bool {
	got := HashKey(key, salt)
	return subtle.ConstantTimeCompare(got, expected) == 1
}
