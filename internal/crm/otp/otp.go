// Package otp issues and verifies the one-time codes that gate service
// completion and job-card reinstall transitions. Only a salted HMAC digest
// is ever persisted; the plaintext code travels out-of-band by SMS.
package otp

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"
)

const (
	DefaultTTL    = 600 * time.Second
	DefaultLength = 4
)

// Authority generates, hashes and verifies one-time codes.
type Authority struct {
	salt   []byte
	ttl    time.Duration
	length int
}

// NewAuthority builds an Authority. Zero ttl/length fall back to defaults.
func NewAuthority(salt string, ttl time.Duration, length int) *Authority {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if length <= 0 {
		length = DefaultLength
	}
	return &Authority{salt: []byte(salt), ttl: ttl, length: length}
}

// Generate returns a zero-padded decimal code of the configured length,
// uniformly drawn from [0, 10^length) using a cryptographically secure source.
func (a *Authority) Generate() string {
	return Generate(a.length)
}

// Generate returns a zero-padded decimal code of the given length.
func Generate(length int) string {
	if length <= 0 {
		length = DefaultLength
	}
	max := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(length)), nil)
	n, err := rand.Int(rand.Reader, max)
	if err != nil {
		// crypto/rand only fails when the platform entropy source is
		// broken; there is no meaningful recovery at this layer.
		panic(fmt.Sprintf("otp: secure random source unavailable: %v", err))
	}
	return fmt.Sprintf("%0*d", length, n)
}

// Hash returns the hex HMAC-SHA256 digest of the code under the server salt.
// Deterministic: the digest is what gets persisted and compared later.
func (a *Authority) Hash(code string) string {
	mac := hmac.New(sha256.New, a.salt)
	mac.Write([]byte(code))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify recomputes the digest for candidate and compares it against the
// stored digest in constant time.
func (a *Authority) Verify(candidate, storedDigest string) bool {
	return hmac.Equal([]byte(a.Hash(candidate)), []byte(storedDigest))
}

// ExpiryTime returns the validity bound for a challenge issued now.
func (a *Authority) ExpiryTime() time.Time {
	return time.Now().Add(a.ttl)
}
