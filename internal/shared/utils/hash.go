package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Hasher produces stable hex digests
type Hasher struct{}

// DefaultHasher returns the SHA-256 hasher
func DefaultHasher() *Hasher {
	return &Hasher{}
}

// Hash computes a hash of the input data
func (h *Hasher) Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// HashString computes a hash of a string
func (h *Hasher) HashString(s string) string {
	return h.Hash([]byte(s))
}

// HashFields hashes fields in order. A NUL separator keeps ("ab","c") and
// ("a","bc") apart.
func (h *Hasher) HashFields(fields ...string) string {
	return h.HashString(strings.Join(fields, "\x00"))
}

// Fingerprint identifies a set of secrets without retaining them
func Fingerprint(fields ...string) string {
	return DefaultHasher().HashFields(fields...)
}
