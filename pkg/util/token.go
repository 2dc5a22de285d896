package util

import (
	"crypto/rand"
	"encoding/hex"
)

// GenerateToken returns a 32-character hex token backed by 128 bits of
// CSPRNG entropy, suitable for single-use redemption links.
func GenerateToken() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
