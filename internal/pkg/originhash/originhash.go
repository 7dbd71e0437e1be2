// Package originhash derives privacy-preserving identifiers from client
// network addresses. Raw addresses are never stored; all comparison happens
// on the one-way hash.
package originhash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash returns the deterministic hex-encoded digest of a raw client address.
func Hash(rawAddr string) string {
	sum := sha256.Sum256([]byte(rawAddr))
	return hex.EncodeToString(sum[:])
}
