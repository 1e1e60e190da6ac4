// Package checksum fingerprints note content for change detection. Vault
// sync and the embedding store compare digests to decide what to re-index
// or re-embed.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
