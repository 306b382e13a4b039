package utils

import (
	"crypto/sha256"
	"encoding/hex"
)

// Fingerprint returns a short hex reference derived from the provided data.
// Used as the transaction reference for ledger entries on manual rails,
// where no processor supplies one.
func Fingerprint(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:8])
}
