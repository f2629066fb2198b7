package core

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Fingerprint derives the natural key of a transaction from the source's
// literal timestamp and amount strings plus the trimmed description. Two
// records with equal fingerprints are the same real-world event, so callers
// must normalize representation before hashing.
func Fingerprint(timestamp, rawAmount, description string) string {
	raw := timestamp + "|" + rawAmount + "|" + strings.TrimSpace(description)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
