package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Key derives a deterministic cache key from the final formatted prompt,
// the system instruction, and the sampling parameters. Two logically
// identical requests hash to the same key; any parameter change yields a
// different one.
func Key(prompt, system string, temperature float64, maxTokens int) string {
	raw := fmt.Sprintf("%s|%s|%g|%d", prompt, system, temperature, maxTokens)
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:])
}
