package gatito

import (
	"crypto/sha256"
	"encoding/hex"
)

// HashText returns the hex SHA-256 of text.
func HashText(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// ETag returns a strong HTTP entity tag for a rendered page.
func ETag(body string) string {
	return `"` + HashText(body)[:32] + `"`
}
