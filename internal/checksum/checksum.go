// Package checksum computes the content digests used for workspace
// If-Match checks and proof history keys.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Sum returns the hex-encoded SHA-256 digest of data.
func Sum(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// Lines digests parts joined by newlines.
func Lines(parts ...string) string {
	return Sum([]byte(strings.Join(parts, "\n")))
}

// Matches reports whether an If-Match value names the digest of data.
// Surrounding quotes and a weak validator prefix are ignored.
func Matches(ifMatch string, data []byte) bool {
	v := strings.TrimPrefix(strings.TrimSpace(ifMatch), "W/")
	return strings.Trim(v, `"`) == Sum(data)
}
