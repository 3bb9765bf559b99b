package shared

import (
	"encoding/hex"

	"github.com/minio/sha256-simd" // simd optimized sha256 computation
)

// HashFunc turns a challenge string into its hex encoded digest.
// A nil HashFunc means the hashing capability is not available.
type HashFunc func(data string) string

// SHA256Hex returns the lowercase hex encoded SHA-256 of data.
func SHA256Hex(data string) string {
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}
