package hasher

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
)

type Hasher interface {
	Hash(data []byte) []byte
}

type SHA256Hasher struct{}

func (h *SHA256Hasher) Hash(data []byte) []byte {
	hash := sha256.Sum256(data)
	return hash[:]
}

// Hex returns the hex-encoded SHA-256 digest of a chunk's content.
func Hex(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// HexReader digests everything read from r.
// It returns the digest and the number of bytes read.
func HexReader(r io.Reader) (string, int64, error) {
	h := sha256.New()
	n, err := io.Copy(h, r)
	if err != nil {
		return "", n, fmt.Errorf("failed to hash content: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}
