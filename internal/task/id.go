package task

import (
	"crypto/rand"
	"crypto/sha256"
	"math/big"
	"time"
)

const (
	minIDLength = 3
	maxIDLength = 8
	nonceSize   = 16 // 128 bits of entropy
)

// GenerateID creates a short unique task id with adaptive length.
// The id is a base36 prefix of a hash over plan, title, creation time and a
// random nonce; it starts at minIDLength characters and grows up to
// maxIDLength until existsFn stops reporting a collision.
func GenerateID(planID, title string, createdAt time.Time, existsFn func(string) bool) string {
	nonce := make([]byte, nonceSize)
	if _, err := rand.Read(nonce); err != nil {
		panic("crypto/rand failed: " + err.Error())
	}

	h := sha256.New()
	h.Write([]byte(planID))
	h.Write([]byte(title))
	h.Write([]byte(createdAt.Format(time.RFC3339Nano)))
	h.Write(nonce)

	base36 := new(big.Int).SetBytes(h.Sum(nil)).Text(36)

	for length := minIDLength; length <= maxIDLength; length++ {
		if length > len(base36) {
			break
		}
		candidate := base36[:length]
		if !existsFn(candidate) {
			return candidate
		}
	}

	// Every prefix collided; settle for the longest one.
	return base36[:maxIDLength]
}
