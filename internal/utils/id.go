package utils // package utils provides helpers for session ids and password hashing

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
)

// sessionIDBytes is the amount of entropy behind a session id (256 bits).
const sessionIDBytes = 32

// NewSessionID returns a fresh opaque session identifier. The raw value only
// ever travels inside the signed cookie; stores key on HashSessionID.
func NewSessionID() (string, error) {
	return randomHex(sessionIDBytes)
}

// HashSessionID returns the SHA-256 hash of a session id as hex.
func HashSessionID(id string) string {
	sum := sha256.Sum256([]byte(id))
	return hex.EncodeToString(sum[:])
}

// randomHex returns n bytes of crypto/rand data hex encoded.
func randomHex(n int) (string, error) {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
