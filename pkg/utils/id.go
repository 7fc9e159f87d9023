package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

const jobIDBytes = 32

// GenerateJobID returns 256 random bits encoded as unpadded base64url.
func GenerateJobID() (string, error) {
	b := make([]byte, jobIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
