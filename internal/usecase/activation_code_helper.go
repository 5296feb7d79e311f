package usecase

import (
	"crypto/rand"
	"io"
)

// generateActivationCode creates a secure random 6-character code,
// uppercase base-36 (A-Z, 0-9). This is the ONLY generator in the codebase:
// the code is a secret-bearing artifact, so every minting path draws from
// crypto/rand.
func generateActivationCode() (string, error) {
	const chars = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const codeLength = 6

	buffer := make([]byte, codeLength)
	if _, err := io.ReadFull(rand.Reader, buffer); err != nil {
		return "", err
	}
	for i := 0; i < codeLength; i++ {
		buffer[i] = chars[int(buffer[i])%len(chars)]
	}
	return string(buffer), nil
}
