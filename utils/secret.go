package utils

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// GenerateSessionSecret returns a URL-safe random secret with 256 bits of
// entropy, used to sign API session tokens. Generated once per install and
// persisted in the settings file.
func GenerateSessionSecret() (string, error) {
	const numBytes = 32 // 256 bits
	buf := make([]byte, numBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
