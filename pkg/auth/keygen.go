package auth

import (
	"fmt"

	gonanoid "github.com/matoous/go-nanoid/v2"
)

// KeyPrefix marks gateway API keys so the log redactor can recognise them
const KeyPrefix = "tg_"

const (
	keyAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	keyLength   = 40
)

// GenerateKey returns a new random API key
func GenerateKey() (string, error) {
	id, err := gonanoid.Generate(keyAlphabet, keyLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate key: %w", err)
	}
	return KeyPrefix + id, nil
}
