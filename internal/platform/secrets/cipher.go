package secrets

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const (
	keyLength = 32 // AES-256
	nonceSize = 12
	separator = "|" // base64(nonce)|base64(ciphertext)
)

var (
	ErrInvalidKey        = errors.New("secrets: key must decode to 32 bytes")
	ErrInvalidCiphertext = errors.New("secrets: ciphertext must be base64(nonce)|base64(ciphertext)")
)

// Cipher seals and opens response payloads with AES-256-GCM.
// The key is injected at construction; there is no package-level state.
type Cipher struct {
	key []byte
}

// NewCipher accepts a base64-encoded 32-byte key.
func NewCipher(encodedKey string) (*Cipher, error) {
	trimmed := strings.TrimSpace(encodedKey)
	if trimmed == "" {
		return nil, ErrInvalidKey
	}
	key, err := base64.StdEncoding.DecodeString(trimmed)
	if err != nil {
		key, err = base64.RawStdEncoding.DecodeString(trimmed)
	}
	if err != nil {
		return nil, fmt.Errorf("secrets: decode key: %w", err)
	}
	if len(key) != keyLength {
		return nil, ErrInvalidKey
	}
	c := &Cipher{key: make([]byte, keyLength)}
	copy(c.key, key)
	return c, nil
}

func (c *Cipher) Encrypt(plaintext string) (string, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("secrets: aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("secrets: gcm mode: %w", err)
	}

	nonce := make([]byte, nonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("secrets: nonce: %w", err)
	}

	sealed := aead.Seal(nil, nonce, []byte(plaintext), nil)
	return base64.StdEncoding.EncodeToString(nonce) + separator +
		base64.StdEncoding.EncodeToString(sealed), nil
}

func (c *Cipher) Decrypt(ciphertext string) (string, error) {
	parts := strings.Split(ciphertext, separator)
	if len(parts) != 2 {
		return "", ErrInvalidCiphertext
	}
	nonce, err := base64.StdEncoding.DecodeString(parts[0])
	if err != nil {
		return "", fmt.Errorf("secrets: decode nonce: %w", err)
	}
	sealed, err := base64.StdEncoding.DecodeString(parts[1])
	if err != nil {
		return "", fmt.Errorf("secrets: decode ciphertext: %w", err)
	}
	if len(nonce) != nonceSize {
		return "", ErrInvalidCiphertext
	}

	block, err := aes.NewCipher(c.key)
	if err != nil {
		return "", fmt.Errorf("secrets: aes cipher: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("secrets: gcm mode: %w", err)
	}

	opened, err := aead.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", fmt.Errorf("secrets: open: %w", err)
	}
	return string(opened), nil
}
