package secrets

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func testKey() string {
	return base64.StdEncoding.EncodeToString([]byte("0123456789abcdef0123456789abcdef"))
}

func TestNewCipherRejectsShortKey(t *testing.T) {
	if _, err := NewCipher(base64.StdEncoding.EncodeToString([]byte("short"))); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey, got %v", err)
	}
	if _, err := NewCipher("   "); !errors.Is(err, ErrInvalidKey) {
		t.Fatalf("expected ErrInvalidKey for blank key, got %v", err)
	}
}

func TestEncryptDecryptRoundTrip(t *testing.T) {
	cipher, err := NewCipher(testKey())
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	sealed, err := cipher.Encrypt(`{"message":"hola"}`)
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if !strings.Contains(sealed, "|") {
		t.Fatalf("expected nonce|ciphertext format, got %q", sealed)
	}
	if sealed == `{"message":"hola"}` {
		t.Fatal("ciphertext must differ from plaintext")
	}

	opened, err := cipher.Decrypt(sealed)
	if err != nil {
		t.Fatalf("decrypt: %v", err)
	}
	if opened != `{"message":"hola"}` {
		t.Fatalf("round trip mismatch: %q", opened)
	}
}

func TestDecryptRejectsMalformedInput(t *testing.T) {
	cipher, err := NewCipher(testKey())
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	if _, err := cipher.Decrypt("no separator here"); !errors.Is(err, ErrInvalidCiphertext) {
		t.Fatalf("expected ErrInvalidCiphertext, got %v", err)
	}
	if _, err := cipher.Decrypt("???|???"); err == nil {
		t.Fatal("expected decode error for invalid base64")
	}
}

func TestDecryptFailsWithDifferentKey(t *testing.T) {
	first, err := NewCipher(testKey())
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}
	second, err := NewCipher(base64.StdEncoding.EncodeToString([]byte("fedcba9876543210fedcba9876543210")))
	if err != nil {
		t.Fatalf("new cipher: %v", err)
	}

	sealed, err := first.Encrypt("payload")
	if err != nil {
		t.Fatalf("encrypt: %v", err)
	}
	if _, err := second.Decrypt(sealed); err == nil {
		t.Fatal("expected authentication failure with mismatched key")
	}
}
