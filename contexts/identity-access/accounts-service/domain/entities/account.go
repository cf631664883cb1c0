package entities

import (
	"net/mail"
	"strings"
	"time"
)

type Account struct {
	AccountID    string
	Email        string
	PasswordHash string
	Name         string
	Locale       string
	SMTPURL      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (a Account) ValidateBasics() bool {
	return ValidEmail(a.Email) &&
		strings.TrimSpace(a.PasswordHash) != "" &&
		strings.TrimSpace(a.Name) != "" &&
		strings.TrimSpace(a.Locale) != ""
}

func ValidEmail(email string) bool {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return false
	}
	parsed, err := mail.ParseAddress(trimmed)
	return err == nil && parsed.Address == trimmed
}

// NormalizeLocale lowers the tag and keeps only the language part.
// "es-MX" and "ES" both become "es"; blank stays blank for the caller
// to default.
func NormalizeLocale(locale string) string {
	trimmed := strings.ToLower(strings.TrimSpace(locale))
	if idx := strings.IndexAny(trimmed, "-_"); idx > 0 {
		trimmed = trimmed[:idx]
	}
	return trimmed
}
