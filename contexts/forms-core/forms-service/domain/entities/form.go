package entities

import (
	"net/mail"
	"strings"
	"time"
)

// Form is the public intake endpoint an account exposes. Its Key is the
// slug embedded in the submission URL; everything else tunes how the
// collected responses are handled.
type Form struct {
	FormID          string
	AccountID       string
	Name            string
	Key             string
	Enabled         bool
	RetentionDays   int
	EncryptPayloads bool
	AlertEmails     []string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (f Form) ValidateBasics() bool {
	name := strings.TrimSpace(f.Name)
	return strings.TrimSpace(f.AccountID) != "" &&
		name != "" &&
		len(name) <= 120 &&
		f.RetentionDays >= 0 &&
		ValidAlertEmails(f.AlertEmails)
}

func ValidAlertEmails(emails []string) bool {
	for _, item := range emails {
		if _, err := mail.ParseAddress(strings.TrimSpace(item)); err != nil {
			return false
		}
	}
	return true
}
