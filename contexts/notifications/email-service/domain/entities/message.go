package entities

import (
	"net/mail"
	"strings"
)

// Message is one outbound email readied for delivery. From and ReplyTo
// may stay empty; the transport fills in its own sender default.
type Message struct {
	From     string
	ReplyTo  string
	To       []string
	Subject  string
	TextBody string
	HTMLBody string
}

// ValidateBasics reports whether the message can be handed to a
// transport: at least one well-formed recipient, a subject, and a body.
func (m Message) ValidateBasics() bool {
	if len(m.To) == 0 || strings.TrimSpace(m.Subject) == "" {
		return false
	}
	if strings.TrimSpace(m.TextBody) == "" && strings.TrimSpace(m.HTMLBody) == "" {
		return false
	}
	for _, recipient := range m.To {
		if !ValidRecipient(recipient) {
			return false
		}
	}
	return true
}

// ValidRecipient accepts bare addresses as well as "Name <addr>" forms.
func ValidRecipient(address string) bool {
	trimmed := strings.TrimSpace(address)
	if trimmed == "" {
		return false
	}
	_, err := mail.ParseAddress(trimmed)
	return err == nil
}

// RenderedTemplate is a stored template after variable substitution,
// carrying the send attributes declared in its front matter.
type RenderedTemplate struct {
	Name     string
	Locale   string
	Subject  string
	From     string
	ReplyTo  string
	TextBody string
	HTMLBody string
}
