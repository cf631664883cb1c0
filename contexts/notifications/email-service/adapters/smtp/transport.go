// Package smtp speaks to mail servers through go-mail dialers built
// from smtp:// and smtps:// configuration URLs.
package smtp

import (
	"context"
	"crypto/tls"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/ieth0/forms/contexts/notifications/email-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/notifications/email-service/domain/errors"
)

// greetingTimeout bounds the initial SMTP dial and greeting exchange.
const greetingTimeout = 10 * time.Second

// Transport delivers messages through one SMTP endpoint.
type Transport struct {
	dialer *mail.Dialer
	from   string
	logger *slog.Logger
}

// NewTransport parses an smtp:// or smtps:// URL into a ready dialer.
// Recognized query parameters: tls (auto|starttls|ssl|none) and from.
func NewTransport(rawURL string, logger *slog.Logger) (*Transport, error) {
	if logger == nil {
		logger = slog.Default()
	}
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domainerrors.ErrInvalidTransportURL, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "smtp" && scheme != "smtps" {
		return nil, fmt.Errorf("%w: scheme %q", domainerrors.ErrInvalidTransportURL, parsed.Scheme)
	}
	host := parsed.Hostname()
	if host == "" {
		return nil, fmt.Errorf("%w: missing host", domainerrors.ErrInvalidTransportURL)
	}
	port := 587
	if scheme == "smtps" {
		port = 465
	}
	if raw := parsed.Port(); raw != "" {
		port, err = strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("%w: port %q", domainerrors.ErrInvalidTransportURL, raw)
		}
	}

	username := parsed.User.Username()
	password, _ := parsed.User.Password()
	dialer := mail.NewDialer(host, port, username, password)
	dialer.Timeout = greetingTimeout
	dialer.TLSConfig = &tls.Config{ServerName: host}

	mode := strings.ToLower(parsed.Query().Get("tls"))
	if mode == "" && scheme == "smtps" {
		mode = "ssl"
	}
	switch mode {
	case "ssl":
		dialer.SSL = true
	case "none":
		// Local relays without certificates, mail catchers included.
		dialer.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	case "", "auto", "starttls":
		// STARTTLS is negotiated when the server offers it.
	default:
		return nil, fmt.Errorf("%w: tls mode %q", domainerrors.ErrInvalidTransportURL, mode)
	}

	return &Transport{
		dialer: dialer,
		from:   strings.TrimSpace(parsed.Query().Get("from")),
		logger: logger,
	}, nil
}

// Deliver sends one copy per recipient over a single connection. At
// least one accepted recipient counts as success; rejected recipients
// are logged and skipped without retry.
func (t *Transport) Deliver(ctx context.Context, message entities.Message) (int, error) {
	from := strings.TrimSpace(message.From)
	if from == "" {
		from = t.from
	}
	if from == "" {
		from = t.dialer.Username
	}
	if from == "" {
		return 0, fmt.Errorf("%w: missing sender address", domainerrors.ErrInvalidMessage)
	}

	sender, err := t.dialer.Dial()
	if err != nil {
		return 0, fmt.Errorf("dial smtp %s:%d: %w", t.dialer.Host, t.dialer.Port, err)
	}
	defer sender.Close()

	accepted := 0
	var lastErr error
	for _, recipient := range message.To {
		if err := ctx.Err(); err != nil {
			return accepted, err
		}
		if err := mail.Send(sender, buildMessage(from, recipient, message)); err != nil {
			lastErr = err
			t.logger.Warn("recipient rejected",
				"event", "mail_recipient_rejected",
				"module", "notifications/email-service",
				"layer", "adapter",
				"host", t.dialer.Host,
				"recipient", recipient,
				"error", err.Error(),
			)
			continue
		}
		accepted++
	}
	if accepted == 0 {
		return 0, lastErr
	}
	return accepted, nil
}

func buildMessage(from string, recipient string, message entities.Message) *mail.Message {
	m := mail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", recipient)
	if message.ReplyTo != "" {
		m.SetHeader("Reply-To", message.ReplyTo)
	}
	m.SetHeader("Subject", message.Subject)
	if message.TextBody != "" {
		m.SetBody("text/plain", message.TextBody)
	}
	if message.HTMLBody != "" {
		if message.TextBody == "" {
			m.SetBody("text/html", message.HTMLBody)
		} else {
			m.AddAlternative("text/html", message.HTMLBody)
		}
	}
	return m
}
