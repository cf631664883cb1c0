package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ieth0/forms/contexts/notifications/email-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/notifications/email-service/domain/errors"
	"github.com/ieth0/forms/contexts/notifications/email-service/ports"
)

// Template names shipped in the templates directory.
const (
	TemplateNewResponse = "new_response"
	TemplateWelcome     = "welcome"
)

const fallbackLocale = "en"

type Service struct {
	Templates     ports.TemplateStore
	Transports    ports.TransportResolver
	Clock         ports.Clock
	IDGen         ports.IDGenerator
	Publisher     ports.EventPublisher
	DefaultLocale string
	Logger        *slog.Logger
}

type SendCommand struct {
	AccountID string
	To        []string
	From      string
	ReplyTo   string
	Subject   string
	TextBody  string
	HTMLBody  string
}

// TemplateOverrides replace the defaults a template declares in its
// front matter. Empty fields keep the template's values.
type TemplateOverrides struct {
	Subject string
	From    string
	ReplyTo string
}

type SendTemplateCommand struct {
	AccountID string
	To        []string
	Template  string
	Locale    string
	Variables map[string]any
	Overrides TemplateOverrides
}

// Send delivers a plain or HTML message through the account's transport.
// The returned count is how many recipients were accepted; delivery
// succeeded when it is at least one.
func (s Service) Send(ctx context.Context, cmd SendCommand) (int, error) {
	message := entities.Message{
		From:     strings.TrimSpace(cmd.From),
		ReplyTo:  strings.TrimSpace(cmd.ReplyTo),
		To:       trimRecipients(cmd.To),
		Subject:  strings.TrimSpace(cmd.Subject),
		TextBody: cmd.TextBody,
		HTMLBody: cmd.HTMLBody,
	}
	if !message.ValidateBasics() {
		return 0, domainerrors.ErrInvalidMessage
	}
	return s.deliver(ctx, cmd.AccountID, message, map[string]any{
		"recipient_count": len(message.To),
	})
}

// SendTemplate renders a stored template and delivers it. Front matter
// supplies the subject and sender defaults; overrides win where set.
func (s Service) SendTemplate(ctx context.Context, cmd SendTemplateCommand) (int, error) {
	logger := ResolveLogger(s.Logger)
	locale := strings.TrimSpace(cmd.Locale)
	if locale == "" {
		locale = s.locale()
	}
	rendered, err := s.Templates.Render(cmd.Template, locale, cmd.Variables)
	if err != nil {
		logger.Warn("template render failed",
			"event", "mail_template_render_failed",
			"module", "notifications/email-service",
			"layer", "application",
			"template", cmd.Template,
			"locale", locale,
			"error", err.Error(),
		)
		return 0, err
	}

	message := entities.Message{
		From:     firstNonBlank(cmd.Overrides.From, rendered.From),
		ReplyTo:  firstNonBlank(cmd.Overrides.ReplyTo, rendered.ReplyTo),
		To:       trimRecipients(cmd.To),
		Subject:  firstNonBlank(cmd.Overrides.Subject, rendered.Subject),
		TextBody: rendered.TextBody,
		HTMLBody: rendered.HTMLBody,
	}
	if !message.ValidateBasics() {
		return 0, domainerrors.ErrInvalidMessage
	}
	return s.deliver(ctx, cmd.AccountID, message, map[string]any{
		"recipient_count": len(message.To),
		"template":        cmd.Template,
		"locale":          rendered.Locale,
	})
}

// SendTest pushes a short probe message through the account's transport
// so dashboard users can verify their SMTP settings.
func (s Service) SendTest(ctx context.Context, accountID string, recipient string) (int, error) {
	return s.Send(ctx, SendCommand{
		AccountID: accountID,
		To:        []string{recipient},
		Subject:   "Delivery test",
		TextBody: fmt.Sprintf(
			"This test message was sent at %s to confirm your mail settings.",
			s.now().Format(time.RFC1123),
		),
	})
}

func (s Service) deliver(ctx context.Context, accountID string, message entities.Message, payload map[string]any) (int, error) {
	logger := ResolveLogger(s.Logger)
	transport, err := s.Transports.ForAccount(ctx, accountID)
	if err != nil {
		logger.Warn("no transport for message",
			"event", "mail_transport_missing",
			"module", "notifications/email-service",
			"layer", "application",
			"account_id", accountID,
			"error", err.Error(),
		)
		return 0, err
	}

	accepted, err := transport.Deliver(ctx, message)
	if accepted == 0 {
		if err == nil {
			err = domainerrors.ErrSendFailed
		} else {
			err = fmt.Errorf("%w: %v", domainerrors.ErrSendFailed, err)
		}
		logger.Error("mail delivery failed",
			"event", "mail_send_failed",
			"module", "notifications/email-service",
			"layer", "application",
			"account_id", accountID,
			"recipient_count", len(message.To),
			"error", err.Error(),
		)
		return 0, err
	}

	payload["accepted_count"] = accepted
	s.publish(ctx, "mail.sent", accountID, payload)
	logger.Info("mail sent",
		"event", "mail_sent",
		"module", "notifications/email-service",
		"layer", "application",
		"account_id", accountID,
		"accepted_count", accepted,
		"recipient_count", len(message.To),
	)
	return accepted, nil
}

func (s Service) publish(ctx context.Context, eventType string, accountID string, payload map[string]any) {
	if s.Publisher == nil || s.IDGen == nil {
		return
	}
	eventID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return
	}
	messageID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return
	}
	payload["message_id"] = messageID
	envelope := ports.EventEnvelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "email-service",
		OccurredAtUTC:  s.now(),
		AccountID:      accountID,
		EntityType:     "message",
		EntityID:       messageID,
		PayloadVersion: 1,
		Payload:        payload,
	}
	if err := s.Publisher.Publish(ctx, ports.AnalyticsTopic, envelope); err != nil {
		ResolveLogger(s.Logger).Warn("mail event publish failed",
			"event", "mail_event_publish_failed",
			"module", "notifications/email-service",
			"layer", "application",
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"error", err.Error(),
		)
	}
}

func (s Service) locale() string {
	locale := strings.ToLower(strings.TrimSpace(s.DefaultLocale))
	if locale == "" {
		return fallbackLocale
	}
	return locale
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func trimRecipients(recipients []string) []string {
	trimmed := make([]string, 0, len(recipients))
	for _, recipient := range recipients {
		value := strings.TrimSpace(recipient)
		if value == "" {
			continue
		}
		trimmed = append(trimmed, value)
	}
	return trimmed
}

func firstNonBlank(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
