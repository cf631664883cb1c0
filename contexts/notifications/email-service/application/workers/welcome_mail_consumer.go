package workers

import (
	"context"
	"log/slog"
	"strings"

	application "github.com/ieth0/forms/contexts/notifications/email-service/application"
	"github.com/ieth0/forms/contexts/notifications/email-service/ports"
)

const (
	accountEventsTopic        = "analytics.accounts"
	defaultWelcomeMailHandler = "email-service-welcome-mail"
)

// WelcomeMailConsumer greets newly registered accounts.
type WelcomeMailConsumer struct {
	Subscriber     ports.EventSubscriber
	Directory      ports.Directory
	Sender         application.Service
	SubscriberName string
	Logger         *slog.Logger
}

func (c WelcomeMailConsumer) Start(ctx context.Context) error {
	name := strings.TrimSpace(c.SubscriberName)
	if name == "" {
		name = defaultWelcomeMailHandler
	}
	return c.Subscriber.Subscribe(ctx, accountEventsTopic, name, c.handleAccountEvent)
}

func (c WelcomeMailConsumer) handleAccountEvent(ctx context.Context, event ports.EventEnvelope) error {
	if event.EventType != "account.registered" {
		return nil
	}
	logger := application.ResolveLogger(c.Logger)

	accountID := strings.TrimSpace(event.AccountID)
	if accountID == "" {
		accountID = event.EntityID
	}
	contact, err := c.Directory.AccountContact(ctx, accountID)
	if err != nil {
		logger.Warn("account contact lookup failed",
			"event", "welcome_mail_lookup_failed",
			"module", "notifications/email-service",
			"layer", "worker",
			"account_id", accountID,
			"error", err.Error(),
		)
		return nil
	}
	if strings.TrimSpace(contact.Email) == "" {
		return nil
	}

	_, err = c.Sender.SendTemplate(ctx, application.SendTemplateCommand{
		AccountID: accountID,
		To:        []string{contact.Email},
		Template:  application.TemplateWelcome,
		Locale:    contact.Locale,
		Variables: map[string]any{
			"Name":  contact.Name,
			"Email": contact.Email,
		},
	})
	if err != nil {
		// Welcome mail is best effort; the bus does not redeliver.
		logger.Error("welcome mail failed",
			"event", "welcome_mail_send_failed",
			"module", "notifications/email-service",
			"layer", "worker",
			"account_id", accountID,
			"error", err.Error(),
		)
	}
	return nil
}
