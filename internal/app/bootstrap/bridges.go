package bootstrap

import (
	"context"

	formsports "github.com/ieth0/forms/contexts/forms-core/forms-service/ports"
	responsesports "github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
	accountsports "github.com/ieth0/forms/contexts/identity-access/accounts-service/ports"
	emailports "github.com/ieth0/forms/contexts/notifications/email-service/ports"
	"github.com/ieth0/forms/internal/platform/messaging"
	"github.com/ieth0/forms/internal/shared/events"
)

// Each context declares its own event envelope so application code never
// imports the platform. The envelopes are field-identical, which keeps
// these bridges to plain struct conversions.

type responsesPublisher struct {
	bus *messaging.Bus
}

func (p responsesPublisher) Publish(ctx context.Context, topic string, event responsesports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope(event))
}

type formsPublisher struct {
	bus *messaging.Bus
}

func (p formsPublisher) Publish(ctx context.Context, topic string, event formsports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope(event))
}

type accountsPublisher struct {
	bus *messaging.Bus
}

func (p accountsPublisher) Publish(ctx context.Context, topic string, event accountsports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope(event))
}

type mailPublisher struct {
	bus *messaging.Bus
}

func (p mailPublisher) Publish(ctx context.Context, topic string, event emailports.EventEnvelope) error {
	return p.bus.Publish(ctx, topic, events.Envelope(event))
}

type responsesSubscriber struct {
	bus *messaging.Bus
}

func (s responsesSubscriber) Subscribe(
	ctx context.Context,
	topic string,
	subscriberName string,
	handler func(context.Context, responsesports.EventEnvelope) error,
) error {
	return s.bus.Subscribe(ctx, topic, subscriberName, func(ctx context.Context, event events.Envelope) error {
		return handler(ctx, responsesports.EventEnvelope(event))
	})
}

type mailSubscriber struct {
	bus *messaging.Bus
}

func (s mailSubscriber) Subscribe(
	ctx context.Context,
	topic string,
	subscriberName string,
	handler func(context.Context, emailports.EventEnvelope) error,
) error {
	return s.bus.Subscribe(ctx, topic, subscriberName, func(ctx context.Context, event events.Envelope) error {
		return handler(ctx, emailports.EventEnvelope(event))
	})
}

// accountCredentials exposes stored SMTP URLs to the email context.
type accountCredentials struct {
	accounts accountsports.Repository
}

func (c accountCredentials) AccountSMTPURL(ctx context.Context, accountID string) (string, error) {
	account, err := c.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return "", err
	}
	return account.SMTPURL, nil
}

// mailDirectory resolves notification targets from the owning contexts.
type mailDirectory struct {
	forms    formsports.Repository
	accounts accountsports.Repository
}

// FormAlert names the alert recipients of a form. A form with no alert
// list falls back to the owner's address.
func (d mailDirectory) FormAlert(ctx context.Context, formID string) (emailports.FormAlert, error) {
	form, err := d.forms.GetForm(ctx, formID)
	if err != nil {
		return emailports.FormAlert{}, err
	}
	account, err := d.accounts.GetAccount(ctx, form.AccountID)
	if err != nil {
		return emailports.FormAlert{}, err
	}
	recipients := form.AlertEmails
	if len(recipients) == 0 {
		recipients = []string{account.Email}
	}
	return emailports.FormAlert{
		AccountID:  form.AccountID,
		FormName:   form.Name,
		Recipients: recipients,
		Locale:     account.Locale,
	}, nil
}

func (d mailDirectory) AccountContact(ctx context.Context, accountID string) (emailports.AccountContact, error) {
	account, err := d.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return emailports.AccountContact{}, err
	}
	return emailports.AccountContact{
		Email:  account.Email,
		Name:   account.Name,
		Locale: account.Locale,
	}, nil
}
