package workers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/ieth0/forms/contexts/notifications/email-service/adapters/memory"
	application "github.com/ieth0/forms/contexts/notifications/email-service/application"
	"github.com/ieth0/forms/contexts/notifications/email-service/ports"
)

func newWelcomeFixture(directory fakeDirectory) (WelcomeMailConsumer, *memory.Mailer, *memory.Templates) {
	templates := memory.NewTemplates("en")
	mailer := memory.NewMailer()
	consumer := WelcomeMailConsumer{
		Directory: directory,
		Sender: application.Service{
			Templates:     templates,
			Transports:    mailer,
			DefaultLocale: "en",
		},
	}
	return consumer, mailer, templates
}

func accountRegisteredEvent() ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:       "evt_1",
		EventType:     "account.registered",
		OccurredAtUTC: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC),
		AccountID:     "acc_1",
		EntityID:      "acc_1",
		Payload:       map[string]any{"account_id": "acc_1", "locale": "es"},
	}
}

func TestWelcomeMailUsesContactLocale(t *testing.T) {
	consumer, mailer, templates := newWelcomeFixture(fakeDirectory{contact: ports.AccountContact{
		Email:  "maria@example.com",
		Name:   "María",
		Locale: "es",
	}})
	templates.Add("welcome", "en", "Welcome to Forms", "no-reply@forms.local", "Hi {{.Name}}!")
	templates.Add("welcome", "es", "Bienvenido a Forms", "no-reply@forms.local", "¡Hola {{.Name}}!")

	if err := consumer.handleAccountEvent(context.Background(), accountRegisteredEvent()); err != nil {
		t.Fatalf("handleAccountEvent: %v", err)
	}

	deliveries := mailer.Deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("delivered %d messages, want 1", len(deliveries))
	}
	message := deliveries[0].Message
	if len(message.To) != 1 || message.To[0] != "maria@example.com" {
		t.Fatalf("recipients = %v", message.To)
	}
	if message.Subject != "Bienvenido a Forms" {
		t.Fatalf("subject = %q, want the es locale", message.Subject)
	}
	if !strings.Contains(message.TextBody, "María") {
		t.Fatalf("body misses the contact name: %q", message.TextBody)
	}
}

func TestWelcomeMailFallsBackToDefaultLocale(t *testing.T) {
	consumer, mailer, templates := newWelcomeFixture(fakeDirectory{contact: ports.AccountContact{
		Email:  "maria@example.com",
		Name:   "María",
		Locale: "es",
	}})
	templates.Add("welcome", "en", "Welcome to Forms", "no-reply@forms.local", "Hi {{.Name}}!")

	if err := consumer.handleAccountEvent(context.Background(), accountRegisteredEvent()); err != nil {
		t.Fatalf("handleAccountEvent: %v", err)
	}

	deliveries := mailer.Deliveries()
	if len(deliveries) != 1 {
		t.Fatalf("delivered %d messages, want 1", len(deliveries))
	}
	if deliveries[0].Message.Subject != "Welcome to Forms" {
		t.Fatalf("subject = %q, want the en fallback", deliveries[0].Message.Subject)
	}
}

func TestWelcomeMailIgnoresOtherEventTypes(t *testing.T) {
	consumer, mailer, templates := newWelcomeFixture(fakeDirectory{contact: ports.AccountContact{
		Email: "maria@example.com",
	}})
	templates.Add("welcome", "en", "Welcome to Forms", "no-reply@forms.local", "Hi!")

	event := accountRegisteredEvent()
	event.EventType = "account.updated"
	if err := consumer.handleAccountEvent(context.Background(), event); err != nil {
		t.Fatalf("handleAccountEvent: %v", err)
	}
	if deliveries := mailer.Deliveries(); len(deliveries) != 0 {
		t.Fatalf("ignored event still delivered %d messages", len(deliveries))
	}
}

func TestWelcomeMailSkipsBlankContact(t *testing.T) {
	consumer, mailer, templates := newWelcomeFixture(fakeDirectory{})
	templates.Add("welcome", "en", "Welcome to Forms", "no-reply@forms.local", "Hi!")

	if err := consumer.handleAccountEvent(context.Background(), accountRegisteredEvent()); err != nil {
		t.Fatalf("handleAccountEvent: %v", err)
	}
	if deliveries := mailer.Deliveries(); len(deliveries) != 0 {
		t.Fatalf("blank contact still delivered %d messages", len(deliveries))
	}
}
