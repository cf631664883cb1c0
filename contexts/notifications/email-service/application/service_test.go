package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ieth0/forms/contexts/notifications/email-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/notifications/email-service/domain/errors"
	"github.com/ieth0/forms/contexts/notifications/email-service/ports"
)

type fakeTemplates struct {
	rendered  entities.RenderedTemplate
	err       error
	gotName   string
	gotLocale string
	gotVars   map[string]any
}

func (f *fakeTemplates) Render(name string, locale string, vars map[string]any) (entities.RenderedTemplate, error) {
	f.gotName = name
	f.gotLocale = locale
	f.gotVars = vars
	if f.err != nil {
		return entities.RenderedTemplate{}, f.err
	}
	rendered := f.rendered
	rendered.Name = name
	if rendered.Locale == "" {
		rendered.Locale = locale
	}
	return rendered, nil
}

// accepted < 0 means every recipient is accepted.
type fakeTransport struct {
	accepted  int
	err       error
	delivered []entities.Message
}

func (f *fakeTransport) Deliver(_ context.Context, message entities.Message) (int, error) {
	f.delivered = append(f.delivered, message)
	if f.accepted < 0 {
		return len(message.To), f.err
	}
	return f.accepted, f.err
}

type fakeResolver struct {
	transport  ports.Transport
	err        error
	gotAccount string
}

func (f *fakeResolver) ForAccount(_ context.Context, accountID string) (ports.Transport, error) {
	f.gotAccount = accountID
	if f.err != nil {
		return nil, f.err
	}
	return f.transport, nil
}

type capturePublisher struct {
	topics []string
	events []ports.EventEnvelope
}

func (p *capturePublisher) Publish(_ context.Context, topic string, event ports.EventEnvelope) error {
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

type fixedClock struct{ at time.Time }

func (c fixedClock) Now() time.Time { return c.at }

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID(context.Context) (string, error) {
	g.n++
	return fmt.Sprintf("id_%d", g.n), nil
}

func newTestService(transport *fakeTransport, templates *fakeTemplates) (Service, *capturePublisher) {
	publisher := &capturePublisher{}
	service := Service{
		Templates:     templates,
		Transports:    &fakeResolver{transport: transport},
		Clock:         fixedClock{at: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)},
		IDGen:         &seqIDGen{},
		Publisher:     publisher,
		DefaultLocale: "en",
	}
	return service, publisher
}

func TestSendDeliversAndPublishesEvent(t *testing.T) {
	transport := &fakeTransport{accepted: -1}
	service, publisher := newTestService(transport, &fakeTemplates{})

	accepted, err := service.Send(context.Background(), SendCommand{
		AccountID: "acc_1",
		To:        []string{"one@example.com", "two@example.com"},
		Subject:   "Hello",
		TextBody:  "Plain part",
		HTMLBody:  "<p>Rich part</p>",
	})
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if accepted != 2 {
		t.Fatalf("accepted = %d, want 2", accepted)
	}
	if len(transport.delivered) != 1 {
		t.Fatalf("delivered %d messages, want 1", len(transport.delivered))
	}
	message := transport.delivered[0]
	if len(message.To) != 2 || message.Subject != "Hello" {
		t.Fatalf("unexpected message: %+v", message)
	}

	if len(publisher.events) != 1 {
		t.Fatalf("published %d events, want 1", len(publisher.events))
	}
	if publisher.topics[0] != ports.AnalyticsTopic {
		t.Fatalf("topic = %q", publisher.topics[0])
	}
	event := publisher.events[0]
	if event.EventType != "mail.sent" || event.AccountID != "acc_1" {
		t.Fatalf("unexpected event: %+v", event)
	}
	if event.Payload["accepted_count"] != 2 || event.Payload["recipient_count"] != 2 {
		t.Fatalf("unexpected payload: %+v", event.Payload)
	}
}

func TestSendRejectsInvalidMessages(t *testing.T) {
	transport := &fakeTransport{accepted: -1}
	service, _ := newTestService(transport, &fakeTemplates{})

	commands := []SendCommand{
		{AccountID: "acc_1", Subject: "Hi", TextBody: "body"},
		{AccountID: "acc_1", To: []string{"not-an-address"}, Subject: "Hi", TextBody: "body"},
		{AccountID: "acc_1", To: []string{"a@example.com"}, TextBody: "body"},
		{AccountID: "acc_1", To: []string{"a@example.com"}, Subject: "Hi"},
	}
	for i, cmd := range commands {
		if _, err := service.Send(context.Background(), cmd); !errors.Is(err, domainerrors.ErrInvalidMessage) {
			t.Fatalf("command %d: err = %v, want ErrInvalidMessage", i, err)
		}
	}
	if len(transport.delivered) != 0 {
		t.Fatalf("invalid commands reached the transport: %d", len(transport.delivered))
	}
}

func TestSendFailsWithoutTransport(t *testing.T) {
	service, publisher := newTestService(&fakeTransport{accepted: -1}, &fakeTemplates{})
	service.Transports = &fakeResolver{err: domainerrors.ErrNoTransport}

	_, err := service.Send(context.Background(), SendCommand{
		AccountID: "acc_1",
		To:        []string{"a@example.com"},
		Subject:   "Hi",
		TextBody:  "body",
	})
	if !errors.Is(err, domainerrors.ErrNoTransport) {
		t.Fatalf("err = %v, want ErrNoTransport", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("failed send published %d events", len(publisher.events))
	}
}

func TestSendReportsFailureWhenNoRecipientAccepted(t *testing.T) {
	transport := &fakeTransport{accepted: 0, err: errors.New("550 mailbox unavailable")}
	service, publisher := newTestService(transport, &fakeTemplates{})

	_, err := service.Send(context.Background(), SendCommand{
		AccountID: "acc_1",
		To:        []string{"a@example.com"},
		Subject:   "Hi",
		TextBody:  "body",
	})
	if !errors.Is(err, domainerrors.ErrSendFailed) {
		t.Fatalf("err = %v, want ErrSendFailed", err)
	}

	transport.err = nil
	if _, err := service.Send(context.Background(), SendCommand{
		AccountID: "acc_1",
		To:        []string{"a@example.com"},
		Subject:   "Hi",
		TextBody:  "body",
	}); !errors.Is(err, domainerrors.ErrSendFailed) {
		t.Fatalf("err without transport error = %v, want ErrSendFailed", err)
	}
	if len(publisher.events) != 0 {
		t.Fatalf("failed sends published %d events", len(publisher.events))
	}
}

func TestSendTemplateMergesFrontMatterAndOverrides(t *testing.T) {
	templates := &fakeTemplates{rendered: entities.RenderedTemplate{
		Locale:   "en",
		Subject:  "Template subject",
		From:     "Forms <no-reply@forms.local>",
		ReplyTo:  "support@forms.local",
		TextBody: "body text",
		HTMLBody: "<p>body text</p>",
	}}
	transport := &fakeTransport{accepted: -1}
	service, publisher := newTestService(transport, templates)

	accepted, err := service.SendTemplate(context.Background(), SendTemplateCommand{
		AccountID: "acc_1",
		To:        []string{"alerts@example.com"},
		Template:  "new_response",
		Variables: map[string]any{"FormName": "Contact"},
		Overrides: TemplateOverrides{Subject: "Override subject"},
	})
	if err != nil {
		t.Fatalf("SendTemplate: %v", err)
	}
	if accepted != 1 {
		t.Fatalf("accepted = %d, want 1", accepted)
	}
	if templates.gotName != "new_response" || templates.gotLocale != "en" {
		t.Fatalf("rendered %s.%s, want new_response.en", templates.gotName, templates.gotLocale)
	}

	message := transport.delivered[0]
	if message.Subject != "Override subject" {
		t.Fatalf("subject = %q, override lost", message.Subject)
	}
	if message.From != "Forms <no-reply@forms.local>" || message.ReplyTo != "support@forms.local" {
		t.Fatalf("front matter defaults lost: %+v", message)
	}
	if message.TextBody != "body text" || message.HTMLBody != "<p>body text</p>" {
		t.Fatalf("rendered bodies lost: %+v", message)
	}

	event := publisher.events[0]
	if event.Payload["template"] != "new_response" || event.Payload["locale"] != "en" {
		t.Fatalf("unexpected payload: %+v", event.Payload)
	}
}

func TestSendTemplateMissingTemplate(t *testing.T) {
	templates := &fakeTemplates{err: fmt.Errorf("%w: digest", domainerrors.ErrTemplateNotFound)}
	transport := &fakeTransport{accepted: -1}
	service, _ := newTestService(transport, templates)

	_, err := service.SendTemplate(context.Background(), SendTemplateCommand{
		AccountID: "acc_1",
		To:        []string{"a@example.com"},
		Template:  "digest",
	})
	if !errors.Is(err, domainerrors.ErrTemplateNotFound) {
		t.Fatalf("err = %v, want ErrTemplateNotFound", err)
	}
	if len(transport.delivered) != 0 {
		t.Fatalf("missing template still delivered %d messages", len(transport.delivered))
	}
}

func TestSendTestUsesProbeMessage(t *testing.T) {
	transport := &fakeTransport{accepted: -1}
	resolver := &fakeResolver{transport: transport}
	service := Service{
		Transports: resolver,
		Clock:      fixedClock{at: time.Date(2024, 5, 20, 9, 0, 0, 0, time.UTC)},
	}

	accepted, err := service.SendTest(context.Background(), "acc_1", "owner@example.com")
	if err != nil {
		t.Fatalf("SendTest: %v", err)
	}
	if accepted != 1 {
		t.Fatalf("accepted = %d, want 1", accepted)
	}
	if resolver.gotAccount != "acc_1" {
		t.Fatalf("resolved account = %q", resolver.gotAccount)
	}
	message := transport.delivered[0]
	if len(message.To) != 1 || message.To[0] != "owner@example.com" {
		t.Fatalf("unexpected recipients: %v", message.To)
	}
	if message.Subject != "Delivery test" {
		t.Fatalf("subject = %q", message.Subject)
	}
	if !strings.Contains(message.TextBody, "20 May 2024") {
		t.Fatalf("probe body misses the timestamp: %q", message.TextBody)
	}
}
