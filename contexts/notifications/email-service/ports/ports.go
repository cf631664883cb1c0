package ports

import (
	"context"
	"time"

	"github.com/ieth0/forms/contexts/notifications/email-service/domain/entities"
)

// TemplateStore renders the markdown templates compiled at startup.
// A miss on the requested locale falls back to the default locale; a
// miss on both is ErrTemplateNotFound.
type TemplateStore interface {
	Render(name string, locale string, vars map[string]any) (entities.RenderedTemplate, error)
}

// Transport delivers a prepared message. The returned count is how many
// recipients were accepted; rejected recipients are logged, not retried.
type Transport interface {
	Deliver(ctx context.Context, message entities.Message) (int, error)
}

// TransportResolver hands out the transport serving an account: the
// cached handle, then the account's stored URL, then the platform
// default. ErrNoTransport means there is nothing to send with.
type TransportResolver interface {
	ForAccount(ctx context.Context, accountID string) (Transport, error)
}

// CredentialSource exposes per-account transport configuration owned by
// the identity context. Bootstrap bridges it to the accounts service.
type CredentialSource interface {
	AccountSMTPURL(ctx context.Context, accountID string) (string, error)
}

// FormAlert names who gets notified when a form receives a response.
type FormAlert struct {
	AccountID  string
	FormName   string
	Recipients []string
	Locale     string
}

// AccountContact is the owner-facing address of an account.
type AccountContact struct {
	Email  string
	Name   string
	Locale string
}

// Directory resolves notification targets owned by other contexts.
// Bootstrap bridges it to the forms and accounts services.
type Directory interface {
	FormAlert(ctx context.Context, formID string) (FormAlert, error)
	AccountContact(ctx context.Context, accountID string) (AccountContact, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AnalyticsTopic carries mail activity events on the in-process bus.
const AnalyticsTopic = "analytics.mail"

type EventEnvelope struct {
	EventID        string         `json:"event_id"`
	EventType      string         `json:"event_type"`
	SourceService  string         `json:"source_service"`
	OccurredAtUTC  time.Time      `json:"occurred_at_utc"`
	AccountID      string         `json:"account_id"`
	EntityType     string         `json:"entity_type"`
	EntityID       string         `json:"entity_id"`
	PayloadVersion int            `json:"payload_version"`
	Payload        map[string]any `json:"payload"`
}

type EventPublisher interface {
	Publish(ctx context.Context, topic string, event EventEnvelope) error
}

type EventSubscriber interface {
	Subscribe(ctx context.Context, topic string, subscriberName string, handler func(context.Context, EventEnvelope) error) error
}
