package ports

import (
	"context"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/forms-service/domain/entities"
)

type Repository interface {
	CreateForm(ctx context.Context, form entities.Form) error
	UpdateForm(ctx context.Context, form entities.Form) error
	GetForm(ctx context.Context, formID string) (entities.Form, error)
	GetFormByKey(ctx context.Context, key string) (entities.Form, error)
	ListForms(ctx context.Context, accountID string) ([]entities.Form, error)
	DeleteForm(ctx context.Context, formID string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AnalyticsTopic carries form lifecycle events on the in-process bus.
// The responses context subscribes here to clean up after form deletion.
const AnalyticsTopic = "analytics.forms"

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
