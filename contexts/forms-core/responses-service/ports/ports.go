package ports

import (
	"context"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
)

// ListView selects which slice of an inbox a listing returns.
type ListView string

const (
	ViewDefault ListView = "default"
	ViewSpam    ListView = "spam"
	ViewUnread  ListView = "unread"
	ViewStarred ListView = "starred"
)

type ResponseFilter struct {
	AccountID string
	FormID    string
	View      ListView
	Offset    int
	Limit     int
}

type ResponseCounts struct {
	Total   int64
	Read    int64
	Spam    int64
	Starred int64
	Unread  int64
}

type Repository interface {
	CreateResponse(ctx context.Context, response entities.Response) error
	UpdateResponse(ctx context.Context, response entities.Response) error
	GetResponse(ctx context.Context, responseID string) (entities.Response, error)
	ListResponses(ctx context.Context, filter ResponseFilter) ([]entities.Response, error)
	CountResponses(ctx context.Context, accountID string, formID string) (ResponseCounts, error)
	ListExpired(ctx context.Context, cutoff time.Time, limit int) ([]entities.Response, error)
	// ListByForm returns every row of a form regardless of flags.
	ListByForm(ctx context.Context, formID string, limit int) ([]entities.Response, error)
	PurgeResponse(ctx context.Context, responseID string) error
	AddNote(ctx context.Context, note entities.ResponseNote) error
	ListNotes(ctx context.Context, responseID string) ([]entities.ResponseNote, error)
	AddFile(ctx context.Context, file entities.ResponseFile) error
	ListFiles(ctx context.Context, responseID string) ([]entities.ResponseFile, error)
}

// FileStore relocates uploads between temporary and permanent storage.
type FileStore interface {
	Promote(key string, accountID string, responseID string) (string, error)
	Remove(key string) error
	RemoveResponse(accountID string, responseID string) error
}

// PayloadCipher seals and opens response payloads for forms that require it.
type PayloadCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AnalyticsTopic carries response activity events on the in-process bus.
const AnalyticsTopic = "analytics.responses"

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
