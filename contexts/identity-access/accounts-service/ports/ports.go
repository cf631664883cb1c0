package ports

import (
	"context"
	"time"

	"github.com/ieth0/forms/contexts/identity-access/accounts-service/domain/entities"
)

type Repository interface {
	CreateAccount(ctx context.Context, account entities.Account) error
	UpdateAccount(ctx context.Context, account entities.Account) error
	GetAccount(ctx context.Context, accountID string) (entities.Account, error)
	GetAccountByEmail(ctx context.Context, email string) (entities.Account, error)
}

// PasswordHasher hides the hash scheme from the application layer.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// TokenSigner issues and verifies dashboard session tokens.
type TokenSigner interface {
	Sign(accountID string, issuedAt time.Time, ttl time.Duration) (string, error)
	Verify(token string) (string, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// AnalyticsTopic carries account activity events on the in-process bus.
const AnalyticsTopic = "analytics.accounts"

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
