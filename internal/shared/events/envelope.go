package events

import "time"

// Envelope is the analytics event shape shared by every context.
// Events are fire-and-forget; consumers must tolerate duplicates.
type Envelope struct {
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

// Topics group envelopes on the in-process bus.
const (
	TopicResponses = "analytics.responses"
	TopicForms     = "analytics.forms"
	TopicAccounts  = "analytics.accounts"
	TopicMail      = "analytics.mail"
)
