package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/forms-service/ports"
)

func newFormEnvelope(
	eventID string,
	eventType string,
	accountID string,
	formID string,
	occurredAt time.Time,
	payload map[string]any,
) ports.EventEnvelope {
	return ports.EventEnvelope{
		EventID:        eventID,
		EventType:      eventType,
		SourceService:  "forms-service",
		OccurredAtUTC:  occurredAt.UTC(),
		AccountID:      accountID,
		EntityType:     "form",
		EntityID:       formID,
		PayloadVersion: 1,
		Payload:        payload,
	}
}

// publishEvent hands an envelope to the bus. Form lifecycle events are
// fire-and-forget, so failures are logged and never fail the owning operation.
func publishEvent(
	ctx context.Context,
	publisher ports.EventPublisher,
	logger *slog.Logger,
	envelope ports.EventEnvelope,
) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, ports.AnalyticsTopic, envelope); err != nil {
		logger.Warn("form event publish failed",
			"event", "form_event_publish_failed",
			"module", "forms-core/forms-service",
			"layer", "application",
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"error", err.Error(),
		)
	}
}
