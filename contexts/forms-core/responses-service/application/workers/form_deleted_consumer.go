package workers

import (
	"context"
	"log/slog"
	"strings"

	application "github.com/ieth0/forms/contexts/forms-core/responses-service/application"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

const (
	formEventsTopic           = "analytics.forms"
	defaultFormDeletedHandler = "responses-service-form-deleted"
)

// FormDeletedConsumer disposes of a deleted form's responses: every row is
// purged along with its notes, file rows, and stored uploads.
type FormDeletedConsumer struct {
	Subscriber     ports.EventSubscriber
	Repository     ports.Repository
	Files          ports.FileStore
	BatchSize      int
	SubscriberName string
	Logger         *slog.Logger
}

func (c FormDeletedConsumer) Start(ctx context.Context) error {
	name := strings.TrimSpace(c.SubscriberName)
	if name == "" {
		name = defaultFormDeletedHandler
	}
	return c.Subscriber.Subscribe(ctx, formEventsTopic, name, c.handleFormEvent)
}

func (c FormDeletedConsumer) handleFormEvent(ctx context.Context, event ports.EventEnvelope) error {
	if event.EventType != "form.deleted" {
		return nil
	}
	logger := application.ResolveLogger(c.Logger)

	formID, _ := event.Payload["form_id"].(string)
	if strings.TrimSpace(formID) == "" {
		formID = event.EntityID
	}
	if strings.TrimSpace(formID) == "" {
		logger.Error("form.deleted event without form id",
			"event", "response_form_cleanup_bad_event",
			"module", "forms-core/responses-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	limit := c.BatchSize
	if limit <= 0 {
		limit = 100
	}

	removed := 0
	for {
		items, err := c.Repository.ListByForm(ctx, formID, limit)
		if err != nil {
			logger.Error("form cleanup list failed",
				"event", "response_form_cleanup_list_failed",
				"module", "forms-core/responses-service",
				"layer", "worker",
				"form_id", formID,
				"error", err.Error(),
			)
			return err
		}
		if len(items) == 0 {
			break
		}
		for _, item := range items {
			if c.Files != nil {
				if err := c.Files.RemoveResponse(item.AccountID, item.ResponseID); err != nil {
					logger.Error("form cleanup file removal failed",
						"event", "response_form_cleanup_files_failed",
						"module", "forms-core/responses-service",
						"layer", "worker",
						"response_id", item.ResponseID,
						"error", err.Error(),
					)
					return err
				}
			}
			if err := c.Repository.PurgeResponse(ctx, item.ResponseID); err != nil {
				logger.Error("form cleanup purge failed",
					"event", "response_form_cleanup_purge_failed",
					"module", "forms-core/responses-service",
					"layer", "worker",
					"response_id", item.ResponseID,
					"error", err.Error(),
				)
				return err
			}
			removed++
		}
	}

	logger.Info("form responses cleaned up",
		"event", "response_form_cleanup_completed",
		"module", "forms-core/responses-service",
		"layer", "worker",
		"form_id", formID,
		"removed_count", removed,
	)
	return nil
}
