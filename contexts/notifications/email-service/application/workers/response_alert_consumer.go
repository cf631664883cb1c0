package workers

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/ieth0/forms/contexts/notifications/email-service/application"
	"github.com/ieth0/forms/contexts/notifications/email-service/ports"
)

const (
	responseEventsTopic         = "analytics.responses"
	defaultResponseAlertHandler = "email-service-response-alerts"
)

// ResponseAlertConsumer mails a form's alert recipients whenever the
// form receives a new response.
type ResponseAlertConsumer struct {
	Subscriber     ports.EventSubscriber
	Directory      ports.Directory
	Sender         application.Service
	SubscriberName string
	Logger         *slog.Logger
}

func (c ResponseAlertConsumer) Start(ctx context.Context) error {
	name := strings.TrimSpace(c.SubscriberName)
	if name == "" {
		name = defaultResponseAlertHandler
	}
	return c.Subscriber.Subscribe(ctx, responseEventsTopic, name, c.handleResponseEvent)
}

func (c ResponseAlertConsumer) handleResponseEvent(ctx context.Context, event ports.EventEnvelope) error {
	if event.EventType != "response.received" {
		return nil
	}
	logger := application.ResolveLogger(c.Logger)

	formID, _ := event.Payload["form_id"].(string)
	if strings.TrimSpace(formID) == "" {
		logger.Error("response.received event without form id",
			"event", "response_alert_bad_event",
			"module", "notifications/email-service",
			"layer", "worker",
			"event_id", event.EventID,
		)
		return nil
	}

	alert, err := c.Directory.FormAlert(ctx, formID)
	if err != nil {
		logger.Warn("form alert lookup failed",
			"event", "response_alert_lookup_failed",
			"module", "notifications/email-service",
			"layer", "worker",
			"form_id", formID,
			"error", err.Error(),
		)
		return nil
	}
	if len(alert.Recipients) == 0 {
		return nil
	}

	_, err = c.Sender.SendTemplate(ctx, application.SendTemplateCommand{
		AccountID: alert.AccountID,
		To:        alert.Recipients,
		Template:  application.TemplateNewResponse,
		Locale:    alert.Locale,
		Variables: map[string]any{
			"FormName":   alert.FormName,
			"ResponseID": event.EntityID,
			"ReceivedAt": event.OccurredAtUTC.Format(time.RFC1123),
		},
	})
	if err != nil {
		// Alert mail is best effort; the bus does not redeliver.
		logger.Error("response alert failed",
			"event", "response_alert_send_failed",
			"module", "notifications/email-service",
			"layer", "worker",
			"form_id", formID,
			"error", err.Error(),
		)
	}
	return nil
}
