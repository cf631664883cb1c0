package messaging

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/ieth0/forms/internal/shared/events"
)

func TestBusDeliversToSubscriber(t *testing.T) {
	bus := NewBus(slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 1)
	if err := bus.Subscribe(ctx, events.TopicResponses, "test-subscriber", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	sent := events.Envelope{
		EventID:       "event-1",
		EventType:     "response.received",
		SourceService: "responses-service",
		OccurredAtUTC: time.Now().UTC(),
		AccountID:     "account-1",
		EntityType:    "response",
		EntityID:      "response-1",
	}
	if err := bus.Publish(ctx, events.TopicResponses, sent); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != sent.EventID || got.EventType != sent.EventType {
			t.Fatalf("unexpected event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached subscriber")
	}
}

func TestBusKeepsTopicsSeparate(t *testing.T) {
	bus := NewBus(slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	received := make(chan events.Envelope, 2)
	if err := bus.Subscribe(ctx, events.TopicMail, "mail-subscriber", func(_ context.Context, event events.Envelope) error {
		received <- event
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	if err := bus.Publish(ctx, events.TopicForms, events.Envelope{EventID: "form-event"}); err != nil {
		t.Fatalf("publish forms: %v", err)
	}
	if err := bus.Publish(ctx, events.TopicMail, events.Envelope{EventID: "mail-event"}); err != nil {
		t.Fatalf("publish mail: %v", err)
	}

	select {
	case got := <-received:
		if got.EventID != "mail-event" {
			t.Fatalf("subscriber saw foreign topic event: %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("event never reached subscriber")
	}
}

func TestBusDropsWhenSubscriberSaturated(t *testing.T) {
	bus := NewBus(slog.Default())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{}, 1)
	gate := make(chan struct{})
	var handled int
	done := make(chan struct{})
	if err := bus.Subscribe(ctx, events.TopicResponses, "slow-subscriber", func(_ context.Context, _ events.Envelope) error {
		select {
		case started <- struct{}{}:
		default:
		}
		<-gate
		handled++
		if handled == subscriberBuffer+1 {
			close(done)
		}
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	// First event parks the consumer inside the handler, the next
	// subscriberBuffer fill the channel, one more has nowhere to go.
	if err := bus.Publish(ctx, events.TopicResponses, events.Envelope{EventID: "e-0"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	<-started
	for i := 1; i <= subscriberBuffer+1; i++ {
		if err := bus.Publish(ctx, events.TopicResponses, events.Envelope{}); err != nil {
			t.Fatalf("publish %d: %v", i, err)
		}
	}

	close(gate)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatalf("expected %d handled events, got %d", subscriberBuffer+1, handled)
	}
}

func TestBusCancelledSubscriberIsRemoved(t *testing.T) {
	bus := NewBus(slog.Default())
	subCtx, cancel := context.WithCancel(context.Background())

	if err := bus.Subscribe(subCtx, events.TopicAccounts, "short-lived", func(_ context.Context, _ events.Envelope) error {
		return nil
	}); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for {
		bus.mu.RLock()
		remaining := len(bus.subscribers[events.TopicAccounts])
		bus.mu.RUnlock()
		if remaining == 0 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber still registered: %d", remaining)
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := bus.Publish(context.Background(), events.TopicAccounts, events.Envelope{EventID: "late"}); err != nil {
		t.Fatalf("publish after cancel: %v", err)
	}
}
