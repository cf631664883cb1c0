package memory

import (
	"context"
	"sync"

	"github.com/ieth0/forms/contexts/notifications/email-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/notifications/email-service/domain/errors"
	"github.com/ieth0/forms/contexts/notifications/email-service/ports"
)

// Delivery records one message handed to the in-memory mailer.
type Delivery struct {
	AccountID string
	Message   entities.Message
}

// Mailer keeps deliveries in memory instead of speaking SMTP.
type Mailer struct {
	mu         sync.Mutex
	deliveries []Delivery

	// Unconfigured makes transport resolution fail with ErrNoTransport.
	Unconfigured bool
	// RejectAll makes every delivery report zero accepted recipients.
	RejectAll bool
}

func NewMailer() *Mailer {
	return &Mailer{}
}

func (m *Mailer) ForAccount(_ context.Context, accountID string) (ports.Transport, error) {
	if m.Unconfigured {
		return nil, domainerrors.ErrNoTransport
	}
	return accountTransport{mailer: m, accountID: accountID}, nil
}

func (m *Mailer) Deliveries() []Delivery {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Delivery, len(m.deliveries))
	copy(out, m.deliveries)
	return out
}

type accountTransport struct {
	mailer    *Mailer
	accountID string
}

func (t accountTransport) Deliver(_ context.Context, message entities.Message) (int, error) {
	t.mailer.mu.Lock()
	defer t.mailer.mu.Unlock()
	if t.mailer.RejectAll {
		return 0, nil
	}
	t.mailer.deliveries = append(t.mailer.deliveries, Delivery{
		AccountID: t.accountID,
		Message:   message,
	})
	return len(message.To), nil
}
