package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

type seqIDGen struct {
	prefix string
	n      int
}

func (g *seqIDGen) NewID(_ context.Context) (string, error) {
	g.n++
	return fmt.Sprintf("%s_%d", g.prefix, g.n), nil
}

type capturePublisher struct {
	events []ports.EventEnvelope
}

func (p *capturePublisher) Publish(_ context.Context, _ string, event ports.EventEnvelope) error {
	p.events = append(p.events, event)
	return nil
}

func (p *capturePublisher) typesSeen() []string {
	types := make([]string, 0, len(p.events))
	for _, event := range p.events {
		types = append(types, event.EventType)
	}
	return types
}

type fakeCipher struct{}

func (fakeCipher) Encrypt(plaintext string) (string, error) {
	return "sealed:" + plaintext, nil
}

func (fakeCipher) Decrypt(ciphertext string) (string, error) {
	return strings.TrimPrefix(ciphertext, "sealed:"), nil
}
