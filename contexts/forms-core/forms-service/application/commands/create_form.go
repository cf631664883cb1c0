package commands

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"strings"
	"time"

	application "github.com/ieth0/forms/contexts/forms-core/forms-service/application"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/forms-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/ports"
)

type CreateFormCommand struct {
	AccountID       string
	Name            string
	RetentionDays   int
	EncryptPayloads bool
	AlertEmails     []string
}

type CreateFormUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func (uc CreateFormUseCase) Execute(ctx context.Context, cmd CreateFormCommand) (entities.Form, error) {
	logger := application.ResolveLogger(uc.Logger)

	formID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Form{}, err
	}
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}

	form := entities.Form{
		FormID:          formID,
		AccountID:       strings.TrimSpace(cmd.AccountID),
		Name:            strings.TrimSpace(cmd.Name),
		Key:             newFormKey(),
		Enabled:         true,
		RetentionDays:   cmd.RetentionDays,
		EncryptPayloads: cmd.EncryptPayloads,
		AlertEmails:     trimEmails(cmd.AlertEmails),
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if !form.ValidateBasics() {
		return entities.Form{}, domainerrors.ErrInvalidFormInput
	}

	if err := uc.Repository.CreateForm(ctx, form); err != nil {
		return entities.Form{}, err
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err == nil {
		publishEvent(ctx, uc.Publisher, logger, newFormEnvelope(
			eventID,
			"form.created",
			form.AccountID,
			form.FormID,
			now,
			map[string]any{
				"form_id":  form.FormID,
				"form_key": form.Key,
			},
		))
	}

	logger.Info("form created",
		"event", "form_created",
		"module", "forms-core/forms-service",
		"layer", "application",
		"form_id", form.FormID,
		"account_id", form.AccountID,
	)
	return form, nil
}

// newFormKey builds the public intake slug. 8 random bytes keep the URL
// short while staying unguessable; the unique index catches collisions.
func newFormKey() string {
	var raw [8]byte
	_, _ = rand.Read(raw[:])
	return hex.EncodeToString(raw[:])
}

func trimEmails(emails []string) []string {
	cleaned := make([]string, 0, len(emails))
	for _, item := range emails {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		cleaned = append(cleaned, item)
	}
	return cleaned
}
