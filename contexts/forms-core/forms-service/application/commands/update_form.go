package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/ieth0/forms/contexts/forms-core/forms-service/application"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/forms-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/ports"
)

type UpdateFormCommand struct {
	AccountID       string
	FormID          string
	Name            *string
	Enabled         *bool
	RetentionDays   *int
	EncryptPayloads *bool
	AlertEmails     *[]string
}

type UpdateFormUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func (uc UpdateFormUseCase) Execute(ctx context.Context, cmd UpdateFormCommand) (entities.Form, error) {
	logger := application.ResolveLogger(uc.Logger)
	form, err := uc.Repository.GetForm(ctx, strings.TrimSpace(cmd.FormID))
	if err != nil {
		return entities.Form{}, err
	}
	if form.AccountID != strings.TrimSpace(cmd.AccountID) {
		return entities.Form{}, domainerrors.ErrFormNotFound
	}

	if cmd.Name != nil {
		form.Name = strings.TrimSpace(*cmd.Name)
	}
	if cmd.Enabled != nil {
		form.Enabled = *cmd.Enabled
	}
	if cmd.RetentionDays != nil {
		form.RetentionDays = *cmd.RetentionDays
	}
	if cmd.EncryptPayloads != nil {
		form.EncryptPayloads = *cmd.EncryptPayloads
	}
	if cmd.AlertEmails != nil {
		form.AlertEmails = trimEmails(*cmd.AlertEmails)
	}
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	form.UpdatedAt = now

	if !form.ValidateBasics() {
		return entities.Form{}, domainerrors.ErrInvalidFormInput
	}
	if err := uc.Repository.UpdateForm(ctx, form); err != nil {
		return entities.Form{}, err
	}

	if uc.IDGen != nil {
		if eventID, err := uc.IDGen.NewID(ctx); err == nil {
			publishEvent(ctx, uc.Publisher, logger, newFormEnvelope(
				eventID,
				"form.updated",
				form.AccountID,
				form.FormID,
				now,
				map[string]any{
					"form_id": form.FormID,
					"enabled": form.Enabled,
				},
			))
		}
	}

	logger.Info("form updated",
		"event", "form_updated",
		"module", "forms-core/forms-service",
		"layer", "application",
		"form_id", form.FormID,
	)
	return form, nil
}
