package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/ieth0/forms/contexts/forms-core/forms-service/application"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/forms-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/ports"
)

type DeleteFormCommand struct {
	AccountID string
	FormID    string
}

type DeleteFormUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

// Execute removes the form row. The responses context subscribes to the
// form.deleted event and disposes of the form's responses and uploads.
func (uc DeleteFormUseCase) Execute(ctx context.Context, cmd DeleteFormCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	form, err := uc.Repository.GetForm(ctx, strings.TrimSpace(cmd.FormID))
	if err != nil {
		return err
	}
	if form.AccountID != strings.TrimSpace(cmd.AccountID) {
		return domainerrors.ErrFormNotFound
	}

	if err := uc.Repository.DeleteForm(ctx, form.FormID); err != nil {
		return err
	}

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	if uc.IDGen != nil {
		if eventID, err := uc.IDGen.NewID(ctx); err == nil {
			publishEvent(ctx, uc.Publisher, logger, newFormEnvelope(
				eventID,
				"form.deleted",
				form.AccountID,
				form.FormID,
				now,
				map[string]any{
					"form_id":    form.FormID,
					"account_id": form.AccountID,
				},
			))
		}
	}

	logger.Info("form deleted",
		"event", "form_deleted",
		"module", "forms-core/forms-service",
		"layer", "application",
		"form_id", form.FormID,
		"account_id", form.AccountID,
	)
	return nil
}
