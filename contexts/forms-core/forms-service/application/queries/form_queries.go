package queries

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ieth0/forms/contexts/forms-core/forms-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/forms-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/ports"
)

type QueryUseCase struct {
	Repository ports.Repository
	Logger     *slog.Logger
}

func (uc QueryUseCase) GetForm(ctx context.Context, accountID string, formID string) (entities.Form, error) {
	form, err := uc.Repository.GetForm(ctx, strings.TrimSpace(formID))
	if err != nil {
		return entities.Form{}, err
	}
	if form.AccountID != strings.TrimSpace(accountID) {
		return entities.Form{}, domainerrors.ErrFormNotFound
	}
	return form, nil
}

func (uc QueryUseCase) ListForms(ctx context.Context, accountID string) ([]entities.Form, error) {
	return uc.Repository.ListForms(ctx, strings.TrimSpace(accountID))
}

// ResolveIntakeForm looks up the form behind a public submission URL.
// Disabled forms resolve to ErrFormDisabled, not ErrFormNotFound.
func (uc QueryUseCase) ResolveIntakeForm(ctx context.Context, key string) (entities.Form, error) {
	form, err := uc.Repository.GetFormByKey(ctx, strings.TrimSpace(key))
	if err != nil {
		return entities.Form{}, err
	}
	if !form.Enabled {
		return entities.Form{}, domainerrors.ErrFormDisabled
	}
	return form, nil
}
