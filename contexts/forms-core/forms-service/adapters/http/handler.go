package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/forms-service/application/commands"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/application/queries"
	"github.com/ieth0/forms/contexts/forms-core/forms-service/domain/entities"
	httptransport "github.com/ieth0/forms/contexts/forms-core/forms-service/transport/http"
)

type Handler struct {
	CreateForm commands.CreateFormUseCase
	UpdateForm commands.UpdateFormUseCase
	DeleteForm commands.DeleteFormUseCase
	Queries    queries.QueryUseCase
	Logger     *slog.Logger
}

func (h Handler) CreateFormHandler(
	ctx context.Context,
	accountID string,
	req httptransport.CreateFormRequest,
) (httptransport.CreateFormResponse, error) {
	form, err := h.CreateForm.Execute(ctx, commands.CreateFormCommand{
		AccountID:       accountID,
		Name:            req.Name,
		RetentionDays:   req.RetentionDays,
		EncryptPayloads: req.EncryptPayloads,
		AlertEmails:     req.AlertEmails,
	})
	if err != nil {
		return httptransport.CreateFormResponse{}, err
	}
	return httptransport.CreateFormResponse{Form: mapForm(form)}, nil
}

func (h Handler) UpdateFormHandler(
	ctx context.Context,
	accountID string,
	formID string,
	req httptransport.UpdateFormRequest,
) (httptransport.GetFormResponse, error) {
	form, err := h.UpdateForm.Execute(ctx, commands.UpdateFormCommand{
		AccountID:       accountID,
		FormID:          formID,
		Name:            req.Name,
		Enabled:         req.Enabled,
		RetentionDays:   req.RetentionDays,
		EncryptPayloads: req.EncryptPayloads,
		AlertEmails:     req.AlertEmails,
	})
	if err != nil {
		return httptransport.GetFormResponse{}, err
	}
	return httptransport.GetFormResponse{Form: mapForm(form)}, nil
}

func (h Handler) DeleteFormHandler(ctx context.Context, accountID string, formID string) error {
	return h.DeleteForm.Execute(ctx, commands.DeleteFormCommand{
		AccountID: accountID,
		FormID:    formID,
	})
}

func (h Handler) GetFormHandler(
	ctx context.Context,
	accountID string,
	formID string,
) (httptransport.GetFormResponse, error) {
	form, err := h.Queries.GetForm(ctx, accountID, formID)
	if err != nil {
		return httptransport.GetFormResponse{}, err
	}
	return httptransport.GetFormResponse{Form: mapForm(form)}, nil
}

func (h Handler) ListFormsHandler(
	ctx context.Context,
	accountID string,
) (httptransport.ListFormsResponse, error) {
	items, err := h.Queries.ListForms(ctx, accountID)
	if err != nil {
		return httptransport.ListFormsResponse{}, err
	}
	result := make([]httptransport.FormDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapForm(item))
	}
	return httptransport.ListFormsResponse{Items: result}, nil
}

// ResolveIntakeFormHandler backs the public submission endpoint lookup.
func (h Handler) ResolveIntakeFormHandler(ctx context.Context, key string) (entities.Form, error) {
	return h.Queries.ResolveIntakeForm(ctx, key)
}

func mapForm(item entities.Form) httptransport.FormDTO {
	return httptransport.FormDTO{
		FormID:          item.FormID,
		Name:            item.Name,
		Key:             item.Key,
		Enabled:         item.Enabled,
		RetentionDays:   item.RetentionDays,
		EncryptPayloads: item.EncryptPayloads,
		AlertEmails:     append([]string(nil), item.AlertEmails...),
		CreatedAt:       item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:       item.UpdatedAt.Format(time.RFC3339),
	}
}
