package httpadapter

import (
	"context"
	"log/slog"
	"time"

	"github.com/ieth0/forms/contexts/forms-core/responses-service/application/commands"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/application/queries"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
	httptransport "github.com/ieth0/forms/contexts/forms-core/responses-service/transport/http"
)

type Handler struct {
	CreateResponse commands.CreateResponseUseCase
	UpdateFlags    commands.UpdateFlagsUseCase
	SetLabels      commands.SetLabelsUseCase
	SoftDelete     commands.SoftDeleteResponsesUseCase
	Restore        commands.RestoreResponsesUseCase
	AddNote        commands.AddNoteUseCase
	Queries        queries.QueryUseCase
	Logger         *slog.Logger
}

// CreateResponseHandler godoc
// @Summary Submit a form response
// @Description Public intake endpoint. Accepts urlencoded or multipart form posts.
// @Tags responses
// @Accept x-www-form-urlencoded
// @Produce json
// @Param form_key path string true "Public form key"
// @Success 201 {object} httptransport.CreateResponseResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 410 {object} httptransport.ErrorResponse
// @Router /f/{form_key} [post]
func (h Handler) CreateResponseHandler(
	ctx context.Context,
	accountID string,
	formID string,
	retentionDays int,
	encrypt bool,
	req httptransport.CreateResponseRequest,
) (httptransport.CreateResponseResponse, error) {
	files := make([]commands.IncomingFile, 0, len(req.Files))
	for _, file := range req.Files {
		files = append(files, commands.IncomingFile{
			TempKey:     file.TempKey,
			Filename:    file.Filename,
			ContentType: file.ContentType,
			SizeBytes:   file.SizeBytes,
		})
	}
	item, err := h.CreateResponse.Execute(ctx, commands.CreateResponseCommand{
		AccountID:     accountID,
		FormID:        formID,
		Payload:       req.Payload,
		Labels:        req.Labels,
		RetentionDays: retentionDays,
		Encrypt:       encrypt,
		Files:         files,
	})
	if err != nil {
		return httptransport.CreateResponseResponse{}, err
	}
	return httptransport.CreateResponseResponse{
		Response: mapResponse(item),
	}, nil
}

// GetResponseHandler godoc
// @Summary Get one response
// @Description Returns a response by id and records an access event.
// @Tags responses
// @Produce json
// @Security BearerAuth
// @Param response_id path string true "Response id"
// @Success 200 {object} httptransport.GetResponseResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/v1/responses/{response_id} [get]
func (h Handler) GetResponseHandler(
	ctx context.Context,
	accountID string,
	responseID string,
) (httptransport.GetResponseResponse, error) {
	item, err := h.Queries.GetResponse(ctx, accountID, responseID)
	if err != nil {
		return httptransport.GetResponseResponse{}, err
	}
	return httptransport.GetResponseResponse{
		Response: mapResponse(item),
	}, nil
}

// ListResponsesHandler godoc
// @Summary List responses of a form
// @Description Returns a page of responses, newest first.
// @Tags responses
// @Produce json
// @Security BearerAuth
// @Param form_id path string true "Form id"
// @Param filter query string false "View: default,spam,unread,starred"
// @Param offset query int false "Page offset"
// @Param limit query int false "Page size (max 200)"
// @Success 200 {object} httptransport.ListResponsesResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/v1/forms/{form_id}/responses [get]
func (h Handler) ListResponsesHandler(
	ctx context.Context,
	accountID string,
	formID string,
	filter string,
	offset int,
	limit int,
) (httptransport.ListResponsesResponse, error) {
	items, err := h.Queries.ListResponses(ctx, queries.ListResponsesQuery{
		AccountID: accountID,
		FormID:    formID,
		Filter:    filter,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return httptransport.ListResponsesResponse{}, err
	}
	result := make([]httptransport.ResponseDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapResponse(item))
	}
	return httptransport.ListResponsesResponse{
		Items:  result,
		Offset: offset,
		Limit:  limit,
	}, nil
}

// UpdateFlagsHandler godoc
// @Summary Flag responses in bulk
// @Description Sets read, starred or spam on a batch of responses.
// @Tags responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body httptransport.UpdateFlagsRequest true "Flag update"
// @Success 200 {object} httptransport.BulkUpdateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/v1/responses/flags [post]
func (h Handler) UpdateFlagsHandler(
	ctx context.Context,
	accountID string,
	req httptransport.UpdateFlagsRequest,
) (httptransport.BulkUpdateResponse, error) {
	result, err := h.UpdateFlags.Execute(ctx, commands.UpdateFlagsCommand{
		AccountID:   accountID,
		ResponseIDs: req.ResponseIDs,
		Flag:        req.Flag,
		Value:       req.Value,
	})
	if err != nil {
		return httptransport.BulkUpdateResponse{}, err
	}
	return mapBulkResult(result), nil
}

// SetLabelsHandler godoc
// @Summary Replace response labels
// @Tags responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param response_id path string true "Response id"
// @Param request body httptransport.SetLabelsRequest true "Label set"
// @Success 200 {object} httptransport.GetResponseResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/v1/responses/{response_id}/labels [put]
func (h Handler) SetLabelsHandler(
	ctx context.Context,
	accountID string,
	responseID string,
	req httptransport.SetLabelsRequest,
) (httptransport.GetResponseResponse, error) {
	item, err := h.SetLabels.Execute(ctx, commands.SetLabelsCommand{
		AccountID:  accountID,
		ResponseID: responseID,
		Labels:     req.Labels,
	})
	if err != nil {
		return httptransport.GetResponseResponse{}, err
	}
	return httptransport.GetResponseResponse{
		Response: mapResponse(item),
	}, nil
}

// DeleteResponsesHandler godoc
// @Summary Soft-delete responses
// @Tags responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body httptransport.LifecycleRequest true "Response ids"
// @Success 200 {object} httptransport.BulkUpdateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/v1/responses/delete [post]
func (h Handler) DeleteResponsesHandler(
	ctx context.Context,
	accountID string,
	req httptransport.LifecycleRequest,
) (httptransport.BulkUpdateResponse, error) {
	result, err := h.SoftDelete.Execute(ctx, commands.LifecycleCommand{
		AccountID:   accountID,
		ResponseIDs: req.ResponseIDs,
	})
	if err != nil {
		return httptransport.BulkUpdateResponse{}, err
	}
	return mapBulkResult(result), nil
}

// RestoreResponsesHandler godoc
// @Summary Restore soft-deleted responses
// @Tags responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body httptransport.LifecycleRequest true "Response ids"
// @Success 200 {object} httptransport.BulkUpdateResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/v1/responses/restore [post]
func (h Handler) RestoreResponsesHandler(
	ctx context.Context,
	accountID string,
	req httptransport.LifecycleRequest,
) (httptransport.BulkUpdateResponse, error) {
	result, err := h.Restore.Execute(ctx, commands.LifecycleCommand{
		AccountID:   accountID,
		ResponseIDs: req.ResponseIDs,
	})
	if err != nil {
		return httptransport.BulkUpdateResponse{}, err
	}
	return mapBulkResult(result), nil
}

// CountsHandler godoc
// @Summary Count responses of a form
// @Description Totals exclude deleted rows; unread/read/starred exclude spam.
// @Tags responses
// @Produce json
// @Security BearerAuth
// @Param form_id path string true "Form id"
// @Success 200 {object} httptransport.CountsResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/v1/forms/{form_id}/responses/counts [get]
func (h Handler) CountsHandler(
	ctx context.Context,
	accountID string,
	formID string,
) (httptransport.CountsResponse, error) {
	counts, err := h.Queries.CountResponses(ctx, accountID, formID)
	if err != nil {
		return httptransport.CountsResponse{}, err
	}
	return mapCounts(counts), nil
}

// AddNoteHandler godoc
// @Summary Attach a note to a response
// @Tags responses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param response_id path string true "Response id"
// @Param request body httptransport.AddNoteRequest true "Note body"
// @Success 201 {object} httptransport.AddNoteResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/v1/responses/{response_id}/notes [post]
func (h Handler) AddNoteHandler(
	ctx context.Context,
	accountID string,
	responseID string,
	req httptransport.AddNoteRequest,
) (httptransport.AddNoteResponse, error) {
	note, err := h.AddNote.Execute(ctx, commands.AddNoteCommand{
		AccountID:  accountID,
		ResponseID: responseID,
		Body:       req.Body,
	})
	if err != nil {
		return httptransport.AddNoteResponse{}, err
	}
	return httptransport.AddNoteResponse{Note: mapNote(note)}, nil
}

// ListNotesHandler godoc
// @Summary List notes of a response
// @Tags responses
// @Produce json
// @Security BearerAuth
// @Param response_id path string true "Response id"
// @Success 200 {object} httptransport.ListNotesResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/v1/responses/{response_id}/notes [get]
func (h Handler) ListNotesHandler(
	ctx context.Context,
	accountID string,
	responseID string,
) (httptransport.ListNotesResponse, error) {
	items, err := h.Queries.ListNotes(ctx, accountID, responseID)
	if err != nil {
		return httptransport.ListNotesResponse{}, err
	}
	result := make([]httptransport.NoteDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapNote(item))
	}
	return httptransport.ListNotesResponse{Items: result}, nil
}

// ListFilesHandler godoc
// @Summary List attachments of a response
// @Tags responses
// @Produce json
// @Security BearerAuth
// @Param response_id path string true "Response id"
// @Success 200 {object} httptransport.ListFilesResponse
// @Failure 401 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/v1/responses/{response_id}/files [get]
func (h Handler) ListFilesHandler(
	ctx context.Context,
	accountID string,
	responseID string,
) (httptransport.ListFilesResponse, error) {
	items, err := h.Queries.ListFiles(ctx, accountID, responseID)
	if err != nil {
		return httptransport.ListFilesResponse{}, err
	}
	result := make([]httptransport.FileDTO, 0, len(items))
	for _, item := range items {
		result = append(result, httptransport.FileDTO{
			FileID:      item.FileID,
			ResponseID:  item.ResponseID,
			Filename:    item.Filename,
			ContentType: item.ContentType,
			SizeBytes:   item.SizeBytes,
			StorageKey:  item.StorageKey,
			CreatedAt:   item.CreatedAt.Format(time.RFC3339),
		})
	}
	return httptransport.ListFilesResponse{Items: result}, nil
}

func mapResponse(item entities.Response) httptransport.ResponseDTO {
	dto := httptransport.ResponseDTO{
		ResponseID: item.ResponseID,
		FormID:     item.FormID,
		Payload:    item.Payload,
		Encrypted:  item.Encrypted,
		Read:       item.Read,
		Starred:    item.Starred,
		Spam:       item.Spam,
		Deleted:    item.Deleted,
		Labels:     append([]string(nil), item.Labels...),
		CreatedAt:  item.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  item.UpdatedAt.Format(time.RFC3339),
	}
	for _, log := range item.Logs {
		dto.Logs = append(dto.Logs, httptransport.ResponseLogDTO{
			Kind:    log.Kind,
			Message: log.Message,
			At:      log.At.Format(time.RFC3339),
		})
	}
	if item.DeletedAt != nil {
		dto.DeletedAt = item.DeletedAt.Format(time.RFC3339)
	}
	if item.ExpiresAt != nil {
		dto.ExpiresAt = item.ExpiresAt.Format(time.RFC3339)
	}
	return dto
}

func mapNote(item entities.ResponseNote) httptransport.NoteDTO {
	return httptransport.NoteDTO{
		NoteID:     item.NoteID,
		ResponseID: item.ResponseID,
		AuthorID:   item.AuthorID,
		Body:       item.Body,
		CreatedAt:  item.CreatedAt.Format(time.RFC3339),
	}
}

func mapBulkResult(result commands.BulkUpdateResult) httptransport.BulkUpdateResponse {
	return httptransport.BulkUpdateResponse{
		Processed:      result.Processed,
		SucceededCount: result.SucceededCount,
		FailedCount:    result.FailedCount,
	}
}

func mapCounts(counts ports.ResponseCounts) httptransport.CountsResponse {
	return httptransport.CountsResponse{
		Total:   counts.Total,
		Read:    counts.Read,
		Spam:    counts.Spam,
		Starred: counts.Starred,
		Unread:  counts.Unread,
	}
}
