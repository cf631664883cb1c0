package queries

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "github.com/ieth0/forms/contexts/forms-core/responses-service/application"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

const (
	defaultListLimit = 50
	maxListLimit     = 200
)

type ListResponsesQuery struct {
	AccountID string
	FormID    string
	Filter    string
	Offset    int
	Limit     int
}

type QueryUseCase struct {
	Repository ports.Repository
	Cipher     ports.PayloadCipher
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func (uc QueryUseCase) GetResponse(ctx context.Context, accountID string, responseID string) (entities.Response, error) {
	logger := application.ResolveLogger(uc.Logger)
	item, err := uc.Repository.GetResponse(ctx, strings.TrimSpace(responseID))
	if err != nil {
		return entities.Response{}, err
	}
	if item.AccountID != strings.TrimSpace(accountID) {
		return entities.Response{}, domainerrors.ErrResponseNotFound
	}
	item, err = uc.openPayload(item)
	if err != nil {
		return entities.Response{}, err
	}

	uc.recordAccess(ctx, logger, item)
	return item, nil
}

func (uc QueryUseCase) ListResponses(ctx context.Context, query ListResponsesQuery) ([]entities.Response, error) {
	logger := application.ResolveLogger(uc.Logger)
	view, err := ParseView(query.Filter)
	if err != nil {
		return nil, err
	}
	offset, limit := normalizeWindow(query.Offset, query.Limit)

	items, err := uc.Repository.ListResponses(ctx, ports.ResponseFilter{
		AccountID: strings.TrimSpace(query.AccountID),
		FormID:    strings.TrimSpace(query.FormID),
		View:      view,
		Offset:    offset,
		Limit:     limit,
	})
	if err != nil {
		return nil, err
	}

	for i, item := range items {
		opened, err := uc.openPayload(item)
		if err != nil {
			logger.Error("response payload decrypt failed",
				"event", "response_decrypt_failed",
				"module", "forms-core/responses-service",
				"layer", "application",
				"response_id", item.ResponseID,
				"error", err.Error(),
			)
			continue
		}
		items[i] = opened
	}
	return items, nil
}

func (uc QueryUseCase) CountResponses(ctx context.Context, accountID string, formID string) (ports.ResponseCounts, error) {
	return uc.Repository.CountResponses(ctx, strings.TrimSpace(accountID), strings.TrimSpace(formID))
}

func (uc QueryUseCase) ListNotes(ctx context.Context, accountID string, responseID string) ([]entities.ResponseNote, error) {
	item, err := uc.Repository.GetResponse(ctx, strings.TrimSpace(responseID))
	if err != nil {
		return nil, err
	}
	if item.AccountID != strings.TrimSpace(accountID) {
		return nil, domainerrors.ErrResponseNotFound
	}
	return uc.Repository.ListNotes(ctx, item.ResponseID)
}

func (uc QueryUseCase) ListFiles(ctx context.Context, accountID string, responseID string) ([]entities.ResponseFile, error) {
	item, err := uc.Repository.GetResponse(ctx, strings.TrimSpace(responseID))
	if err != nil {
		return nil, err
	}
	if item.AccountID != strings.TrimSpace(accountID) {
		return nil, domainerrors.ErrResponseNotFound
	}
	return uc.Repository.ListFiles(ctx, item.ResponseID)
}

func (uc QueryUseCase) openPayload(item entities.Response) (entities.Response, error) {
	if !item.Encrypted || uc.Cipher == nil {
		return item, nil
	}
	opened, err := uc.Cipher.Decrypt(item.Payload)
	if err != nil {
		return entities.Response{}, err
	}
	item.Payload = opened
	return item, nil
}

// recordAccess emits the analytics event for a single-response read.
func (uc QueryUseCase) recordAccess(ctx context.Context, logger *slog.Logger, item entities.Response) {
	if uc.Publisher == nil || uc.IDGen == nil {
		return
	}
	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return
	}
	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	envelope := ports.EventEnvelope{
		EventID:        eventID,
		EventType:      "response.accessed",
		SourceService:  "responses-service",
		OccurredAtUTC:  now,
		AccountID:      item.AccountID,
		EntityType:     "response",
		EntityID:       item.ResponseID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"response_id": item.ResponseID,
			"form_id":     item.FormID,
		},
	}
	if err := uc.Publisher.Publish(ctx, ports.AnalyticsTopic, envelope); err != nil {
		logger.Warn("analytics publish failed",
			"event", "response_event_publish_failed",
			"module", "forms-core/responses-service",
			"layer", "application",
			"event_id", envelope.EventID,
			"event_type", envelope.EventType,
			"error", err.Error(),
		)
	}
}

func ParseView(filter string) (ports.ListView, error) {
	switch strings.TrimSpace(filter) {
	case "", string(ports.ViewDefault):
		return ports.ViewDefault, nil
	case string(ports.ViewSpam):
		return ports.ViewSpam, nil
	case string(ports.ViewUnread):
		return ports.ViewUnread, nil
	case string(ports.ViewStarred):
		return ports.ViewStarred, nil
	default:
		return "", domainerrors.ErrInvalidListFilter
	}
}

func normalizeWindow(offset int, limit int) (int, int) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	return offset, limit
}
