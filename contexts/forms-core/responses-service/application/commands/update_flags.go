package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	application "github.com/ieth0/forms/contexts/forms-core/responses-service/application"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/domain/entities"
	domainerrors "github.com/ieth0/forms/contexts/forms-core/responses-service/domain/errors"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

const (
	FlagRead    = "read"
	FlagStarred = "starred"
	FlagSpam    = "spam"
)

type UpdateFlagsCommand struct {
	AccountID   string
	ResponseIDs []string
	Flag        string
	Value       bool
}

type BulkUpdateResult struct {
	Processed      int `json:"processed"`
	SucceededCount int `json:"succeeded_count"`
	FailedCount    int `json:"failed_count"`
}

type UpdateFlagsUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func (uc UpdateFlagsUseCase) Execute(ctx context.Context, cmd UpdateFlagsCommand) (BulkUpdateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	if strings.TrimSpace(cmd.AccountID) == "" {
		return BulkUpdateResult{}, domainerrors.ErrUnauthorizedAccount
	}
	flag := strings.TrimSpace(cmd.Flag)
	if flag != FlagRead && flag != FlagStarred && flag != FlagSpam {
		return BulkUpdateResult{}, domainerrors.ErrInvalidFlag
	}
	if len(cmd.ResponseIDs) == 0 {
		return BulkUpdateResult{}, domainerrors.ErrNoResponseIDs
	}

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}

	result := BulkUpdateResult{}
	for _, responseID := range cmd.ResponseIDs {
		targetID := strings.TrimSpace(responseID)
		result.Processed++
		if targetID == "" {
			result.FailedCount++
			continue
		}
		item, err := uc.Repository.GetResponse(ctx, targetID)
		if err != nil || item.AccountID != strings.TrimSpace(cmd.AccountID) {
			result.FailedCount++
			continue
		}

		applyFlag(&item, flag, cmd.Value, now)
		item.UpdatedAt = now
		item.Logs = append(item.Logs, entities.ResponseLog{
			Kind:    "flag_updated",
			Message: fmt.Sprintf("%s=%t", flag, cmd.Value),
			At:      now,
		})
		if err := uc.Repository.UpdateResponse(ctx, item); err != nil {
			result.FailedCount++
			continue
		}
		result.SucceededCount++

		eventID, err := uc.IDGen.NewID(ctx)
		if err != nil {
			return result, err
		}
		publishEvent(ctx, uc.Publisher, logger, newResponseEnvelope(
			eventID,
			"response.updated",
			item.AccountID,
			item.ResponseID,
			now,
			map[string]any{
				"response_id": item.ResponseID,
				"form_id":     item.FormID,
				"flag":        flag,
				"value":       cmd.Value,
			},
		))
	}

	logger.Info("response flags updated",
		"event", "response_flags_updated",
		"module", "forms-core/responses-service",
		"layer", "application",
		"flag", flag,
		"value", cmd.Value,
		"processed", result.Processed,
		"succeeded_count", result.SucceededCount,
		"failed_count", result.FailedCount,
	)
	return result, nil
}

// applyFlag flips one binary attribute. Spam carries a retention side effect:
// flagging schedules the purge fourteen days out, unflagging cancels it.
func applyFlag(item *entities.Response, flag string, value bool, now time.Time) {
	switch flag {
	case FlagRead:
		item.Read = value
	case FlagStarred:
		item.Starred = value
	case FlagSpam:
		item.Spam = value
		if value {
			deadline := now.Add(spamRetention)
			item.ExpiresAt = &deadline
		} else {
			item.ExpiresAt = nil
		}
	}
}

type SetLabelsCommand struct {
	AccountID  string
	ResponseID string
	Labels     []string
}

type SetLabelsUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	Logger     *slog.Logger
}

func (uc SetLabelsUseCase) Execute(ctx context.Context, cmd SetLabelsCommand) (entities.Response, error) {
	logger := application.ResolveLogger(uc.Logger)
	item, err := uc.Repository.GetResponse(ctx, strings.TrimSpace(cmd.ResponseID))
	if err != nil {
		return entities.Response{}, err
	}
	if item.AccountID != strings.TrimSpace(cmd.AccountID) {
		return entities.Response{}, domainerrors.ErrResponseNotFound
	}

	now := time.Now().UTC()
	if uc.Clock != nil {
		now = uc.Clock.Now().UTC()
	}
	item.Labels = sanitizeLabels(cmd.Labels)
	item.UpdatedAt = now
	if err := uc.Repository.UpdateResponse(ctx, item); err != nil {
		return entities.Response{}, err
	}

	logger.Info("response labels updated",
		"event", "response_labels_updated",
		"module", "forms-core/responses-service",
		"layer", "application",
		"response_id", item.ResponseID,
		"label_count", len(item.Labels),
	)
	return item, nil
}
