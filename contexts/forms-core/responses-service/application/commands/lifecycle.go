package commands

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

type LifecycleCommand struct {
	AccountID   string
	ResponseIDs []string
}

// SoftDeleteResponsesUseCase hides responses from every listing without
// destroying them. Rows survive until the retention purge removes them.
type SoftDeleteResponsesUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func (uc SoftDeleteResponsesUseCase) Execute(ctx context.Context, cmd LifecycleCommand) (BulkUpdateResult, error) {
	return runLifecycle(ctx, lifecycleDeps{
		Repository: uc.Repository,
		Clock:      uc.Clock,
		IDGen:      uc.IDGen,
		Publisher:  uc.Publisher,
		Logger:     uc.Logger,
	}, cmd, true)
}

// RestoreResponsesUseCase undoes a soft delete.
type RestoreResponsesUseCase struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func (uc RestoreResponsesUseCase) Execute(ctx context.Context, cmd LifecycleCommand) (BulkUpdateResult, error) {
	return runLifecycle(ctx, lifecycleDeps{
		Repository: uc.Repository,
		Clock:      uc.Clock,
		IDGen:      uc.IDGen,
		Publisher:  uc.Publisher,
		Logger:     uc.Logger,
	}, cmd, false)
}

type lifecycleDeps struct {
	Repository ports.Repository
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Publisher  ports.EventPublisher
	Logger     *slog.Logger
}

func runLifecycle(ctx context.Context, deps lifecycleDeps, cmd LifecycleCommand, deleted bool) (BulkUpdateResult, error) {
	logger := application.ResolveLogger(deps.Logger)
	if strings.TrimSpace(cmd.AccountID) == "" {
		return BulkUpdateResult{}, domainerrors.ErrUnauthorizedAccount
	}
	if len(cmd.ResponseIDs) == 0 {
		return BulkUpdateResult{}, domainerrors.ErrNoResponseIDs
	}

	now := time.Now().UTC()
	if deps.Clock != nil {
		now = deps.Clock.Now().UTC()
	}

	eventType := "response.deleted"
	logKind := "deleted"
	if !deleted {
		eventType = "response.undeleted"
		logKind = "restored"
	}

	result := BulkUpdateResult{}
	for _, responseID := range cmd.ResponseIDs {
		targetID := strings.TrimSpace(responseID)
		result.Processed++
		if targetID == "" {
			result.FailedCount++
			continue
		}
		item, err := deps.Repository.GetResponse(ctx, targetID)
		if err != nil || item.AccountID != strings.TrimSpace(cmd.AccountID) {
			result.FailedCount++
			continue
		}
		if item.Deleted == deleted {
			result.SucceededCount++
			continue
		}

		item.Deleted = deleted
		if deleted {
			deletedAt := now
			item.DeletedAt = &deletedAt
		} else {
			item.DeletedAt = nil
		}
		item.UpdatedAt = now
		item.Logs = append(item.Logs, entities.ResponseLog{Kind: logKind, At: now})
		if err := deps.Repository.UpdateResponse(ctx, item); err != nil {
			result.FailedCount++
			continue
		}
		result.SucceededCount++

		eventID, err := deps.IDGen.NewID(ctx)
		if err != nil {
			return result, err
		}
		publishEvent(ctx, deps.Publisher, logger, newResponseEnvelope(
			eventID,
			eventType,
			item.AccountID,
			item.ResponseID,
			now,
			map[string]any{
				"response_id": item.ResponseID,
				"form_id":     item.FormID,
			},
		))
	}

	logger.Info("response lifecycle updated",
		"event", "response_lifecycle_updated",
		"module", "forms-core/responses-service",
		"layer", "application",
		"deleted", deleted,
		"processed", result.Processed,
		"succeeded_count", result.SucceededCount,
		"failed_count", result.FailedCount,
	)
	return result, nil
}
