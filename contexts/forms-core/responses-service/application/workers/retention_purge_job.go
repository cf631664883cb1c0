package workers

import (
	"context"
	"log/slog"
	"time"

	application "github.com/ieth0/forms/contexts/forms-core/responses-service/application"
	"github.com/ieth0/forms/contexts/forms-core/responses-service/ports"
)

// RetentionPurgeJob permanently removes responses whose expiry has passed,
// along with their notes, file rows, and stored uploads. Soft-deleted rows
// are purged the same way once their deadline arrives.
type RetentionPurgeJob struct {
	Repository ports.Repository
	Files      ports.FileStore
	Clock      ports.Clock
	BatchSize  int
	Logger     *slog.Logger
}

func (j RetentionPurgeJob) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	now := time.Now().UTC()
	if j.Clock != nil {
		now = j.Clock.Now().UTC()
	}
	limit := j.BatchSize
	if limit <= 0 {
		limit = 100
	}

	items, err := j.Repository.ListExpired(ctx, now, limit)
	if err != nil {
		logger.Error("retention purge list failed",
			"event", "response_purge_list_failed",
			"module", "forms-core/responses-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}

	for _, item := range items {
		if j.Files != nil {
			if err := j.Files.RemoveResponse(item.AccountID, item.ResponseID); err != nil {
				logger.Error("retention purge file cleanup failed",
					"event", "response_purge_files_failed",
					"module", "forms-core/responses-service",
					"layer", "worker",
					"response_id", item.ResponseID,
					"error", err.Error(),
				)
				return err
			}
		}
		if err := j.Repository.PurgeResponse(ctx, item.ResponseID); err != nil {
			logger.Error("retention purge delete failed",
				"event", "response_purge_delete_failed",
				"module", "forms-core/responses-service",
				"layer", "worker",
				"response_id", item.ResponseID,
				"error", err.Error(),
			)
			return err
		}
	}

	if len(items) > 0 {
		logger.Info("retention purge cycle completed",
			"event", "response_purge_cycle_completed",
			"module", "forms-core/responses-service",
			"layer", "worker",
			"purged_count", len(items),
		)
	}
	return nil
}
