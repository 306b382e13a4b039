package services

import (
	"context"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"

	"github.com/buildmarket/engine/internal/queue/tasks"
	"github.com/buildmarket/engine/pkg/logger"
)

// enqueueNotify dispatches a notification task best-effort. Workflow
// mutations never fail because a notification could not be enqueued.
func enqueueNotify(ctx context.Context, client *asynq.Client, p tasks.NotifyPayload) {
	if client == nil {
		logger.L().Warn("asynq client not configured, skipping notification", zap.String("event", p.Event))
		return
	}
	t, err := tasks.NewNotifyTask(p)
	if err != nil {
		logger.L().Error("build notify task failed", zap.Error(err), zap.String("event", p.Event))
		return
	}
	if _, err := client.EnqueueContext(ctx, t); err != nil {
		logger.L().Error("enqueue notify task failed", zap.Error(err), zap.String("event", p.Event))
	}
}
