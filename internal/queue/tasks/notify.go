package tasks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/buildmarket/engine/internal/models"
	"github.com/buildmarket/engine/internal/repository"
	"github.com/buildmarket/engine/pkg/logger"
)

// TypeNotify is the asynq task type for workflow notifications.
const TypeNotify = "notification:dispatch"

// Workflow events that produce notifications.
const (
	EventGCRequestCreated  = "gc_request.created"
	EventGCRequestAccepted = "gc_request.accepted"
	EventGCRequestRejected = "gc_request.rejected"
	EventPaymentDeclared   = "payment.declared"
	EventPaymentConfirmed  = "payment.confirmed"
	EventPaymentRejected   = "payment.rejected"
	EventStageApproved     = "stage.approved"
	EventStageCompleted    = "stage.completed"
	EventProjectCompleted  = "project.completed"
)

// NotifyPayload is the task payload for a notification dispatch.
type NotifyPayload struct {
	UserID    string         `json:"user_id"`
	Event     string         `json:"event"`
	ProjectID string         `json:"project_id,omitempty"`
	Data      map[string]any `json:"data,omitempty"`
}

// NewNotifyTask builds the asynq task for a workflow event. Dispatch is
// fire-and-forget: callers enqueue best-effort and never fail the workflow
// mutation on enqueue errors.
func NewNotifyTask(p NotifyPayload) (*asynq.Task, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeNotify, b), nil
}

// NotifyTaskHandler persists notification rows for dispatched events.
type NotifyTaskHandler struct {
	notifications repository.NotificationRepository
}

func NewNotifyTaskHandler(notifications repository.NotificationRepository) *NotifyTaskHandler {
	return &NotifyTaskHandler{notifications: notifications}
}

// HandleNotify writes the notification row. Asynq delivers at least once;
// a duplicate delivery just produces a second row, which clients tolerate.
func (h *NotifyTaskHandler) HandleNotify(ctx context.Context, t *asynq.Task) error {
	var p NotifyPayload
	if err := json.Unmarshal(t.Payload(), &p); err != nil {
		logger.L().Error("invalid notify task payload", zap.Error(err))
		return err
	}
	userID, err := uuid.Parse(p.UserID)
	if err != nil {
		logger.L().Error("invalid user id in notify task", zap.Error(err), zap.String("user_id", p.UserID))
		return err
	}

	payload := map[string]any{}
	for k, v := range p.Data {
		payload[k] = v
	}
	if p.ProjectID != "" {
		payload["project_id"] = p.ProjectID
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	n := &models.Notification{
		UserID:  userID,
		Event:   p.Event,
		Payload: datatypes.JSON(b),
	}
	if err := h.notifications.Create(ctx, n); err != nil {
		logger.L().Error("create notification failed", zap.Error(err), zap.String("event", p.Event))
		return err
	}

	logger.L().Info("notification dispatched",
		zap.String("notification_id", n.ID.String()),
		zap.String("user_id", p.UserID),
		zap.String("event", p.Event),
	)
	return nil
}
