package handlers

import (
	"net/http"

	"github.com/buildmarket/engine/internal/api/types"
	"github.com/buildmarket/engine/internal/models"
	"github.com/buildmarket/engine/internal/repository"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

// NotificationsHandler serves the poll-based notification feed written by
// the worker.
type NotificationsHandler struct {
	notifications repository.NotificationRepository
}

func NewNotificationsHandler(notifications repository.NotificationRepository) *NotificationsHandler {
	return &NotificationsHandler{notifications: notifications}
}

func (h *NotificationsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.notifications.ListByUser(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func (h *NotificationsHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var n models.Notification
	if err := h.notifications.GetByID(r.Context(), id, &n); err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	if n.UserID != currentUserID(r) {
		err := appErr.New(appErr.CodeUnauthorized, "notification belongs to another user")
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	if err := h.notifications.MarkRead(r.Context(), id); err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
