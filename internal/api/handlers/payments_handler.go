package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/buildmarket/engine/internal/api/types"
	"github.com/buildmarket/engine/internal/models"
	"github.com/buildmarket/engine/internal/repository"
)

// PaymentsHandler is the operator's ledger surface: reviewing a project's
// payment records and settling manual-rail entries out of band.
type PaymentsHandler struct {
	payments repository.PaymentRepository
}

func NewPaymentsHandler(payments repository.PaymentRepository) *PaymentsHandler {
	return &PaymentsHandler{payments: payments}
}

// ListForProject returns the full ledger for one project, newest last.
func (h *PaymentsHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.payments.ListByProject(r.Context(), id)
	if err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

// Settle flips a pending manual payment record to completed. Settling an
// already-completed record is a no-op.
func (h *PaymentsHandler) Settle(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.SettlePaymentRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	var rec models.PaymentRecord
	if err := h.payments.GetByID(r.Context(), id, &rec); err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	if err := h.payments.MarkCompleted(r.Context(), id, req.TransactionID); err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
