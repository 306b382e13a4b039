package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/buildmarket/engine/internal/api/types"
	"github.com/buildmarket/engine/internal/api/validators"
	"github.com/buildmarket/engine/internal/services"
)

type GCRequestsHandler struct {
	requests services.GCRequestService
}

func NewGCRequestsHandler(requests services.GCRequestService) *GCRequestsHandler {
	return &GCRequestsHandler{requests: requests}
}

// Inbox lists the contractor's pending requests.
func (h *GCRequestsHandler) Inbox(w http.ResponseWriter, r *http.Request) {
	items, err := h.requests.ListInbox(r.Context(), currentUserID(r))
	if err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

// ListForProject lists a matching round's requests for the project owner.
func (h *GCRequestsHandler) ListForProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	items, err := h.requests.ListForProject(r.Context(), id, currentUserID(r), currentRole(r))
	if err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: items})
}

func (h *GCRequestsHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.AcceptGCRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}

	input := &services.AcceptRequestInput{
		EstimatedBudget:   req.EstimatedBudget,
		EstimatedDuration: req.EstimatedDuration,
		GCNotes:           req.GCNotes,
	}
	for _, s := range req.Stages {
		input.Stages = append(input.Stages, services.StageInput{
			Name:              s.Name,
			EstimatedCost:     s.EstimatedCost,
			EstimatedDuration: s.EstimatedDuration,
		})
	}

	p, err := h.requests.AcceptRequest(r.Context(), id, currentUserID(r), input)
	if err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: p})
}

func (h *GCRequestsHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	var req types.RejectGCRequestRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if err := h.requests.RejectRequest(r.Context(), id, currentUserID(r), req.Reason); err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true})
}
