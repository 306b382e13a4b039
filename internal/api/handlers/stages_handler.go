package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/buildmarket/engine/internal/api/types"
	"github.com/buildmarket/engine/internal/api/validators"
	"github.com/buildmarket/engine/internal/services"
)

type StagesHandler struct {
	stages services.StageService
}

func NewStagesHandler(stages services.StageService) *StagesHandler {
	return &StagesHandler{stages: stages}
}

func (h *StagesHandler) ApprovePayment(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stageID, ok := pathUUID(w, r, "stageID")
	if !ok {
		return
	}
	stage, err := h.stages.ApproveStagePayment(r.Context(), projectID, stageID, currentUserID(r))
	if err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: stage})
}

func (h *StagesHandler) Complete(w http.ResponseWriter, r *http.Request) {
	projectID, ok := pathUUID(w, r, "id")
	if !ok {
		return
	}
	stageID, ok := pathUUID(w, r, "stageID")
	if !ok {
		return
	}
	var req types.CompleteStageRequest
	if r.Body != nil {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	if err := validators.New().Struct(req); err != nil {
		writeErrorStr(w, http.StatusBadRequest, err.Error())
		return
	}
	stage, err := h.stages.CompleteStage(r.Context(), projectID, stageID, currentUserID(r), req.ActualCost)
	if err != nil {
		writeError(w, types.HTTPStatus(err), err)
		return
	}
	writeJSON(w, http.StatusOK, types.APIResponse{Success: true, Data: stage})
}
