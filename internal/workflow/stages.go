package workflow

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

// CheckStageApproval validates the homeowner's approve-payment action for
// the target stage against the full ordered stage set. It enforces:
//
//   - the target stage exists and is not_started (invalid_state otherwise)
//   - no other stage is currently in_progress (single-active-stage rule)
//   - every stage with a smaller order is completed (out_of_sequence)
//
// Approval monotonicity falls out of the first rule: once a stage leaves
// not_started, a repeated approval fails.
func CheckStageApproval(stages []models.Stage, targetID uuid.UUID) error {
	target := findStage(stages, targetID)
	if target == nil {
		return appErr.New(appErr.CodeNotFound, "stage not found")
	}
	if target.Status != models.StageNotStarted {
		return appErr.New(appErr.CodeInvalidState, fmt.Sprintf("stage %d is %s, expected not_started", target.Seq, target.Status))
	}
	for i := range stages {
		if stages[i].ID != targetID && stages[i].Status == models.StageInProgress {
			return appErr.New(appErr.CodeInvalidState, fmt.Sprintf("stage %d is still in progress", stages[i].Seq))
		}
	}
	for i := range stages {
		if stages[i].Seq < target.Seq && stages[i].Status != models.StageCompleted {
			return appErr.New(appErr.CodeOutOfSequence, fmt.Sprintf("stage %d must be completed before stage %d", stages[i].Seq, target.Seq))
		}
	}
	return nil
}

// CheckStageCompletion validates the GC's complete action: only an
// in_progress stage may be completed.
func CheckStageCompletion(stages []models.Stage, targetID uuid.UUID) error {
	target := findStage(stages, targetID)
	if target == nil {
		return appErr.New(appErr.CodeNotFound, "stage not found")
	}
	if target.Status != models.StageInProgress {
		return appErr.New(appErr.CodeInvalidState, fmt.Sprintf("stage %d is %s, expected in_progress", target.Seq, target.Status))
	}
	return nil
}

// AllCompleted reports whether every stage has finished. False for an empty
// stage set: a project without stages never auto-completes.
func AllCompleted(stages []models.Stage) bool {
	if len(stages) == 0 {
		return false
	}
	for i := range stages {
		if stages[i].Status != models.StageCompleted {
			return false
		}
	}
	return true
}

// Progress derives the 0-100 completion percentage from stage statuses.
func Progress(stages []models.Stage) int {
	if len(stages) == 0 {
		return 0
	}
	done := 0
	for i := range stages {
		if stages[i].Status == models.StageCompleted {
			done++
		}
	}
	return done * 100 / len(stages)
}

// SortBySeq orders stages by their 1-based sequence in place.
func SortBySeq(stages []models.Stage) {
	sort.Slice(stages, func(i, j int) bool { return stages[i].Seq < stages[j].Seq })
}

func findStage(stages []models.Stage, id uuid.UUID) *models.Stage {
	for i := range stages {
		if stages[i].ID == id {
			return &stages[i]
		}
	}
	return nil
}
