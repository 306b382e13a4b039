package workflow

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

// pipeline builds a three-stage set with the given statuses, returning the
// stages and their ids in order.
func pipeline(statuses ...models.StageStatus) ([]models.Stage, []uuid.UUID) {
	stages := make([]models.Stage, len(statuses))
	ids := make([]uuid.UUID, len(statuses))
	for i, st := range statuses {
		ids[i] = uuid.New()
		stages[i] = models.Stage{ID: ids[i], Seq: i + 1, Status: st}
	}
	return stages, ids
}

func TestCheckStageApproval(t *testing.T) {
	t.Run("first stage approvable", func(t *testing.T) {
		stages, ids := pipeline(models.StageNotStarted, models.StageNotStarted, models.StageNotStarted)
		require.NoError(t, CheckStageApproval(stages, ids[0]))
	})

	t.Run("unknown stage", func(t *testing.T) {
		stages, _ := pipeline(models.StageNotStarted)
		err := CheckStageApproval(stages, uuid.New())
		require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	})

	t.Run("skipping ahead is out of sequence", func(t *testing.T) {
		stages, ids := pipeline(models.StageNotStarted, models.StageNotStarted, models.StageNotStarted)
		err := CheckStageApproval(stages, ids[1])
		require.True(t, appErr.IsCode(err, appErr.CodeOutOfSequence))
	})

	t.Run("next stage blocked while one is in progress", func(t *testing.T) {
		stages, ids := pipeline(models.StageInProgress, models.StageNotStarted, models.StageNotStarted)
		err := CheckStageApproval(stages, ids[1])
		require.True(t, appErr.IsCode(err, appErr.CodeInvalidState))
	})

	t.Run("second stage approvable after first completes", func(t *testing.T) {
		stages, ids := pipeline(models.StageCompleted, models.StageNotStarted, models.StageNotStarted)
		require.NoError(t, CheckStageApproval(stages, ids[1]))
	})

	t.Run("re-approving is an invalid state", func(t *testing.T) {
		stages, ids := pipeline(models.StageInProgress, models.StageNotStarted)
		err := CheckStageApproval(stages, ids[0])
		require.True(t, appErr.IsCode(err, appErr.CodeInvalidState))
	})

	t.Run("approving a completed stage is an invalid state", func(t *testing.T) {
		stages, ids := pipeline(models.StageCompleted, models.StageNotStarted)
		err := CheckStageApproval(stages, ids[0])
		require.True(t, appErr.IsCode(err, appErr.CodeInvalidState))
	})
}

func TestCheckStageCompletion(t *testing.T) {
	t.Run("in progress stage completable", func(t *testing.T) {
		stages, ids := pipeline(models.StageInProgress, models.StageNotStarted)
		require.NoError(t, CheckStageCompletion(stages, ids[0]))
	})

	t.Run("not started stage not completable", func(t *testing.T) {
		stages, ids := pipeline(models.StageNotStarted)
		err := CheckStageCompletion(stages, ids[0])
		require.True(t, appErr.IsCode(err, appErr.CodeInvalidState))
	})

	t.Run("repeated completion is an invalid state", func(t *testing.T) {
		stages, ids := pipeline(models.StageCompleted)
		err := CheckStageCompletion(stages, ids[0])
		require.True(t, appErr.IsCode(err, appErr.CodeInvalidState))
	})

	t.Run("unknown stage", func(t *testing.T) {
		stages, _ := pipeline(models.StageInProgress)
		err := CheckStageCompletion(stages, uuid.New())
		require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	})
}

func TestAllCompleted(t *testing.T) {
	stages, _ := pipeline(models.StageCompleted, models.StageCompleted)
	require.True(t, AllCompleted(stages))

	stages, _ = pipeline(models.StageCompleted, models.StageInProgress)
	require.False(t, AllCompleted(stages))

	require.False(t, AllCompleted(nil))
}

func TestProgress(t *testing.T) {
	require.Equal(t, 0, Progress(nil))

	stages, _ := pipeline(models.StageCompleted, models.StageInProgress, models.StageNotStarted)
	require.Equal(t, 33, Progress(stages))

	stages, _ = pipeline(models.StageCompleted, models.StageCompleted, models.StageCompleted)
	require.Equal(t, 100, Progress(stages))
}

func TestSortBySeq(t *testing.T) {
	stages := []models.Stage{{Seq: 3}, {Seq: 1}, {Seq: 2}}
	SortBySeq(stages)
	require.Equal(t, 1, stages[0].Seq)
	require.Equal(t, 2, stages[1].Seq)
	require.Equal(t, 3, stages[2].Seq)
}
