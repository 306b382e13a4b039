package workflow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/buildmarket/engine/internal/models"
)

func TestTrulyActive(t *testing.T) {
	t.Run("active with stages remaining", func(t *testing.T) {
		p := &models.Project{Status: models.ProjectStatusActive}
		stages, _ := pipeline(models.StageCompleted, models.StageInProgress)
		require.True(t, TrulyActive(p, stages))
	})

	t.Run("active but all stages done", func(t *testing.T) {
		p := &models.Project{Status: models.ProjectStatusActive}
		stages, _ := pipeline(models.StageCompleted, models.StageCompleted)
		require.False(t, TrulyActive(p, stages))
	})

	t.Run("stored progress is ignored", func(t *testing.T) {
		// A stale 100% progress column must not hide a genuinely active project.
		p := &models.Project{Status: models.ProjectStatusActive, Progress: 100}
		stages, _ := pipeline(models.StageInProgress)
		require.True(t, TrulyActive(p, stages))
	})

	t.Run("non active statuses", func(t *testing.T) {
		stages, _ := pipeline(models.StageNotStarted)
		for _, st := range []models.ProjectStatus{
			models.ProjectStatusDraft,
			models.ProjectStatusPending,
			models.ProjectStatusPaused,
			models.ProjectStatusCompleted,
		} {
			p := &models.Project{Status: st}
			require.False(t, TrulyActive(p, stages), "status %s", st)
		}
	})

	t.Run("active with no stages counts as active", func(t *testing.T) {
		p := &models.Project{Status: models.ProjectStatusActive}
		require.True(t, TrulyActive(p, nil))
	})
}

func TestReviewWindow(t *testing.T) {
	declared := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("no declaration", func(t *testing.T) {
		p := &models.Project{PaymentConfirmationStatus: models.PaymentNotDeclared}
		_, _, ok := ReviewWindow(p, declared)
		require.False(t, ok)
	})

	t.Run("declared without timestamp", func(t *testing.T) {
		p := &models.Project{PaymentConfirmationStatus: models.PaymentDeclared}
		_, _, ok := ReviewWindow(p, declared)
		require.False(t, ok)
	})

	t.Run("inside window", func(t *testing.T) {
		p := &models.Project{
			PaymentConfirmationStatus: models.PaymentDeclared,
			PaymentDeclaredAt:         &declared,
		}
		deadline, overdue, ok := ReviewWindow(p, declared.Add(71*time.Hour))
		require.True(t, ok)
		require.False(t, overdue)
		require.Equal(t, declared.Add(ReviewWindowHours*time.Hour), deadline)
	})

	t.Run("past window is advisory only", func(t *testing.T) {
		p := &models.Project{
			PaymentConfirmationStatus: models.PaymentDeclared,
			PaymentDeclaredAt:         &declared,
		}
		_, overdue, ok := ReviewWindow(p, declared.Add(73*time.Hour))
		require.True(t, ok)
		require.True(t, overdue)
		// The status itself is untouched by time passing.
		require.Equal(t, models.PaymentDeclared, p.PaymentConfirmationStatus)
	})
}
