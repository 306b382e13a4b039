package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildmarket/engine/internal/models"
)

func TestDefaultBreakdown(t *testing.T) {
	t.Run("homebuilding", func(t *testing.T) {
		stages := DefaultBreakdown(models.ProjectTypeHomebuilding, 500000)
		require.Len(t, stages, 5)

		total := 0.0
		for i, s := range stages {
			require.Equal(t, i+1, s.Seq)
			require.Equal(t, models.StageNotStarted, s.Status)
			require.Greater(t, s.EstimatedCost, 0.0)
			total += s.EstimatedCost
		}
		require.InDelta(t, 500000, total, 0.001)
	})

	t.Run("renovation", func(t *testing.T) {
		stages := DefaultBreakdown(models.ProjectTypeRenovation, 90000)
		require.Len(t, stages, 3)
		require.Equal(t, "Demolition & Prep", stages[0].Name)
	})

	t.Run("unknown type falls back to renovation template", func(t *testing.T) {
		stages := DefaultBreakdown(models.ProjectType("landscaping"), 10000)
		require.Len(t, stages, 3)
	})

	t.Run("last stage absorbs rounding drift", func(t *testing.T) {
		// An awkward budget that would drift under naive weight multiplication.
		stages := DefaultBreakdown(models.ProjectTypeInteriorDesign, 33333.33)
		total := 0.0
		for _, s := range stages {
			total += s.EstimatedCost
		}
		require.InDelta(t, 33333.33, total, 1e-9)
	})
}
