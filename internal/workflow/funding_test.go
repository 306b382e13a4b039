package workflow

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/buildmarket/engine/internal/models"
)

func completedActivation() models.PaymentRecord {
	return models.PaymentRecord{Type: models.PaymentTypeActivation, Status: models.PaymentRecordCompleted}
}

func pendingActivation() models.PaymentRecord {
	return models.PaymentRecord{Type: models.PaymentTypeActivation, Status: models.PaymentRecordPending}
}

func TestTrackingLocked(t *testing.T) {
	cases := []struct {
		name     string
		ptype    models.ProjectType
		payment  models.PaymentConfirmationStatus
		status   models.ProjectStatus
		payments []models.PaymentRecord
		locked   bool
	}{
		{
			name:    "renovation never locked",
			ptype:   models.ProjectTypeRenovation,
			payment: models.PaymentNotDeclared,
			status:  models.ProjectStatusPending,
			locked:  false,
		},
		{
			name:    "interior design never locked",
			ptype:   models.ProjectTypeInteriorDesign,
			payment: models.PaymentNotDeclared,
			status:  models.ProjectStatusDraft,
			locked:  false,
		},
		{
			name:    "homebuilding not declared",
			ptype:   models.ProjectTypeHomebuilding,
			payment: models.PaymentNotDeclared,
			status:  models.ProjectStatusPending,
			locked:  true,
		},
		{
			name:    "homebuilding declared still locked",
			ptype:   models.ProjectTypeHomebuilding,
			payment: models.PaymentDeclared,
			status:  models.ProjectStatusPending,
			locked:  true,
		},
		{
			name:    "homebuilding rejected still locked",
			ptype:   models.ProjectTypeHomebuilding,
			payment: models.PaymentRejected,
			status:  models.ProjectStatusPending,
			locked:  true,
		},
		{
			name:    "homebuilding confirmed unlocks",
			ptype:   models.ProjectTypeHomebuilding,
			payment: models.PaymentConfirmed,
			status:  models.ProjectStatusPending,
			locked:  false,
		},
		{
			name:    "active status bypasses confirmation",
			ptype:   models.ProjectTypeHomebuilding,
			payment: models.PaymentNotDeclared,
			status:  models.ProjectStatusActive,
			locked:  false,
		},
		{
			name:     "completed activation payment bypasses confirmation",
			ptype:    models.ProjectTypeHomebuilding,
			payment:  models.PaymentNotDeclared,
			status:   models.ProjectStatusPending,
			payments: []models.PaymentRecord{completedActivation()},
			locked:   false,
		},
		{
			name:     "pending activation payment does not unlock",
			ptype:    models.ProjectTypeHomebuilding,
			payment:  models.PaymentDeclared,
			status:   models.ProjectStatusPending,
			payments: []models.PaymentRecord{pendingActivation()},
			locked:   true,
		},
		{
			name:    "paused homebuilding without funding stays locked",
			ptype:   models.ProjectTypeHomebuilding,
			payment: models.PaymentNotDeclared,
			status:  models.ProjectStatusPaused,
			locked:  true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := &models.Project{
				ProjectType:               tc.ptype,
				PaymentConfirmationStatus: tc.payment,
				Status:                    tc.status,
			}
			require.Equal(t, tc.locked, TrackingLocked(p, tc.payments))
		})
	}
}

func TestUnlockedByOverride(t *testing.T) {
	t.Run("confirmed deposit is not an override", func(t *testing.T) {
		p := &models.Project{
			ProjectType:               models.ProjectTypeHomebuilding,
			PaymentConfirmationStatus: models.PaymentConfirmed,
			Status:                    models.ProjectStatusActive,
		}
		require.False(t, UnlockedByOverride(p, nil))
	})

	t.Run("active without confirmation is an override", func(t *testing.T) {
		p := &models.Project{
			ProjectType:               models.ProjectTypeHomebuilding,
			PaymentConfirmationStatus: models.PaymentNotDeclared,
			Status:                    models.ProjectStatusActive,
		}
		require.True(t, UnlockedByOverride(p, nil))
	})

	t.Run("completed activation without confirmation is an override", func(t *testing.T) {
		p := &models.Project{
			ProjectType:               models.ProjectTypeHomebuilding,
			PaymentConfirmationStatus: models.PaymentNotDeclared,
			Status:                    models.ProjectStatusPending,
		}
		require.True(t, UnlockedByOverride(p, []models.PaymentRecord{completedActivation()}))
	})

	t.Run("non homebuilding is never an override", func(t *testing.T) {
		p := &models.Project{
			ProjectType: models.ProjectTypeRenovation,
			Status:      models.ProjectStatusActive,
		}
		require.False(t, UnlockedByOverride(p, nil))
	})
}

func TestCanDeclarePayment(t *testing.T) {
	require.True(t, CanDeclarePayment(models.PaymentNotDeclared))
	require.True(t, CanDeclarePayment(models.PaymentRejected))
	require.False(t, CanDeclarePayment(models.PaymentDeclared))
	require.False(t, CanDeclarePayment(models.PaymentConfirmed))
}

func TestCanReviewDeclaration(t *testing.T) {
	require.True(t, CanReviewDeclaration(models.PaymentDeclared))
	require.False(t, CanReviewDeclaration(models.PaymentNotDeclared))
	require.False(t, CanReviewDeclaration(models.PaymentRejected))
	require.False(t, CanReviewDeclaration(models.PaymentConfirmed))
}
