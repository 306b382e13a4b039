package workflow

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

// TestHomebuildingLifecycle walks a homebuilding project through the whole
// funding and stage pipeline, asserting the gate and sequencing rules at
// each step the way the services consume them.
func TestHomebuildingLifecycle(t *testing.T) {
	p := &models.Project{
		ProjectType:               models.ProjectTypeHomebuilding,
		Status:                    models.ProjectStatusPending,
		PaymentConfirmationStatus: models.PaymentNotDeclared,
		Budget:                    500000,
	}
	stages := DefaultBreakdown(p.ProjectType, p.Budget)
	for i := range stages {
		stages[i].ID = uuid.New()
	}
	var payments []models.PaymentRecord

	// Before funding: tracking locked, first stage must not be approvable
	// through the gate (the service checks the lock before sequencing).
	require.True(t, TrackingLocked(p, payments))
	require.False(t, CanReviewDeclaration(p.PaymentConfirmationStatus))

	// Homeowner declares the deposit.
	require.True(t, CanDeclarePayment(p.PaymentConfirmationStatus))
	now := time.Now()
	p.PaymentConfirmationStatus = models.PaymentDeclared
	p.PaymentDeclaredAt = &now
	payments = append(payments, models.PaymentRecord{
		Type:   models.PaymentTypeActivation,
		Method: models.PaymentMethodManual,
		Status: models.PaymentRecordPending,
		Amount: p.Budget,
	})

	// Declared but unreviewed: still locked, re-declaring is blocked, the
	// review countdown is running.
	require.True(t, TrackingLocked(p, payments))
	require.False(t, CanDeclarePayment(p.PaymentConfirmationStatus))
	_, overdue, ok := ReviewWindow(p, now.Add(time.Hour))
	require.True(t, ok)
	require.False(t, overdue)

	// Operator rejects; homeowner may retry.
	require.True(t, CanReviewDeclaration(p.PaymentConfirmationStatus))
	p.PaymentConfirmationStatus = models.PaymentRejected
	require.True(t, TrackingLocked(p, payments))
	require.True(t, CanDeclarePayment(p.PaymentConfirmationStatus))

	// Second declaration, then confirmation.
	p.PaymentConfirmationStatus = models.PaymentDeclared
	require.True(t, CanReviewDeclaration(p.PaymentConfirmationStatus))
	p.PaymentConfirmationStatus = models.PaymentConfirmed
	payments[0].Status = models.PaymentRecordCompleted
	require.False(t, TrackingLocked(p, payments))

	// Stage pipeline: approve and complete strictly in order.
	for i := range stages {
		// Later stages stay blocked until this one finishes.
		if i+1 < len(stages) {
			err := CheckStageApproval(stages, stages[i+1].ID)
			require.True(t, appErr.IsCode(err, appErr.CodeOutOfSequence))
		}

		require.NoError(t, CheckStageApproval(stages, stages[i].ID))
		stages[i].Status = models.StageInProgress
		p.Status = models.ProjectStatusActive

		// Approval does not repeat.
		err := CheckStageApproval(stages, stages[i].ID)
		require.True(t, appErr.IsCode(err, appErr.CodeInvalidState))

		require.True(t, TrulyActive(p, stages))

		require.NoError(t, CheckStageCompletion(stages, stages[i].ID))
		stages[i].Status = models.StageCompleted
		require.Equal(t, (i+1)*100/len(stages), Progress(stages))
	}

	require.True(t, AllCompleted(stages))
	p.Status = models.ProjectStatusCompleted
	require.False(t, TrulyActive(p, stages))
	require.Equal(t, 100, Progress(stages))
}
