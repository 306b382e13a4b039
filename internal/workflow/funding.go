// Package workflow is the pure policy core of the marketplace: the funding
// gate, stage sequencing rules, payment-confirmation transitions, and the
// derived projections clients consume. It performs no I/O; services load the
// models and call in here so that every consumer shares one derivation.
package workflow

import "github.com/buildmarket/engine/internal/models"

// TrackingLocked decides whether stage tracking (stage detail, materials,
// team, timeline) is withheld from the homeowner.
//
// Non-homebuilding projects are never locked: their payment flow is advisory.
// Homebuilding projects are locked until funding is settled, where "settled"
// is derived from three raw signals with this precedence:
//
//  1. PaymentConfirmationStatus == confirmed (manual deposit confirmed)
//  2. Status == active (activation already happened, e.g. processor flow)
//  3. a completed activation payment record exists
//
// Signals 2 and 3 are overrides for processor-driven payments that bypass
// the manual-declaration path.
func TrackingLocked(p *models.Project, payments []models.PaymentRecord) bool {
	if p.ProjectType != models.ProjectTypeHomebuilding {
		return false
	}
	if p.PaymentConfirmationStatus == models.PaymentConfirmed {
		return false
	}
	if p.Status == models.ProjectStatusActive {
		return false
	}
	if HasCompletedActivation(payments) {
		return false
	}
	return true
}

// HasCompletedActivation reports whether any activation payment has settled.
func HasCompletedActivation(payments []models.PaymentRecord) bool {
	for i := range payments {
		if payments[i].Type == models.PaymentTypeActivation && payments[i].Status == models.PaymentRecordCompleted {
			return true
		}
	}
	return false
}

// UnlockedByOverride reports whether a homebuilding project is unlocked by
// one of the bypass signals rather than a confirmed manual deposit. The
// funding service logs when this path is what opens the gate.
func UnlockedByOverride(p *models.Project, payments []models.PaymentRecord) bool {
	if p.ProjectType != models.ProjectTypeHomebuilding {
		return false
	}
	if p.PaymentConfirmationStatus == models.PaymentConfirmed {
		return false
	}
	return p.Status == models.ProjectStatusActive || HasCompletedActivation(payments)
}

// CanDeclarePayment reports whether the homeowner may declare a manual
// deposit from the current confirmation status. Declaring is allowed from
// not_declared and, after an operator rejection, from rejected (the retry
// loop). Declaring from declared or confirmed is an invalid state.
func CanDeclarePayment(s models.PaymentConfirmationStatus) bool {
	return s == models.PaymentNotDeclared || s == models.PaymentRejected
}

// CanReviewDeclaration reports whether an operator confirm/reject applies:
// both act only on a declared payment.
func CanReviewDeclaration(s models.PaymentConfirmationStatus) bool {
	return s == models.PaymentDeclared
}
