package workflow

import (
	"time"

	"github.com/buildmarket/engine/internal/models"
)

// ReviewWindowHours is the advisory operator-review SLA for a declared
// manual deposit, measured from the declaration. Nothing transitions when
// it elapses; it is surfaced to clients as a countdown only.
const ReviewWindowHours = 72

// TrulyActive reports whether a project should appear in "active" lists:
// lifecycle status is active and construction is not already finished.
// The stored progress percentage is deliberately ignored; stage statuses
// are the source of truth.
func TrulyActive(p *models.Project, stages []models.Stage) bool {
	return p.Status == models.ProjectStatusActive && !AllCompleted(stages)
}

// ReviewWindow returns the review deadline for a declared payment and
// whether it has already elapsed. ok is false when the project has no
// pending declaration.
func ReviewWindow(p *models.Project, now time.Time) (deadline time.Time, overdue bool, ok bool) {
	if p.PaymentConfirmationStatus != models.PaymentDeclared || p.PaymentDeclaredAt == nil {
		return time.Time{}, false, false
	}
	deadline = p.PaymentDeclaredAt.Add(ReviewWindowHours * time.Hour)
	return deadline, now.After(deadline), true
}
