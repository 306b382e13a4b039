package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GCRequestStatus is the decision state of a matching request.
type GCRequestStatus string

const (
	GCRequestPending  GCRequestStatus = "pending"
	GCRequestAccepted GCRequestStatus = "accepted"
	GCRequestRejected GCRequestStatus = "rejected"
	// GCRequestSuperseded marks sibling requests closed because another
	// contractor accepted the project.
	GCRequestSuperseded GCRequestStatus = "superseded"
)

// GCRequest links a project to a candidate general contractor and tracks
// the accept/reject decision. At most one request per project may ever
// reach accepted (enforced by a partial unique index, see cmd/migrate).
type GCRequest struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID    uuid.UUID `gorm:"type:uuid;index;not null;index:idx_gc_requests_project_contractor,unique" json:"project_id" validate:"required"`
	ContractorID uuid.UUID `gorm:"type:uuid;index;not null;index:idx_gc_requests_project_contractor,unique" json:"contractor_id" validate:"required"`

	Status GCRequestStatus `gorm:"type:varchar(16);index;not null;default:'pending'" json:"status"`

	// Captured when the GC accepts.
	EstimatedBudget   *float64 `json:"estimated_budget,omitempty"`
	EstimatedDuration string   `gorm:"type:varchar(64)" json:"estimated_duration,omitempty"`
	GCNotes           string   `gorm:"type:text" json:"gc_notes,omitempty"`

	RejectionReason string     `gorm:"type:text" json:"rejection_reason,omitempty"`
	DecidedAt       *time.Time `json:"decided_at,omitempty"`

	Contractor *Contractor `gorm:"foreignKey:ContractorID" json:"contractor,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
