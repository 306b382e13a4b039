package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ProjectType classifies what kind of construction work a project covers.
type ProjectType string

const (
	ProjectTypeHomebuilding   ProjectType = "homebuilding"
	ProjectTypeRenovation     ProjectType = "renovation"
	ProjectTypeInteriorDesign ProjectType = "interior_design"
)

// ProjectStatus is the lifecycle axis of a project.
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPending   ProjectStatus = "pending"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusPaused    ProjectStatus = "paused"
	ProjectStatusCompleted ProjectStatus = "completed"
)

// PaymentConfirmationStatus is the manual-deposit confirmation axis.
// It only carries meaning for homebuilding projects.
type PaymentConfirmationStatus string

const (
	PaymentNotDeclared PaymentConfirmationStatus = "not_declared"
	PaymentDeclared    PaymentConfirmationStatus = "declared"
	PaymentConfirmed   PaymentConfirmationStatus = "confirmed"
	PaymentRejected    PaymentConfirmationStatus = "rejected"
)

// Project is the root aggregate: a homeowner's building project moving
// through GC matching, funding, and payment-gated construction stages.
type Project struct {
	ID                  uuid.UUID   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	OwnerID             uuid.UUID   `gorm:"type:uuid;index;not null" json:"owner_id" validate:"required"`
	GeneralContractorID *uuid.UUID  `gorm:"type:uuid;index" json:"general_contractor_id,omitempty"`
	Name                string      `gorm:"not null" json:"name" validate:"required"`
	ProjectType         ProjectType `gorm:"type:varchar(32);index;not null" json:"project_type" validate:"required,oneof=homebuilding renovation interior_design"`

	Street  string   `gorm:"type:varchar(255)" json:"street"`
	City    string   `gorm:"type:varchar(128);index" json:"city"`
	State   string   `gorm:"type:varchar(64);index" json:"state"`
	Zip     string   `gorm:"type:varchar(16)" json:"zip"`
	Country string   `gorm:"type:varchar(64)" json:"country"`
	Lat     *float64 `json:"lat,omitempty"`
	Long    *float64 `json:"long,omitempty"`

	Budget   float64 `gorm:"not null;default:0" json:"budget"`
	Spent    float64 `gorm:"not null;default:0" json:"spent"`
	Progress int     `gorm:"not null;default:0" json:"progress" validate:"gte=0,lte=100"`

	Status                    ProjectStatus             `gorm:"type:varchar(32);index;not null;default:'draft'" json:"status"`
	PaymentConfirmationStatus PaymentConfirmationStatus `gorm:"type:varchar(32);not null;default:'not_declared'" json:"payment_confirmation_status"`

	ExternalPaymentLink string     `gorm:"type:text" json:"external_payment_link,omitempty"`
	PaymentDeclaredAt   *time.Time `json:"payment_declared_at,omitempty"`
	PaymentConfirmedAt  *time.Time `json:"payment_confirmed_at,omitempty"`

	Stages   []Stage         `gorm:"foreignKey:ProjectID" json:"stages,omitempty"`
	Payments []PaymentRecord `gorm:"foreignKey:ProjectID" json:"payments,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
