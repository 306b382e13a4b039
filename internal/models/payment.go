package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentType distinguishes what a ledger entry funds.
type PaymentType string

const (
	PaymentTypeActivation PaymentType = "activation"
	PaymentTypeStage      PaymentType = "stage"
	PaymentTypeMaterial   PaymentType = "material"
	PaymentTypeTeam       PaymentType = "team"
)

// PaymentRecordStatus is the settlement state of a ledger entry.
type PaymentRecordStatus string

const (
	PaymentRecordPending   PaymentRecordStatus = "pending"
	PaymentRecordCompleted PaymentRecordStatus = "completed"
)

// PaymentMethod identifies the rail a payment was (or will be) made over.
type PaymentMethod string

const (
	PaymentMethodStripe   PaymentMethod = "stripe"
	PaymentMethodManual   PaymentMethod = "manual"
	PaymentMethodPaystack PaymentMethod = "paystack"
	PaymentMethodWise     PaymentMethod = "wise"
	PaymentMethodZelle    PaymentMethod = "zelle"
)

// PaymentRecord is an append-only ledger entry attached to a project.
// Once created it is never mutated except the pending -> completed
// status transition.
type PaymentRecord struct {
	ID        uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID  `gorm:"type:uuid;index;not null" json:"project_id" validate:"required"`
	StageID   *uuid.UUID `gorm:"type:uuid;index" json:"stage_id,omitempty"`

	Type   PaymentType         `gorm:"type:varchar(32);index;not null" json:"type" validate:"required,oneof=activation stage material team"`
	Method PaymentMethod       `gorm:"type:varchar(32);not null" json:"method" validate:"required"`
	Status PaymentRecordStatus `gorm:"type:varchar(16);index;not null;default:'pending'" json:"status"`
	Amount float64             `gorm:"not null" json:"amount" validate:"gte=0"`

	TransactionID string     `gorm:"type:varchar(128)" json:"transaction_id,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
