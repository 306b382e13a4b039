package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Contractor is a general contractor profile used by matching.
type Contractor struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID uuid.UUID `gorm:"type:uuid;uniqueIndex;not null" json:"user_id" validate:"required"`

	CompanyName string `gorm:"type:varchar(255);not null" json:"company_name" validate:"required"`
	City        string `gorm:"type:varchar(128);index" json:"city"`
	State       string `gorm:"type:varchar(64);index" json:"state"`

	Rating          float64 `gorm:"not null;default:0" json:"rating" validate:"gte=0,lte=5"`
	Verified        bool    `gorm:"not null;default:false;index" json:"verified"`
	YearsInBusiness int     `gorm:"not null;default:0" json:"years_in_business"`

	// Project types this contractor takes on, e.g. ["homebuilding","renovation"].
	Specialties datatypes.JSON `gorm:"type:jsonb" json:"specialties"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
