package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Notification is a persisted fan-out record written by the worker when a
// workflow transition fires. Delivery transports are out of scope, the row
// itself is what clients poll.
type Notification struct {
	ID      uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	UserID  uuid.UUID      `gorm:"type:uuid;index;not null" json:"user_id" validate:"required"`
	Event   string         `gorm:"type:varchar(64);index;not null" json:"event" validate:"required"`
	Payload datatypes.JSON `gorm:"type:jsonb" json:"payload"`
	Read    bool           `gorm:"not null;default:false;index" json:"read"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
