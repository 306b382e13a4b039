package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StageStatus is the lifecycle of a single construction stage.
type StageStatus string

const (
	StageNotStarted StageStatus = "not_started"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
)

// Stage is one ordered phase of a project's construction pipeline. Stages
// are created together when a GC accepts the project, and at most one may
// be in progress at a time.
type Stage struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	ProjectID uuid.UUID `gorm:"type:uuid;not null;index;index:idx_stages_project_order,unique" json:"project_id" validate:"required"`

	// "order" is a reserved word in SQL, stored as stage_order.
	Seq    int         `gorm:"column:stage_order;not null;index:idx_stages_project_order,unique" json:"order" validate:"gte=1"`
	Name   string      `gorm:"type:varchar(128);not null" json:"name" validate:"required"`
	Status StageStatus `gorm:"type:varchar(32);index;not null;default:'not_started'" json:"status"`

	EstimatedCost     float64    `gorm:"not null;default:0" json:"estimated_cost"`
	ActualCost        *float64   `json:"actual_cost,omitempty"`
	EstimatedDuration string     `gorm:"type:varchar(64)" json:"estimated_duration"`
	StartDate         *time.Time `json:"start_date,omitempty"`
	CompletionDate    *time.Time `json:"completion_date,omitempty"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
