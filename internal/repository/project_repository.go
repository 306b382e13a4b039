package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

type ProjectRepository interface {
	BaseRepository[models.Project]
	// GetFull loads the project with its stages (in order) and payments.
	GetFull(ctx context.Context, id uuid.UUID, dest *models.Project) error
	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error)
	ListByOwnerAndStatus(ctx context.Context, ownerID uuid.UUID, status models.ProjectStatus) ([]models.Project, error)
	ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Project, error)
}

type projectRepository struct {
	BaseRepository[models.Project]
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{BaseRepository: NewBaseRepository[models.Project](db), db: db}
}

func (r *projectRepository) GetFull(ctx context.Context, id uuid.UUID, dest *models.Project) error {
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB { return db.Order("stage_order ASC") }).
		Preload("Payments", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		First(dest, "id = ?", id).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "project not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get project failed")
	}
	return nil
}

func (r *projectRepository) ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	if err := r.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by owner failed")
	}
	return out, nil
}

func (r *projectRepository) ListByOwnerAndStatus(ctx context.Context, ownerID uuid.UUID, status models.ProjectStatus) ([]models.Project, error) {
	var out []models.Project
	err := r.db.WithContext(ctx).
		Preload("Stages", func(db *gorm.DB) *gorm.DB { return db.Order("stage_order ASC") }).
		Where("owner_id = ? AND status = ?", ownerID, status).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by status failed")
	}
	return out, nil
}

func (r *projectRepository) ListByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.Project, error) {
	var out []models.Project
	err := r.db.WithContext(ctx).
		Where("general_contractor_id = ?", contractorID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list projects by contractor failed")
	}
	return out, nil
}
