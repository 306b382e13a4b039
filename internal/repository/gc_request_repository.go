package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

type GCRequestRepository interface {
	BaseRepository[models.GCRequest]
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GCRequest, error)
	ListPendingByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.GCRequest, error)
	// ExistsForProjectAndContractor lets matching skip contractors that
	// already hold a request for the project.
	ExistsForProjectAndContractor(ctx context.Context, projectID, contractorID uuid.UUID) (bool, error)
}

type gcRequestRepository struct {
	BaseRepository[models.GCRequest]
	db *gorm.DB
}

func NewGCRequestRepository(db *gorm.DB) GCRequestRepository {
	return &gcRequestRepository{BaseRepository: NewBaseRepository[models.GCRequest](db), db: db}
}

func (r *gcRequestRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.GCRequest, error) {
	var out []models.GCRequest
	err := r.db.WithContext(ctx).
		Preload("Contractor").
		Where("project_id = ?", projectID).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list gc requests failed")
	}
	return out, nil
}

func (r *gcRequestRepository) ListPendingByContractor(ctx context.Context, contractorID uuid.UUID) ([]models.GCRequest, error) {
	var out []models.GCRequest
	err := r.db.WithContext(ctx).
		Where("contractor_id = ? AND status = ?", contractorID, models.GCRequestPending).
		Order("created_at DESC").
		Find(&out).Error
	if err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list pending gc requests failed")
	}
	return out, nil
}

func (r *gcRequestRepository) ExistsForProjectAndContractor(ctx context.Context, projectID, contractorID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.GCRequest{}).
		Where("project_id = ? AND contractor_id = ?", projectID, contractorID).
		Count(&count).Error
	if err != nil {
		return false, appErr.Wrap(err, appErr.CodeInternal, "count gc requests failed")
	}
	return count > 0, nil
}
