package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

type ContractorRepository interface {
	BaseRepository[models.Contractor]
	GetByUserID(ctx context.Context, userID uuid.UUID, dest *models.Contractor) error
	ListCandidates(ctx context.Context) ([]models.Contractor, error)
}

type contractorRepository struct {
	BaseRepository[models.Contractor]
	db *gorm.DB
}

func NewContractorRepository(db *gorm.DB) ContractorRepository {
	return &contractorRepository{BaseRepository: NewBaseRepository[models.Contractor](db), db: db}
}

func (r *contractorRepository) GetByUserID(ctx context.Context, userID uuid.UUID, dest *models.Contractor) error {
	if err := r.db.WithContext(ctx).First(dest, "user_id = ?", userID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "contractor profile not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get contractor failed")
	}
	return nil
}

func (r *contractorRepository) ListCandidates(ctx context.Context) ([]models.Contractor, error) {
	var out []models.Contractor
	if err := r.db.WithContext(ctx).Order("rating DESC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list contractors failed")
	}
	return out, nil
}
