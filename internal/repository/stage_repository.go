package repository

import (
	"gorm.io/gorm"

	"github.com/buildmarket/engine/internal/models"
)

// StageRepository is plain CRUD: stage reads always go through the project
// aggregate, which preloads the ordered stage set.
type StageRepository interface {
	BaseRepository[models.Stage]
}

type stageRepository struct {
	BaseRepository[models.Stage]
}

func NewStageRepository(db *gorm.DB) StageRepository {
	return &stageRepository{BaseRepository: NewBaseRepository[models.Stage](db)}
}
