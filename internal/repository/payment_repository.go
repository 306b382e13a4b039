package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

// PaymentRepository covers the append-only ledger. There is deliberately no
// generic Update: the only permitted mutation is pending -> completed.
type PaymentRepository interface {
	Create(ctx context.Context, rec *models.PaymentRecord) error
	GetByID(ctx context.Context, id uuid.UUID, dest *models.PaymentRecord) error
	ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.PaymentRecord, error)
	// MarkCompleted settles a pending record; completing an already-completed
	// record is a no-op (idempotent follow-up per the workflow rules).
	MarkCompleted(ctx context.Context, id uuid.UUID, transactionID string) error
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, rec *models.PaymentRecord) error {
	if err := r.db.WithContext(ctx).Create(rec).Error; err != nil {
		return appErr.Wrap(err, appErr.CodeInternal, "create payment record failed")
	}
	return nil
}

func (r *paymentRepository) GetByID(ctx context.Context, id uuid.UUID, dest *models.PaymentRecord) error {
	if err := r.db.WithContext(ctx).First(dest, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return appErr.New(appErr.CodeNotFound, "payment record not found")
		}
		return appErr.Wrap(err, appErr.CodeInternal, "get payment record failed")
	}
	return nil
}

func (r *paymentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.PaymentRecord, error) {
	var out []models.PaymentRecord
	if err := r.db.WithContext(ctx).Where("project_id = ?", projectID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, appErr.Wrap(err, appErr.CodeInternal, "list payment records failed")
	}
	return out, nil
}

func (r *paymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, transactionID string) error {
	fields := map[string]any{"status": models.PaymentRecordCompleted, "completed_at": gorm.Expr("NOW()")}
	if transactionID != "" {
		fields["transaction_id"] = transactionID
	}
	res := r.db.WithContext(ctx).Model(&models.PaymentRecord{}).
		Where("id = ? AND status = ?", id, models.PaymentRecordPending).
		Updates(fields)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "complete payment record failed")
	}
	return nil
}
