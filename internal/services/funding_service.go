package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/buildmarket/engine/internal/models"
	"github.com/buildmarket/engine/internal/queue/tasks"
	"github.com/buildmarket/engine/internal/repository"
	"github.com/buildmarket/engine/internal/workflow"
	appErr "github.com/buildmarket/engine/pkg/errors"
	"github.com/buildmarket/engine/pkg/logger"
	"github.com/buildmarket/engine/pkg/utils"
)

// FundingService drives the manual-deposit confirmation machine:
// not_declared -> declared -> confirmed | rejected, with the
// rejected -> declared retry loop.
type FundingService interface {
	// SetPaymentLink stores the operator-generated external payment link,
	// the precondition for the homeowner's declaration.
	SetPaymentLink(ctx context.Context, projectID uuid.UUID, url string) error
	DeclarePayment(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Project, error)
	ConfirmPayment(ctx context.Context, projectID uuid.UUID) (*models.Project, error)
	RejectDeclaredPayment(ctx context.Context, projectID uuid.UUID, reason string) error
}

type fundingService struct {
	db          *gorm.DB
	projects    repository.ProjectRepository
	asynqClient *asynq.Client
}

func NewFundingService(db *gorm.DB, projects repository.ProjectRepository, client *asynq.Client) FundingService {
	return &fundingService{db: db, projects: projects, asynqClient: client}
}

var _ FundingService = (*fundingService)(nil)

func (s *fundingService) SetPaymentLink(ctx context.Context, projectID uuid.UUID, url string) error {
	logger.L().Info("set payment link", zap.String("project_id", projectID.String()))
	var p models.Project
	if err := s.projects.GetByID(ctx, projectID, &p); err != nil {
		return err
	}
	if p.ProjectType != models.ProjectTypeHomebuilding {
		return appErr.New(appErr.CodeInvalidState, "payment links apply to homebuilding projects only")
	}
	return s.projects.UpdateFields(ctx, projectID, map[string]any{"external_payment_link": url})
}

// DeclarePayment is the homeowner's "I have transferred the funds" action.
// Allowed from not_declared and rejected; declaring again from declared or
// confirmed is an invalid state. The declaration stamps paymentDeclaredAt
// and opens a pending manual activation ledger entry in one transaction.
func (s *fundingService) DeclarePayment(ctx context.Context, projectID, ownerID uuid.UUID) (*models.Project, error) {
	logger.L().Info("declare payment", zap.String("project_id", projectID.String()), zap.String("owner_id", ownerID.String()))

	var p models.Project
	if err := s.projects.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	if p.ProjectType != models.ProjectTypeHomebuilding {
		return nil, appErr.New(appErr.CodeInvalidState, "manual deposit declaration applies to homebuilding projects only")
	}
	if p.ExternalPaymentLink == "" {
		return nil, appErr.New(appErr.CodeInvalidState, "no payment link has been issued for this project")
	}
	if !workflow.CanDeclarePayment(p.PaymentConfirmationStatus) {
		return nil, appErr.New(appErr.CodeInvalidState, fmt.Sprintf("cannot declare payment from status %s", p.PaymentConfirmationStatus))
	}

	now := time.Now()
	ref := utils.Fingerprint([]byte(fmt.Sprintf("%s:%d", projectID, now.UnixNano())))

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	res := tx.Model(&models.Project{}).
		Where("id = ? AND payment_confirmation_status IN ?", projectID, []models.PaymentConfirmationStatus{models.PaymentNotDeclared, models.PaymentRejected}).
		Updates(map[string]any{
			"payment_confirmation_status": models.PaymentDeclared,
			"payment_declared_at":         now,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, appErr.Wrap(res.Error, appErr.CodeInternal, "declare payment failed")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, appErr.New(appErr.CodeInvalidState, "payment already declared")
	}

	rec := models.PaymentRecord{
		ProjectID:     projectID,
		Type:          models.PaymentTypeActivation,
		Method:        models.PaymentMethodManual,
		Status:        models.PaymentRecordPending,
		Amount:        p.Budget,
		TransactionID: ref,
	}
	if err := tx.Create(&rec).Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "create activation payment record failed")
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}

	enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
		UserID:    p.OwnerID.String(),
		Event:     tasks.EventPaymentDeclared,
		ProjectID: projectID.String(),
		Data:      map[string]any{"transaction_id": ref, "review_hours": workflow.ReviewWindowHours},
	})

	var out models.Project
	if err := s.projects.GetFull(ctx, projectID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ConfirmPayment is the operator action settling a declared deposit:
// declared -> confirmed, project pending -> active, and the pending manual
// activation entries flip to completed.
func (s *fundingService) ConfirmPayment(ctx context.Context, projectID uuid.UUID) (*models.Project, error) {
	logger.L().Info("confirm payment", zap.String("project_id", projectID.String()))

	var p models.Project
	if err := s.projects.GetFull(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if !workflow.CanReviewDeclaration(p.PaymentConfirmationStatus) {
		return nil, appErr.New(appErr.CodeInvalidState, fmt.Sprintf("cannot confirm payment from status %s", p.PaymentConfirmationStatus))
	}

	now := time.Now()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	fields := map[string]any{
		"payment_confirmation_status": models.PaymentConfirmed,
		"payment_confirmed_at":        now,
	}
	if p.Status == models.ProjectStatusPending {
		fields["status"] = models.ProjectStatusActive
	}
	res := tx.Model(&models.Project{}).
		Where("id = ? AND payment_confirmation_status = ?", projectID, models.PaymentDeclared).
		Updates(fields)
	if res.Error != nil {
		tx.Rollback()
		return nil, appErr.Wrap(res.Error, appErr.CodeInternal, "confirm payment failed")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, appErr.New(appErr.CodeInvalidState, "payment is no longer awaiting review")
	}

	if err := tx.Model(&models.PaymentRecord{}).
		Where("project_id = ? AND type = ? AND method = ? AND status = ?",
			projectID, models.PaymentTypeActivation, models.PaymentMethodManual, models.PaymentRecordPending).
		Updates(map[string]any{"status": models.PaymentRecordCompleted, "completed_at": now}).Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "settle activation payment failed")
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}

	enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
		UserID:    p.OwnerID.String(),
		Event:     tasks.EventPaymentConfirmed,
		ProjectID: projectID.String(),
	})

	var out models.Project
	if err := s.projects.GetFull(ctx, projectID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RejectDeclaredPayment sends the declaration back to the homeowner, who
// may re-declare (the retry loop).
func (s *fundingService) RejectDeclaredPayment(ctx context.Context, projectID uuid.UUID, reason string) error {
	logger.L().Info("reject declared payment", zap.String("project_id", projectID.String()))

	var p models.Project
	if err := s.projects.GetByID(ctx, projectID, &p); err != nil {
		return err
	}
	if !workflow.CanReviewDeclaration(p.PaymentConfirmationStatus) {
		return appErr.New(appErr.CodeInvalidState, fmt.Sprintf("cannot reject payment from status %s", p.PaymentConfirmationStatus))
	}

	res := s.db.WithContext(ctx).Model(&models.Project{}).
		Where("id = ? AND payment_confirmation_status = ?", projectID, models.PaymentDeclared).
		Update("payment_confirmation_status", models.PaymentRejected)
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "reject payment failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeInvalidState, "payment is no longer awaiting review")
	}

	enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
		UserID:    p.OwnerID.String(),
		Event:     tasks.EventPaymentRejected,
		ProjectID: projectID.String(),
		Data:      map[string]any{"reason": reason},
	})
	return nil
}
