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

// StageService runs the per-stage pipeline: the homeowner's payment
// approval admits work on one stage at a time, the assigned GC completes
// stages, and completing the last one completes the project.
type StageService interface {
	ApproveStagePayment(ctx context.Context, projectID, stageID, ownerID uuid.UUID) (*models.Stage, error)
	CompleteStage(ctx context.Context, projectID, stageID, gcUserID uuid.UUID, actualCost *float64) (*models.Stage, error)
}

type stageService struct {
	db          *gorm.DB
	projects    repository.ProjectRepository
	stages      repository.StageRepository
	contractors repository.ContractorRepository
	asynqClient *asynq.Client
}

func NewStageService(db *gorm.DB, projects repository.ProjectRepository, stages repository.StageRepository, contractors repository.ContractorRepository, client *asynq.Client) StageService {
	return &stageService{db: db, projects: projects, stages: stages, contractors: contractors, asynqClient: client}
}

var _ StageService = (*stageService)(nil)

// ApproveStagePayment flips the target stage to in_progress and records the
// stage payment, provided the project is fundable, the funding gate is open,
// and every earlier stage is completed. The funding check runs before any
// ledger write: a locked project never gains a payment record from here.
func (s *stageService) ApproveStagePayment(ctx context.Context, projectID, stageID, ownerID uuid.UUID) (*models.Stage, error) {
	logger.L().Info("approve stage payment",
		zap.String("project_id", projectID.String()),
		zap.String("stage_id", stageID.String()),
		zap.String("owner_id", ownerID.String()),
	)

	var p models.Project
	if err := s.projects.GetFull(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if p.OwnerID != ownerID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	if p.Status != models.ProjectStatusPending && p.Status != models.ProjectStatusActive {
		return nil, appErr.New(appErr.CodeInvalidState, fmt.Sprintf("project is %s, expected pending or active", p.Status))
	}
	if workflow.TrackingLocked(&p, p.Payments) {
		return nil, appErr.New(appErr.CodeFundingRequired, "project funding has not been confirmed")
	}
	if err := workflow.CheckStageApproval(p.Stages, stageID); err != nil {
		return nil, err
	}
	target := stageByID(p.Stages, stageID)

	now := time.Now()
	method, status := stagePaymentTerms(&p)
	rec := models.PaymentRecord{
		ProjectID: projectID,
		StageID:   &stageID,
		Type:      models.PaymentTypeStage,
		Method:    method,
		Status:    status,
		Amount:    target.EstimatedCost,
	}
	if status == models.PaymentRecordCompleted {
		rec.CompletedAt = &now
		rec.TransactionID = utils.Fingerprint([]byte(fmt.Sprintf("%s:%s:%d", projectID, stageID, now.UnixNano())))
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	// Racing approvals resolve here: the second one finds the stage no
	// longer not_started and fails without side effects.
	res := tx.Model(&models.Stage{}).
		Where("id = ? AND status = ?", stageID, models.StageNotStarted).
		Updates(map[string]any{"status": models.StageInProgress, "start_date": now})
	if res.Error != nil {
		tx.Rollback()
		return nil, appErr.Wrap(res.Error, appErr.CodeInternal, "start stage failed")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, appErr.New(appErr.CodeInvalidState, "stage is no longer awaiting approval")
	}

	if err := tx.Create(&rec).Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "create stage payment record failed")
	}

	// First approval of a funded pending project activates it.
	if p.Status == models.ProjectStatusPending {
		if err := tx.Model(&models.Project{}).
			Where("id = ? AND status = ?", projectID, models.ProjectStatusPending).
			Update("status", models.ProjectStatusActive).Error; err != nil {
			tx.Rollback()
			return nil, appErr.Wrap(err, appErr.CodeInternal, "activate project failed")
		}
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}

	s.notifyStageEvent(ctx, &p, tasks.EventStageApproved, map[string]any{
		"stage_id": stageID.String(), "stage": target.Name, "amount": target.EstimatedCost,
	})

	var out models.Stage
	if err := s.stages.GetByID(ctx, stageID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CompleteStage is the assigned GC's action. Completing the last stage
// flips the project to completed; the status guard on the project update
// makes that transition happen exactly once.
func (s *stageService) CompleteStage(ctx context.Context, projectID, stageID, gcUserID uuid.UUID, actualCost *float64) (*models.Stage, error) {
	logger.L().Info("complete stage",
		zap.String("project_id", projectID.String()),
		zap.String("stage_id", stageID.String()),
		zap.String("gc_user_id", gcUserID.String()),
	)

	var p models.Project
	if err := s.projects.GetFull(ctx, projectID, &p); err != nil {
		return nil, err
	}
	var contractor models.Contractor
	if err := s.contractors.GetByUserID(ctx, gcUserID, &contractor); err != nil {
		return nil, err
	}
	if p.GeneralContractorID == nil || *p.GeneralContractorID != contractor.ID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user is not the assigned contractor")
	}
	if err := workflow.CheckStageCompletion(p.Stages, stageID); err != nil {
		return nil, err
	}
	target := stageByID(p.Stages, stageID)

	now := time.Now()
	cost := target.EstimatedCost
	if actualCost != nil {
		cost = *actualCost
	}

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	fields := map[string]any{"status": models.StageCompleted, "completion_date": now}
	if actualCost != nil {
		fields["actual_cost"] = *actualCost
	}
	res := tx.Model(&models.Stage{}).
		Where("id = ? AND status = ?", stageID, models.StageInProgress).
		Updates(fields)
	if res.Error != nil {
		tx.Rollback()
		return nil, appErr.Wrap(res.Error, appErr.CodeInternal, "complete stage failed")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, appErr.New(appErr.CodeInvalidState, "stage is not in progress")
	}

	// Recompute projections against the post-update stage set.
	for i := range p.Stages {
		if p.Stages[i].ID == stageID {
			p.Stages[i].Status = models.StageCompleted
		}
	}
	projectFields := map[string]any{
		"spent":    gorm.Expr("spent + ?", cost),
		"progress": workflow.Progress(p.Stages),
	}
	allDone := workflow.AllCompleted(p.Stages)
	if allDone {
		projectFields["status"] = models.ProjectStatusCompleted
	}
	if err := tx.Model(&models.Project{}).
		Where("id = ? AND status <> ?", projectID, models.ProjectStatusCompleted).
		Updates(projectFields).Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "update project totals failed")
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}

	event := tasks.EventStageCompleted
	data := map[string]any{"stage_id": stageID.String(), "stage": target.Name, "cost": cost}
	if allDone {
		event = tasks.EventProjectCompleted
	}
	enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
		UserID:    p.OwnerID.String(),
		Event:     event,
		ProjectID: projectID.String(),
		Data:      data,
	})

	var out models.Stage
	if err := s.stages.GetByID(ctx, stageID, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// notifyStageEvent fans a stage event out to the owner and, when assigned,
// the contractor's user account.
func (s *stageService) notifyStageEvent(ctx context.Context, p *models.Project, event string, data map[string]any) {
	enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
		UserID:    p.OwnerID.String(),
		Event:     event,
		ProjectID: p.ID.String(),
		Data:      data,
	})
	if p.GeneralContractorID == nil {
		return
	}
	var contractor models.Contractor
	if err := s.contractors.GetByID(ctx, *p.GeneralContractorID, &contractor); err != nil {
		logger.L().Warn("load contractor for notification failed", zap.Error(err))
		return
	}
	enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
		UserID:    contractor.UserID.String(),
		Event:     event,
		ProjectID: p.ID.String(),
		Data:      data,
	})
}

// stagePaymentTerms decides how the stage ledger entry is recorded: manual
// rail projects settle stage payments out of band (pending), processor
// projects record them settled immediately.
func stagePaymentTerms(p *models.Project) (models.PaymentMethod, models.PaymentRecordStatus) {
	if p.ProjectType == models.ProjectTypeHomebuilding && p.PaymentConfirmationStatus == models.PaymentConfirmed {
		return models.PaymentMethodManual, models.PaymentRecordPending
	}
	return models.PaymentMethodStripe, models.PaymentRecordCompleted
}

func stageByID(stages []models.Stage, id uuid.UUID) *models.Stage {
	for i := range stages {
		if stages[i].ID == id {
			return &stages[i]
		}
	}
	return nil
}
