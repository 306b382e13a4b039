package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/buildmarket/engine/internal/matching"
	"github.com/buildmarket/engine/internal/models"
	"github.com/buildmarket/engine/internal/queue/tasks"
	"github.com/buildmarket/engine/internal/repository"
	"github.com/buildmarket/engine/internal/workflow"
	appErr "github.com/buildmarket/engine/pkg/errors"
	"github.com/buildmarket/engine/pkg/logger"
)

// GCRequestService runs contractor matching and the accept/reject decision
// that converts a draft project into a fundable one.
type GCRequestService interface {
	MatchProject(ctx context.Context, projectID, actorID uuid.UUID, actorRole models.Role) ([]models.GCRequest, error)
	AcceptRequest(ctx context.Context, requestID, gcUserID uuid.UUID, input *AcceptRequestInput) (*models.Project, error)
	RejectRequest(ctx context.Context, requestID, gcUserID uuid.UUID, reason string) error
	ListInbox(ctx context.Context, gcUserID uuid.UUID) ([]models.GCRequest, error)
	// ListForProject is the owner's view of a matching round: every request
	// with its pending/accepted/rejected/superseded outcome.
	ListForProject(ctx context.Context, projectID, actorID uuid.UUID, actorRole models.Role) ([]models.GCRequest, error)
}

// StageInput is one GC-provided stage of the acceptance breakdown.
type StageInput struct {
	Name              string
	EstimatedCost     float64
	EstimatedDuration string
}

type AcceptRequestInput struct {
	EstimatedBudget   float64
	EstimatedDuration string
	GCNotes           string
	// Optional explicit breakdown; when empty the per-type default applies.
	Stages []StageInput
}

type gcRequestService struct {
	db          *gorm.DB
	projects    repository.ProjectRepository
	requests    repository.GCRequestRepository
	contractors repository.ContractorRepository
	asynqClient *asynq.Client
}

func NewGCRequestService(db *gorm.DB, projects repository.ProjectRepository, requests repository.GCRequestRepository, contractors repository.ContractorRepository, client *asynq.Client) GCRequestService {
	return &gcRequestService{db: db, projects: projects, requests: requests, contractors: contractors, asynqClient: client}
}

var _ GCRequestService = (*gcRequestService)(nil)

// MatchProject ranks the contractor pool against the project and emits
// pending requests for the top candidates. Re-running is idempotent per
// contractor: existing requests are skipped, not duplicated.
func (s *gcRequestService) MatchProject(ctx context.Context, projectID, actorID uuid.UUID, actorRole models.Role) ([]models.GCRequest, error) {
	logger.L().Info("match project", zap.String("project_id", projectID.String()), zap.String("actor_id", actorID.String()))

	var p models.Project
	if err := s.projects.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && p.OwnerID != actorID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	if p.Status != models.ProjectStatusDraft {
		return nil, appErr.New(appErr.CodeInvalidState, "only draft projects can be matched")
	}

	pool, err := s.contractors.ListCandidates(ctx)
	if err != nil {
		return nil, err
	}

	created := make([]models.GCRequest, 0, matching.MaxRequests)
	for _, cand := range matching.Rank(&p, pool) {
		exists, err := s.requests.ExistsForProjectAndContractor(ctx, projectID, cand.Contractor.ID)
		if err != nil {
			return nil, err
		}
		if exists {
			continue
		}
		req := models.GCRequest{
			ProjectID:    projectID,
			ContractorID: cand.Contractor.ID,
			Status:       models.GCRequestPending,
		}
		if err := s.requests.Create(ctx, &req); err != nil {
			return nil, err
		}
		created = append(created, req)

		enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
			UserID:    cand.Contractor.UserID.String(),
			Event:     tasks.EventGCRequestCreated,
			ProjectID: projectID.String(),
			Data:      map[string]any{"request_id": req.ID.String(), "project_name": p.Name},
		})
	}

	logger.L().Info("matching complete", zap.String("project_id", projectID.String()), zap.Int("requests_created", len(created)))
	return created, nil
}

// AcceptRequest is the GC's accept decision. It is a single transaction:
// request -> accepted, pending siblings -> superseded, stage set created,
// project budget/status/contractor assigned. A second accept on a decided
// request fails with invalid_state instead of re-running the cascade.
func (s *gcRequestService) AcceptRequest(ctx context.Context, requestID, gcUserID uuid.UUID, input *AcceptRequestInput) (*models.Project, error) {
	logger.L().Info("accept gc request", zap.String("request_id", requestID.String()), zap.String("gc_user_id", gcUserID.String()))

	var req models.GCRequest
	if err := s.requests.GetByID(ctx, requestID, &req); err != nil {
		return nil, err
	}

	var contractor models.Contractor
	if err := s.contractors.GetByUserID(ctx, gcUserID, &contractor); err != nil {
		return nil, err
	}
	if req.ContractorID != contractor.ID {
		return nil, appErr.New(appErr.CodeUnauthorized, "request belongs to another contractor")
	}
	if req.Status != models.GCRequestPending {
		return nil, appErr.New(appErr.CodeInvalidState, "request already decided")
	}

	var p models.Project
	if err := s.projects.GetByID(ctx, req.ProjectID, &p); err != nil {
		return nil, err
	}
	if p.GeneralContractorID != nil {
		return nil, appErr.New(appErr.CodeInvalidState, "project already has a contractor assigned")
	}
	if input.EstimatedBudget <= 0 {
		return nil, appErr.New(appErr.CodeInvalid, "estimated budget must be positive")
	}

	stages := buildStages(&p, input)
	now := time.Now()

	tx := s.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, appErr.Wrap(tx.Error, appErr.CodeInternal, "begin transaction failed")
	}

	// The status guard makes a racing double-accept lose here.
	res := tx.Model(&models.GCRequest{}).
		Where("id = ? AND status = ?", requestID, models.GCRequestPending).
		Updates(map[string]any{
			"status":             models.GCRequestAccepted,
			"estimated_budget":   input.EstimatedBudget,
			"estimated_duration": input.EstimatedDuration,
			"gc_notes":           input.GCNotes,
			"decided_at":         now,
		})
	if res.Error != nil {
		tx.Rollback()
		return nil, appErr.Wrap(res.Error, appErr.CodeInternal, "accept request failed")
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return nil, appErr.New(appErr.CodeInvalidState, "request already decided")
	}

	if err := tx.Model(&models.GCRequest{}).
		Where("project_id = ? AND id <> ? AND status = ?", req.ProjectID, requestID, models.GCRequestPending).
		Updates(map[string]any{"status": models.GCRequestSuperseded, "decided_at": now}).Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "supersede sibling requests failed")
	}

	for i := range stages {
		stages[i].ProjectID = p.ID
		if err := tx.Create(&stages[i]).Error; err != nil {
			tx.Rollback()
			return nil, appErr.Wrap(err, appErr.CodeInternal, "create stage failed")
		}
	}

	if err := tx.Model(&models.Project{}).Where("id = ?", p.ID).Updates(map[string]any{
		"budget":                p.Budget,
		"status":                models.ProjectStatusPending,
		"general_contractor_id": contractor.ID,
	}).Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "update project failed")
	}

	if err := tx.Commit().Error; err != nil {
		tx.Rollback()
		return nil, appErr.Wrap(err, appErr.CodeInternal, "commit transaction failed")
	}

	enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
		UserID:    p.OwnerID.String(),
		Event:     tasks.EventGCRequestAccepted,
		ProjectID: p.ID.String(),
		Data:      map[string]any{"contractor": contractor.CompanyName, "estimated_budget": input.EstimatedBudget},
	})

	var out models.Project
	if err := s.projects.GetFull(ctx, p.ID, &out); err != nil {
		return nil, err
	}
	logger.L().Info("gc request accepted",
		zap.String("request_id", requestID.String()),
		zap.String("project_id", p.ID.String()),
		zap.Float64("budget", input.EstimatedBudget),
		zap.Int("stages", len(stages)),
	)
	return &out, nil
}

func (s *gcRequestService) RejectRequest(ctx context.Context, requestID, gcUserID uuid.UUID, reason string) error {
	logger.L().Info("reject gc request", zap.String("request_id", requestID.String()), zap.String("gc_user_id", gcUserID.String()))

	var req models.GCRequest
	if err := s.requests.GetByID(ctx, requestID, &req); err != nil {
		return err
	}
	var contractor models.Contractor
	if err := s.contractors.GetByUserID(ctx, gcUserID, &contractor); err != nil {
		return err
	}
	if req.ContractorID != contractor.ID {
		return appErr.New(appErr.CodeUnauthorized, "request belongs to another contractor")
	}
	if req.Status != models.GCRequestPending {
		return appErr.New(appErr.CodeInvalidState, "request already decided")
	}

	res := s.db.WithContext(ctx).Model(&models.GCRequest{}).
		Where("id = ? AND status = ?", requestID, models.GCRequestPending).
		Updates(map[string]any{
			"status":           models.GCRequestRejected,
			"rejection_reason": reason,
			"decided_at":       time.Now(),
		})
	if res.Error != nil {
		return appErr.Wrap(res.Error, appErr.CodeInternal, "reject request failed")
	}
	if res.RowsAffected == 0 {
		return appErr.New(appErr.CodeInvalidState, "request already decided")
	}

	var p models.Project
	if err := s.projects.GetByID(ctx, req.ProjectID, &p); err == nil {
		enqueueNotify(ctx, s.asynqClient, tasks.NotifyPayload{
			UserID:    p.OwnerID.String(),
			Event:     tasks.EventGCRequestRejected,
			ProjectID: p.ID.String(),
			Data:      map[string]any{"reason": reason},
		})
	}
	return nil
}

func (s *gcRequestService) ListInbox(ctx context.Context, gcUserID uuid.UUID) ([]models.GCRequest, error) {
	var contractor models.Contractor
	if err := s.contractors.GetByUserID(ctx, gcUserID, &contractor); err != nil {
		return nil, err
	}
	return s.requests.ListPendingByContractor(ctx, contractor.ID)
}

func (s *gcRequestService) ListForProject(ctx context.Context, projectID, actorID uuid.UUID, actorRole models.Role) ([]models.GCRequest, error) {
	var p models.Project
	if err := s.projects.GetByID(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if actorRole != models.RoleAdmin && p.OwnerID != actorID {
		return nil, appErr.New(appErr.CodeUnauthorized, "user does not own project")
	}
	return s.requests.ListByProject(ctx, projectID)
}

// buildStages materializes the acceptance breakdown and sets the accepted
// budget on the in-memory project for the subsequent update.
func buildStages(p *models.Project, input *AcceptRequestInput) []models.Stage {
	p.Budget = input.EstimatedBudget
	if len(input.Stages) == 0 {
		return workflow.DefaultBreakdown(p.ProjectType, input.EstimatedBudget)
	}
	stages := make([]models.Stage, 0, len(input.Stages))
	for i, in := range input.Stages {
		stages = append(stages, models.Stage{
			Seq:               i + 1,
			Name:              in.Name,
			Status:            models.StageNotStarted,
			EstimatedCost:     in.EstimatedCost,
			EstimatedDuration: in.EstimatedDuration,
		})
	}
	return stages
}
