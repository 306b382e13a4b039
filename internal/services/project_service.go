package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/buildmarket/engine/internal/models"
	"github.com/buildmarket/engine/internal/repository"
	"github.com/buildmarket/engine/internal/workflow"
	appErr "github.com/buildmarket/engine/pkg/errors"
	"github.com/buildmarket/engine/pkg/logger"
)

// ProjectService covers project creation and the derived read models
// clients consume. Every derived field (lock flag, trulyActive, progress,
// review window) comes from the workflow package so that list views and
// detail views can never disagree.
type ProjectService interface {
	CreateProject(ctx context.Context, ownerID uuid.UUID, input *CreateProjectInput) (*models.Project, error)
	GetProject(ctx context.Context, projectID, viewerID uuid.UUID, viewerRole models.Role) (*ProjectView, error)
	ListMine(ctx context.Context, ownerID uuid.UUID) ([]ProjectSummary, error)
	ListActive(ctx context.Context, ownerID uuid.UUID) ([]ProjectSummary, error)
	ListPending(ctx context.Context, ownerID uuid.UUID) ([]ProjectSummary, error)
	// ListAssigned is the contractor-side view: every project assigned to
	// the caller's contractor profile.
	ListAssigned(ctx context.Context, gcUserID uuid.UUID) ([]ProjectSummary, error)

	// Admin overrides.
	PauseProject(ctx context.Context, projectID uuid.UUID) error
	ResumeProject(ctx context.Context, projectID uuid.UUID) error
}

type CreateProjectInput struct {
	Name        string
	ProjectType models.ProjectType
	Street      string
	City        string
	State       string
	Zip         string
	Country     string
	Lat         *float64
	Long        *float64
	Budget      float64
}

// ProjectView is the full aggregate plus the derived workflow facts.
// When the funding gate is locked, stage and ledger detail is withheld
// for non-admin viewers; the payment link stays visible so the homeowner
// can act.
type ProjectView struct {
	models.Project
	TrackingLocked  bool       `json:"tracking_locked"`
	TrulyActive     bool       `json:"truly_active"`
	ReviewExpiresAt *time.Time `json:"review_expires_at,omitempty"`
	ReviewOverdue   bool       `json:"review_overdue,omitempty"`
}

// ProjectSummary is the list-view projection.
type ProjectSummary struct {
	ID          uuid.UUID            `json:"id"`
	Name        string               `json:"name"`
	ProjectType models.ProjectType   `json:"project_type"`
	Status      models.ProjectStatus `json:"status"`
	Budget      float64              `json:"budget"`
	Spent       float64              `json:"spent"`
	Progress    int                  `json:"progress"`
	City        string               `json:"city"`
	State       string               `json:"state"`
}

type projectService struct {
	projects    repository.ProjectRepository
	contractors repository.ContractorRepository
}

func NewProjectService(projects repository.ProjectRepository, contractors repository.ContractorRepository) ProjectService {
	return &projectService{projects: projects, contractors: contractors}
}

var _ ProjectService = (*projectService)(nil)

func (s *projectService) CreateProject(ctx context.Context, ownerID uuid.UUID, input *CreateProjectInput) (*models.Project, error) {
	logger.L().Info("create project", zap.String("owner_id", ownerID.String()), zap.String("name", input.Name))

	p := &models.Project{
		OwnerID:     ownerID,
		Name:        input.Name,
		ProjectType: input.ProjectType,
		Street:      input.Street,
		City:        input.City,
		State:       input.State,
		Zip:         input.Zip,
		Country:     input.Country,
		Lat:         input.Lat,
		Long:        input.Long,
		Budget:      input.Budget,
		Status:      models.ProjectStatusDraft,
	}
	if err := s.projects.Create(ctx, p); err != nil {
		return nil, err
	}
	logger.L().Info("project created", zap.String("project_id", p.ID.String()))
	return p, nil
}

func (s *projectService) GetProject(ctx context.Context, projectID, viewerID uuid.UUID, viewerRole models.Role) (*ProjectView, error) {
	var p models.Project
	if err := s.projects.GetFull(ctx, projectID, &p); err != nil {
		return nil, err
	}
	if !s.mayView(ctx, &p, viewerID, viewerRole) {
		return nil, appErr.New(appErr.CodeUnauthorized, "user may not view project")
	}

	locked := workflow.TrackingLocked(&p, p.Payments)
	if !locked && workflow.UnlockedByOverride(&p, p.Payments) {
		// Homebuilding unlocked without a confirmed manual deposit. This is
		// legitimate for processor-driven activation but worth an audit trail.
		logger.L().Warn("funding gate opened by override signal",
			zap.String("project_id", p.ID.String()),
			zap.String("status", string(p.Status)),
		)
	}

	view := &ProjectView{
		Project:        p,
		TrackingLocked: locked,
		TrulyActive:    workflow.TrulyActive(&p, p.Stages),
	}
	view.Progress = workflow.Progress(p.Stages)
	if deadline, overdue, ok := workflow.ReviewWindow(&p, time.Now()); ok {
		view.ReviewExpiresAt = &deadline
		view.ReviewOverdue = overdue
	}

	// A locked project shows payment instructions only: no stage tracking,
	// no ledger detail, except to operators.
	if locked && viewerRole != models.RoleAdmin {
		view.Stages = nil
		view.Payments = nil
	}
	return view, nil
}

func (s *projectService) ListMine(ctx context.Context, ownerID uuid.UUID) ([]ProjectSummary, error) {
	projects, err := s.projects.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectSummary, 0, len(projects))
	for i := range projects {
		out = append(out, summarize(&projects[i]))
	}
	return out, nil
}

func (s *projectService) ListActive(ctx context.Context, ownerID uuid.UUID) ([]ProjectSummary, error) {
	projects, err := s.projects.ListByOwnerAndStatus(ctx, ownerID, models.ProjectStatusActive)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectSummary, 0, len(projects))
	for i := range projects {
		if !workflow.TrulyActive(&projects[i], projects[i].Stages) {
			continue
		}
		out = append(out, summarize(&projects[i]))
	}
	return out, nil
}

func (s *projectService) ListPending(ctx context.Context, ownerID uuid.UUID) ([]ProjectSummary, error) {
	projects, err := s.projects.ListByOwnerAndStatus(ctx, ownerID, models.ProjectStatusPending)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectSummary, 0, len(projects))
	for i := range projects {
		out = append(out, summarize(&projects[i]))
	}
	return out, nil
}

func (s *projectService) ListAssigned(ctx context.Context, gcUserID uuid.UUID) ([]ProjectSummary, error) {
	var contractor models.Contractor
	if err := s.contractors.GetByUserID(ctx, gcUserID, &contractor); err != nil {
		return nil, err
	}
	projects, err := s.projects.ListByContractor(ctx, contractor.ID)
	if err != nil {
		return nil, err
	}
	out := make([]ProjectSummary, 0, len(projects))
	for i := range projects {
		out = append(out, summarize(&projects[i]))
	}
	return out, nil
}

// PauseProject is an out-of-band operator override, valid from any
// non-terminal status.
func (s *projectService) PauseProject(ctx context.Context, projectID uuid.UUID) error {
	logger.L().Info("pause project", zap.String("project_id", projectID.String()))
	var p models.Project
	if err := s.projects.GetByID(ctx, projectID, &p); err != nil {
		return err
	}
	if p.Status == models.ProjectStatusCompleted || p.Status == models.ProjectStatusPaused {
		return appErr.New(appErr.CodeInvalidState, "project cannot be paused")
	}
	return s.projects.UpdateFields(ctx, projectID, map[string]any{"status": models.ProjectStatusPaused})
}

func (s *projectService) ResumeProject(ctx context.Context, projectID uuid.UUID) error {
	logger.L().Info("resume project", zap.String("project_id", projectID.String()))
	var p models.Project
	if err := s.projects.GetFull(ctx, projectID, &p); err != nil {
		return err
	}
	if p.Status != models.ProjectStatusPaused {
		return appErr.New(appErr.CodeInvalidState, "project is not paused")
	}
	next := models.ProjectStatusActive
	if workflow.AllCompleted(p.Stages) {
		next = models.ProjectStatusCompleted
	} else if p.GeneralContractorID == nil {
		next = models.ProjectStatusDraft
	} else if workflow.TrackingLocked(&p, p.Payments) {
		// Active is itself an unlock signal for the funding gate, so a
		// still-unfunded homebuilding project goes back to awaiting its
		// deposit instead.
		next = models.ProjectStatusPending
	}
	return s.projects.UpdateFields(ctx, projectID, map[string]any{"status": next})
}

func (s *projectService) mayView(ctx context.Context, p *models.Project, viewerID uuid.UUID, role models.Role) bool {
	if role == models.RoleAdmin || p.OwnerID == viewerID {
		return true
	}
	if role == models.RoleContractor && p.GeneralContractorID != nil {
		var contractor models.Contractor
		if err := s.contractors.GetByUserID(ctx, viewerID, &contractor); err != nil {
			return false
		}
		return contractor.ID == *p.GeneralContractorID
	}
	return false
}

func summarize(p *models.Project) ProjectSummary {
	return ProjectSummary{
		ID:          p.ID,
		Name:        p.Name,
		ProjectType: p.ProjectType,
		Status:      p.Status,
		Budget:      p.Budget,
		Spent:       p.Spent,
		Progress:    workflow.Progress(p.Stages),
		City:        p.City,
		State:       p.State,
	}
}
