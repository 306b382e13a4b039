package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

func TestProjectService_CreateProject(t *testing.T) {
	ownerID := uuid.New()
	projects := &mockProjectRepository{}
	svc := NewProjectService(projects, &mockContractorRepository{})

	projects.On("Create", mock.Anything, mock.MatchedBy(func(p *models.Project) bool {
		return p.OwnerID == ownerID && p.Status == models.ProjectStatusDraft && p.Name == "Lakeside Build"
	})).Return(nil).Once()

	p, err := svc.CreateProject(context.Background(), ownerID, &CreateProjectInput{
		Name:        "Lakeside Build",
		ProjectType: models.ProjectTypeHomebuilding,
		City:        "Austin",
		State:       "TX",
		Budget:      500000,
	})
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusDraft, p.Status)
	projects.AssertExpectations(t)
}

func TestProjectService_GetProject(t *testing.T) {
	ownerID := uuid.New()
	projectID := uuid.New()

	locked := func() *models.Project {
		return &models.Project{
			ID:                        projectID,
			OwnerID:                   ownerID,
			ProjectType:               models.ProjectTypeHomebuilding,
			Status:                    models.ProjectStatusPending,
			PaymentConfirmationStatus: models.PaymentDeclared,
			ExternalPaymentLink:       "https://pay.example.com/abc",
			Stages:                    []models.Stage{{ID: uuid.New(), Seq: 1, Status: models.StageNotStarted}},
			Payments:                  []models.PaymentRecord{{Type: models.PaymentTypeActivation, Status: models.PaymentRecordPending}},
		}
	}

	t.Run("locked view withholds stages and ledger from owner", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		p := locked()
		declared := time.Now().Add(-time.Hour)
		p.PaymentDeclaredAt = &declared
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()

		view, err := svc.GetProject(context.Background(), projectID, ownerID, models.RoleHomeowner)
		require.NoError(t, err)
		require.True(t, view.TrackingLocked)
		require.Nil(t, view.Stages)
		require.Nil(t, view.Payments)
		// The payment link stays visible so the homeowner can act.
		require.Equal(t, "https://pay.example.com/abc", view.ExternalPaymentLink)
		// The review countdown is exposed while the declaration is pending.
		require.NotNil(t, view.ReviewExpiresAt)
		require.False(t, view.ReviewOverdue)
	})

	t.Run("admin sees full detail on a locked project", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, locked()).Once()

		view, err := svc.GetProject(context.Background(), projectID, uuid.New(), models.RoleAdmin)
		require.NoError(t, err)
		require.True(t, view.TrackingLocked)
		require.NotNil(t, view.Stages)
		require.NotNil(t, view.Payments)
	})

	t.Run("unlocked view keeps stages", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		p := locked()
		p.PaymentConfirmationStatus = models.PaymentConfirmed
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()

		view, err := svc.GetProject(context.Background(), projectID, ownerID, models.RoleHomeowner)
		require.NoError(t, err)
		require.False(t, view.TrackingLocked)
		require.NotNil(t, view.Stages)
	})

	t.Run("progress is derived from stages, not the stored column", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		p := locked()
		p.PaymentConfirmationStatus = models.PaymentConfirmed
		p.Progress = 90
		p.Stages = []models.Stage{
			{ID: uuid.New(), Seq: 1, Status: models.StageCompleted},
			{ID: uuid.New(), Seq: 2, Status: models.StageNotStarted},
		}
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()

		view, err := svc.GetProject(context.Background(), projectID, ownerID, models.RoleHomeowner)
		require.NoError(t, err)
		require.Equal(t, 50, view.Progress)
	})

	t.Run("assigned contractor may view", func(t *testing.T) {
		projects := &mockProjectRepository{}
		contractors := &mockContractorRepository{}
		svc := NewProjectService(projects, contractors)

		gcUserID := uuid.New()
		contractorID := uuid.New()
		p := locked()
		p.GeneralContractorID = &contractorID
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()
		contractors.On("GetByUserID", mock.Anything, gcUserID, &models.Contractor{}).
			Return(nil, &models.Contractor{ID: contractorID, UserID: gcUserID}).Once()

		view, err := svc.GetProject(context.Background(), projectID, gcUserID, models.RoleContractor)
		require.NoError(t, err)
		require.True(t, view.TrackingLocked)
	})

	t.Run("stranger may not view", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, locked()).Once()

		_, err := svc.GetProject(context.Background(), projectID, uuid.New(), models.RoleHomeowner)
		require.True(t, appErr.IsCode(err, appErr.CodeUnauthorized))
	})
}

func TestProjectService_ListActive(t *testing.T) {
	ownerID := uuid.New()

	t.Run("filters out finished construction", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		genuinely := models.Project{
			ID: uuid.New(), OwnerID: ownerID, Name: "Ongoing", Status: models.ProjectStatusActive,
			Stages: []models.Stage{{Seq: 1, Status: models.StageInProgress}},
		}
		finished := models.Project{
			ID: uuid.New(), OwnerID: ownerID, Name: "Done", Status: models.ProjectStatusActive,
			Stages: []models.Stage{{Seq: 1, Status: models.StageCompleted}},
		}
		projects.On("ListByOwnerAndStatus", mock.Anything, ownerID, models.ProjectStatusActive).
			Return([]models.Project{genuinely, finished}, nil).Once()

		out, err := svc.ListActive(context.Background(), ownerID)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, "Ongoing", out[0].Name)
	})
}

func TestProjectService_ListAssigned(t *testing.T) {
	gcUserID := uuid.New()
	contractorID := uuid.New()

	t.Run("lists projects assigned to the caller's profile", func(t *testing.T) {
		projects := &mockProjectRepository{}
		contractors := &mockContractorRepository{}
		svc := NewProjectService(projects, contractors)

		contractors.On("GetByUserID", mock.Anything, gcUserID, &models.Contractor{}).
			Return(nil, &models.Contractor{ID: contractorID, UserID: gcUserID}).Once()
		projects.On("ListByContractor", mock.Anything, contractorID).
			Return([]models.Project{{ID: uuid.New(), Name: "Hillside Build", Status: models.ProjectStatusActive}}, nil).Once()

		out, err := svc.ListAssigned(context.Background(), gcUserID)
		require.NoError(t, err)
		require.Len(t, out, 1)
		require.Equal(t, "Hillside Build", out[0].Name)
		mock.AssertExpectationsForObjects(t, projects, contractors)
	})

	t.Run("caller without a contractor profile", func(t *testing.T) {
		projects := &mockProjectRepository{}
		contractors := &mockContractorRepository{}
		svc := NewProjectService(projects, contractors)

		contractors.On("GetByUserID", mock.Anything, gcUserID, &models.Contractor{}).
			Return(appErr.New(appErr.CodeNotFound, "contractor not found"), nil).Once()

		_, err := svc.ListAssigned(context.Background(), gcUserID)
		require.True(t, appErr.IsCode(err, appErr.CodeNotFound))
	})
}

func TestProjectService_ListMine(t *testing.T) {
	ownerID := uuid.New()
	projects := &mockProjectRepository{}
	svc := NewProjectService(projects, &mockContractorRepository{})

	projects.On("ListByOwner", mock.Anything, ownerID).Return([]models.Project{
		{ID: uuid.New(), Name: "Draft One", Status: models.ProjectStatusDraft},
		{ID: uuid.New(), Name: "Active One", Status: models.ProjectStatusActive},
	}, nil).Once()

	out, err := svc.ListMine(context.Background(), ownerID)
	require.NoError(t, err)
	require.Len(t, out, 2)
	projects.AssertExpectations(t)
}

func TestProjectService_PauseResume(t *testing.T) {
	projectID := uuid.New()

	t.Run("pause rejects completed project", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		p := &models.Project{ID: projectID, Status: models.ProjectStatusCompleted}
		projects.On("GetByID", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()

		err := svc.PauseProject(context.Background(), projectID)
		require.True(t, appErr.IsCode(err, appErr.CodeInvalidState))
	})

	t.Run("pause active project", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		p := &models.Project{ID: projectID, Status: models.ProjectStatusActive}
		projects.On("GetByID", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()
		projects.On("UpdateFields", mock.Anything, projectID, map[string]any{"status": models.ProjectStatusPaused}).Return(nil).Once()

		require.NoError(t, svc.PauseProject(context.Background(), projectID))
		projects.AssertExpectations(t)
	})

	t.Run("resume rejects a project that is not paused", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		p := &models.Project{ID: projectID, Status: models.ProjectStatusActive}
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()

		err := svc.ResumeProject(context.Background(), projectID)
		require.True(t, appErr.IsCode(err, appErr.CodeInvalidState))
	})

	t.Run("resume derives the next status", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		gcID := uuid.New()
		p := &models.Project{
			ID:                  projectID,
			Status:              models.ProjectStatusPaused,
			GeneralContractorID: &gcID,
			Stages:              []models.Stage{{Seq: 1, Status: models.StageInProgress}},
		}
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()
		projects.On("UpdateFields", mock.Anything, projectID, map[string]any{"status": models.ProjectStatusActive}).Return(nil).Once()

		require.NoError(t, svc.ResumeProject(context.Background(), projectID))
		projects.AssertExpectations(t)
	})

	t.Run("resume of an unfunded homebuilding project returns to pending", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		gcID := uuid.New()
		p := &models.Project{
			ID:                        projectID,
			ProjectType:               models.ProjectTypeHomebuilding,
			Status:                    models.ProjectStatusPaused,
			PaymentConfirmationStatus: models.PaymentDeclared,
			GeneralContractorID:       &gcID,
			Stages:                    []models.Stage{{Seq: 1, Status: models.StageNotStarted}},
		}
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()
		projects.On("UpdateFields", mock.Anything, projectID, map[string]any{"status": models.ProjectStatusPending}).Return(nil).Once()

		require.NoError(t, svc.ResumeProject(context.Background(), projectID))
		projects.AssertExpectations(t)
	})

	t.Run("resume of a funded homebuilding project goes active", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		gcID := uuid.New()
		p := &models.Project{
			ID:                        projectID,
			ProjectType:               models.ProjectTypeHomebuilding,
			Status:                    models.ProjectStatusPaused,
			PaymentConfirmationStatus: models.PaymentConfirmed,
			GeneralContractorID:       &gcID,
			Stages:                    []models.Stage{{Seq: 1, Status: models.StageInProgress}},
		}
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()
		projects.On("UpdateFields", mock.Anything, projectID, map[string]any{"status": models.ProjectStatusActive}).Return(nil).Once()

		require.NoError(t, svc.ResumeProject(context.Background(), projectID))
		projects.AssertExpectations(t)
	})

	t.Run("resume of an unassigned project returns to draft", func(t *testing.T) {
		projects := &mockProjectRepository{}
		svc := NewProjectService(projects, &mockContractorRepository{})

		p := &models.Project{ID: projectID, Status: models.ProjectStatusPaused}
		projects.On("GetFull", mock.Anything, projectID, &models.Project{}).Return(nil, p).Once()
		projects.On("UpdateFields", mock.Anything, projectID, map[string]any{"status": models.ProjectStatusDraft}).Return(nil).Once()

		require.NoError(t, svc.ResumeProject(context.Background(), projectID))
		projects.AssertExpectations(t)
	})
}
