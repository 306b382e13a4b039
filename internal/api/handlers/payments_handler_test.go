package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/buildmarket/engine/internal/api/types"
	"github.com/buildmarket/engine/internal/models"
	appErr "github.com/buildmarket/engine/pkg/errors"
)

type mockPaymentRepository struct {
	mock.Mock
}

func (m *mockPaymentRepository) Create(ctx context.Context, rec *models.PaymentRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *mockPaymentRepository) GetByID(ctx context.Context, id uuid.UUID, dest *models.PaymentRecord) error {
	args := m.Called(ctx, id, dest)
	if args.Error(0) == nil && args.Get(1) != nil {
		src := args.Get(1).(*models.PaymentRecord)
		*dest = *src
	}
	return args.Error(0)
}

func (m *mockPaymentRepository) ListByProject(ctx context.Context, projectID uuid.UUID) ([]models.PaymentRecord, error) {
	args := m.Called(ctx, projectID)
	if v := args.Get(0); v != nil {
		return v.([]models.PaymentRecord), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentRepository) MarkCompleted(ctx context.Context, id uuid.UUID, transactionID string) error {
	args := m.Called(ctx, id, transactionID)
	return args.Error(0)
}

func withPathID(r *http.Request, id uuid.UUID) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id.String())
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestPaymentsHandler_Settle(t *testing.T) {
	recordID := uuid.New()

	t.Run("settles a pending record with the passed reference", func(t *testing.T) {
		payments := &mockPaymentRepository{}
		h := NewPaymentsHandler(payments)

		rec := &models.PaymentRecord{ID: recordID, Status: models.PaymentRecordPending}
		payments.On("GetByID", mock.Anything, recordID, &models.PaymentRecord{}).Return(nil, rec).Once()
		payments.On("MarkCompleted", mock.Anything, recordID, "wire-123").Return(nil).Once()

		req := withPathID(httptest.NewRequest(http.MethodPost, "/payments/"+recordID.String()+"/settle",
			strings.NewReader(`{"transaction_id":"wire-123"}`)), recordID)
		rr := httptest.NewRecorder()
		h.Settle(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		payments.AssertExpectations(t)
	})

	t.Run("unknown record", func(t *testing.T) {
		payments := &mockPaymentRepository{}
		h := NewPaymentsHandler(payments)

		payments.On("GetByID", mock.Anything, recordID, &models.PaymentRecord{}).
			Return(appErr.New(appErr.CodeNotFound, "payment record not found"), nil).Once()

		req := withPathID(httptest.NewRequest(http.MethodPost, "/payments/"+recordID.String()+"/settle", nil), recordID)
		rr := httptest.NewRecorder()
		h.Settle(rr, req)

		require.Equal(t, http.StatusNotFound, rr.Code)
		payments.AssertNotCalled(t, "MarkCompleted", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestPaymentsHandler_ListForProject(t *testing.T) {
	projectID := uuid.New()
	payments := &mockPaymentRepository{}
	h := NewPaymentsHandler(payments)

	ledger := []models.PaymentRecord{
		{ID: uuid.New(), ProjectID: projectID, Type: models.PaymentTypeActivation, Status: models.PaymentRecordCompleted},
		{ID: uuid.New(), ProjectID: projectID, Type: models.PaymentTypeStage, Status: models.PaymentRecordPending},
	}
	payments.On("ListByProject", mock.Anything, projectID).Return(ledger, nil).Once()

	req := withPathID(httptest.NewRequest(http.MethodGet, "/projects/"+projectID.String()+"/payments", nil), projectID)
	rr := httptest.NewRecorder()
	h.ListForProject(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	var resp types.APIResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&resp))
	require.True(t, resp.Success)
}
