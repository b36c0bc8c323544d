package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
)

type mockLoanService struct {
	mock.Mock
}

func (m *mockLoanService) PreviewLoan(ctx context.Context, request *domain.PreviewLoanRequest) (*domain.PreviewLoanResponse, error) {
	args := m.Called(ctx, request)
	resp, _ := args.Get(0).(*domain.PreviewLoanResponse)
	return resp, args.Error(1)
}

func (m *mockLoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []*domain.ScheduleEntry, error) {
	args := m.Called(ctx, request)
	loan, _ := args.Get(0).(*domain.Loan)
	schedule, _ := args.Get(1).([]*domain.ScheduleEntry)
	return loan, schedule, args.Error(2)
}

func (m *mockLoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, loanID)
	loan, _ := args.Get(0).(*domain.Loan)
	return loan, args.Error(1)
}

func (m *mockLoanService) ListClientLoans(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error) {
	args := m.Called(ctx, clientID)
	loans, _ := args.Get(0).([]*domain.Loan)
	return loans, args.Error(1)
}

func (m *mockLoanService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduleEntry, error) {
	args := m.Called(ctx, loanID)
	schedule, _ := args.Get(0).([]*domain.ScheduleEntry)
	return schedule, args.Error(1)
}

func (m *mockLoanService) GetPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	args := m.Called(ctx, loanID)
	payments, _ := args.Get(0).([]*domain.Payment)
	return payments, args.Error(1)
}

func (m *mockLoanService) GetSummary(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error) {
	args := m.Called(ctx, loanID)
	summary, _ := args.Get(0).(*domain.LoanSummary)
	return summary, args.Error(1)
}

func (m *mockLoanService) ApplyPayment(ctx context.Context, loanID uuid.UUID, request *domain.MakePaymentRequest) (*domain.ApplyPaymentResult, error) {
	args := m.Called(ctx, loanID, request)
	result, _ := args.Get(0).(*domain.ApplyPaymentResult)
	return result, args.Error(1)
}

func (m *mockLoanService) ReversePayment(ctx context.Context, loanID, paymentID uuid.UUID) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, paymentID)
	loan, _ := args.Get(0).(*domain.Loan)
	return loan, args.Error(1)
}

func (m *mockLoanService) ChangePaymentDay(ctx context.Context, loanID uuid.UUID, request *domain.ChangePaymentDayRequest) (*domain.Loan, []*domain.ScheduleEntry, error) {
	args := m.Called(ctx, loanID, request)
	loan, _ := args.Get(0).(*domain.Loan)
	schedule, _ := args.Get(1).([]*domain.ScheduleEntry)
	return loan, schedule, args.Error(2)
}

func (m *mockLoanService) OverrideStatus(ctx context.Context, loanID uuid.UUID, request *domain.UpdateStatusRequest) (*domain.Loan, error) {
	args := m.Called(ctx, loanID, request)
	loan, _ := args.Get(0).(*domain.Loan)
	return loan, args.Error(1)
}

func (m *mockLoanService) DeleteLoan(ctx context.Context, loanID uuid.UUID) error {
	return m.Called(ctx, loanID).Error(0)
}

func testRouter(svc LoanService) *mux.Router {
	h := NewLoanHandler(svc)
	router := mux.NewRouter()
	router.HandleFunc("/api/v1/loans/preview", h.PreviewLoan).Methods("POST")
	router.HandleFunc("/api/v1/loans", h.CreateLoan).Methods("POST")
	router.HandleFunc("/api/v1/loans/{loanId}", h.GetLoan).Methods("GET")
	router.HandleFunc("/api/v1/loans/{loanId}", h.DeleteLoan).Methods("DELETE")
	router.HandleFunc("/api/v1/loans/{loanId}/payments", h.ApplyPayment).Methods("POST")
	router.HandleFunc("/api/v1/loans/{loanId}/payments/{paymentId}", h.ReversePayment).Methods("DELETE")
	router.HandleFunc("/api/v1/loans/{loanId}/status", h.OverrideStatus).Methods("PUT")
	return router
}

func testLoan() *domain.Loan {
	return &domain.Loan{
		ID:           uuid.New(),
		ClientID:     uuid.New(),
		Principal:    decimal.RequireFromString("1000"),
		InterestRate: decimal.RequireFromString("20"),
		MoraRate:     decimal.RequireFromString("5"),
		TermPeriods:  12,
		Frequency:    domain.FrequencyWeekly,
		TotalPayable: decimal.RequireFromString("1200"),
		Installment:  decimal.RequireFromString("100"),
		AccruedMora:  decimal.Zero,
		Status:       domain.StatusActivo,
		Version:      1,
	}
}

func TestGetLoanHandler(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		svc := new(mockLoanService)
		loan := testLoan()
		svc.On("GetLoan", mock.Anything, loan.ID).Return(loan, nil)

		req := httptest.NewRequest("GET", "/api/v1/loans/"+loan.ID.String(), nil)
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Success bool                 `json:"success"`
			Data    *domain.LoanResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.True(t, body.Success)
		assert.Equal(t, loan.ID.String(), body.Data.ID)
		assert.Equal(t, "1200.00", body.Data.TotalPayable)
		assert.Equal(t, "ACTIVO", body.Data.Status)
	})

	t.Run("Invalid UUID yields 400", func(t *testing.T) {
		svc := new(mockLoanService)

		req := httptest.NewRequest("GET", "/api/v1/loans/not-a-uuid", nil)
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "GetLoan", mock.Anything, mock.Anything)
	})

	t.Run("Not found yields 404", func(t *testing.T) {
		svc := new(mockLoanService)
		id := uuid.New()
		svc.On("GetLoan", mock.Anything, id).Return(nil, customError.WrapNotFound("loan", id.String()))

		req := httptest.NewRequest("GET", "/api/v1/loans/"+id.String(), nil)
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestCreateLoanHandler(t *testing.T) {
	t.Run("Success yields 201", func(t *testing.T) {
		svc := new(mockLoanService)
		loan := testLoan()
		svc.On("CreateLoan", mock.Anything, mock.MatchedBy(func(r *domain.CreateLoanRequest) bool {
			return r.ClientID == loan.ClientID.String() && r.TermPeriods == 12
		})).Return(loan, []*domain.ScheduleEntry{}, nil)

		payload := map[string]interface{}{
			"client_id":     loan.ClientID.String(),
			"principal":     "1000",
			"interest_rate": "20",
			"term_periods":  12,
			"frequency":     "WEEKLY",
			"start_date":    "2025-01-06",
		}
		body, _ := json.Marshal(payload)

		req := httptest.NewRequest("POST", "/api/v1/loans", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		svc.AssertExpectations(t)
	})

	t.Run("Malformed JSON yields 400", func(t *testing.T) {
		svc := new(mockLoanService)

		req := httptest.NewRequest("POST", "/api/v1/loans", bytes.NewReader([]byte("{not json")))
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
	})

	t.Run("Missing required fields yields 400", func(t *testing.T) {
		svc := new(mockLoanService)

		body, _ := json.Marshal(map[string]interface{}{"principal": "1000"})
		req := httptest.NewRequest("POST", "/api/v1/loans", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		svc.AssertNotCalled(t, "CreateLoan", mock.Anything, mock.Anything)
	})
}

func TestApplyPaymentHandler(t *testing.T) {
	t.Run("Partial confirmation required yields 409", func(t *testing.T) {
		svc := new(mockLoanService)
		loanID := uuid.New()
		svc.On("ApplyPayment", mock.Anything, loanID, mock.Anything).
			Return(nil, customError.WrapPartialNotConfirmed("100.00", "60.00"))

		body, _ := json.Marshal(map[string]interface{}{
			"amount":       "60",
			"payment_date": "2025-01-13",
		})
		req := httptest.NewRequest("POST", "/api/v1/loans/"+loanID.String()+"/payments", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)

		var errBody struct {
			Code string `json:"code"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
		assert.Equal(t, customError.ErrCodePartialNotConfirmed, errBody.Code)
	})

	t.Run("Success yields 201", func(t *testing.T) {
		svc := new(mockLoanService)
		loan := testLoan()
		svc.On("ApplyPayment", mock.Anything, loan.ID, mock.Anything).
			Return(&domain.ApplyPaymentResult{Loan: loan, Payments: []*domain.Payment{}}, nil)

		body, _ := json.Marshal(map[string]interface{}{
			"amount":       "100",
			"payment_date": "2025-01-13",
		})
		req := httptest.NewRequest("POST", "/api/v1/loans/"+loan.ID.String()+"/payments", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
	})
}

func TestReversePaymentHandler(t *testing.T) {
	svc := new(mockLoanService)
	loan := testLoan()
	paymentID := uuid.New()
	svc.On("ReversePayment", mock.Anything, loan.ID, paymentID).Return(loan, nil)

	req := httptest.NewRequest("DELETE", "/api/v1/loans/"+loan.ID.String()+"/payments/"+paymentID.String(), nil)
	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestOverrideStatusHandler(t *testing.T) {
	svc := new(mockLoanService)
	loan := testLoan()
	loan.Status = domain.StatusPagado
	svc.On("OverrideStatus", mock.Anything, loan.ID, mock.MatchedBy(func(r *domain.UpdateStatusRequest) bool {
		return r.Status == "PAGADO"
	})).Return(loan, nil)

	body, _ := json.Marshal(map[string]string{"status": "PAGADO"})
	req := httptest.NewRequest("PUT", "/api/v1/loans/"+loan.ID.String()+"/status", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	testRouter(svc).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	svc.AssertExpectations(t)
}

func TestDeleteLoanHandler(t *testing.T) {
	t.Run("Success yields 204", func(t *testing.T) {
		svc := new(mockLoanService)
		loanID := uuid.New()
		svc.On("DeleteLoan", mock.Anything, loanID).Return(nil)

		req := httptest.NewRequest("DELETE", "/api/v1/loans/"+loanID.String(), nil)
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("Loan with payments yields 409", func(t *testing.T) {
		svc := new(mockLoanService)
		loanID := uuid.New()
		svc.On("DeleteLoan", mock.Anything, loanID).
			Return(customError.WrapLoanHasPayments(loanID.String()))

		req := httptest.NewRequest("DELETE", "/api/v1/loans/"+loanID.String(), nil)
		rec := httptest.NewRecorder()
		testRouter(svc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}
