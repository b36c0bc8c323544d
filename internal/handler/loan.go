package handler

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/response"
)

// LoanService is the slice of the service layer the loan handler needs.
type LoanService interface {
	PreviewLoan(ctx context.Context, request *domain.PreviewLoanRequest) (*domain.PreviewLoanResponse, error)
	CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []*domain.ScheduleEntry, error)
	GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error)
	ListClientLoans(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error)
	GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduleEntry, error)
	GetPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)
	GetSummary(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error)
	ApplyPayment(ctx context.Context, loanID uuid.UUID, request *domain.MakePaymentRequest) (*domain.ApplyPaymentResult, error)
	ReversePayment(ctx context.Context, loanID, paymentID uuid.UUID) (*domain.Loan, error)
	ChangePaymentDay(ctx context.Context, loanID uuid.UUID, request *domain.ChangePaymentDayRequest) (*domain.Loan, []*domain.ScheduleEntry, error)
	OverrideStatus(ctx context.Context, loanID uuid.UUID, request *domain.UpdateStatusRequest) (*domain.Loan, error)
	DeleteLoan(ctx context.Context, loanID uuid.UUID) error
}

type LoanHandler struct {
	service   LoanService
	validator *validator.Validate
}

func NewLoanHandler(service LoanService) *LoanHandler {
	return &LoanHandler{
		service:   service,
		validator: newValidator(),
	}
}

// PreviewLoan handles POST /loans/preview
func (h *LoanHandler) PreviewLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.PreviewLoanRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	preview, err := h.service.PreviewLoan(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, preview)
}

// CreateLoan handles POST /loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	loan, schedule, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, &domain.CreateLoanResponse{
		Loan:     loan.ToResponse(),
		Schedule: scheduleResponses(schedule),
	})
}

// GetLoan handles GET /loans/{loanId}
func (h *LoanHandler) GetLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	loan, err := h.service.GetLoan(r.Context(), loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, loan.ToResponse())
}

// ListClientLoans handles GET /clients/{clientId}/loans
func (h *LoanHandler) ListClientLoans(w http.ResponseWriter, r *http.Request) {
	clientID, err := pathUUID(r, "clientId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	loans, err := h.service.ListClientLoans(r.Context(), clientID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	responses := make([]*domain.LoanResponse, 0, len(loans))
	for _, loan := range loans {
		responses = append(responses, loan.ToResponse())
	}
	response.Success(w, responses)
}

// GetSchedule handles GET /loans/{loanId}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	schedule, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, &domain.ScheduleResponse{
		LoanID:   loanID.String(),
		Schedule: scheduleResponses(schedule),
	})
}

// GetSummary handles GET /loans/{loanId}/summary
func (h *LoanHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	summary, err := h.service.GetSummary(r.Context(), loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, summary)
}

// GetPayments handles GET /loans/{loanId}/payments
func (h *LoanHandler) GetPayments(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	payments, err := h.service.GetPayments(r.Context(), loanID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, paymentResponses(payments))
}

// ApplyPayment handles POST /loans/{loanId}/payments
func (h *LoanHandler) ApplyPayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req domain.MakePaymentRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	result, err := h.service.ApplyPayment(r.Context(), loanID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, map[string]interface{}{
		"loan":     result.Loan.ToResponse(),
		"payments": paymentResponses(result.Payments),
	})
}

// ReversePayment handles DELETE /loans/{loanId}/payments/{paymentId}
func (h *LoanHandler) ReversePayment(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	paymentID, err := pathUUID(r, "paymentId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	loan, err := h.service.ReversePayment(r.Context(), loanID, paymentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, loan.ToResponse())
}

// ChangePaymentDay handles PUT /loans/{loanId}/payment-day
func (h *LoanHandler) ChangePaymentDay(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req domain.ChangePaymentDayRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	loan, schedule, err := h.service.ChangePaymentDay(r.Context(), loanID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, map[string]interface{}{
		"loan":     loan.ToResponse(),
		"schedule": scheduleResponses(schedule),
	})
}

// OverrideStatus handles PUT /loans/{loanId}/status
func (h *LoanHandler) OverrideStatus(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req domain.UpdateStatusRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	loan, err := h.service.OverrideStatus(r.Context(), loanID, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, loan.ToResponse())
}

// DeleteLoan handles DELETE /loans/{loanId}
func (h *LoanHandler) DeleteLoan(w http.ResponseWriter, r *http.Request) {
	loanID, err := pathUUID(r, "loanId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteLoan(r.Context(), loanID); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

func scheduleResponses(entries []*domain.ScheduleEntry) []*domain.ScheduleEntryResponse {
	responses := make([]*domain.ScheduleEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, entry.ToResponse())
	}
	return responses
}

func paymentResponses(payments []*domain.Payment) []*domain.PaymentResponse {
	responses := make([]*domain.PaymentResponse, 0, len(payments))
	for _, p := range payments {
		responses = append(responses, p.ToResponse())
	}
	return responses
}
