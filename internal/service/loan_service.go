package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/config"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/repository"
	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/utils"
)

// LoanService orchestrates the amortization calculator, schedule generator,
// payment engine and status machine over the repositories. Every mutation
// persists the loan and its payment rows in one transaction and returns the
// complete post-mutation state, so callers never reload.
type LoanService struct {
	LoanRepo    repository.LoanRepository
	PaymentRepo repository.PaymentRepository
	ClientRepo  repository.ClientRepository
	redis       *redis.Client
	config      *config.Config
	now         func() time.Time
}

func NewLoanService(
	loanRepo repository.LoanRepository,
	paymentRepo repository.PaymentRepository,
	clientRepo repository.ClientRepository,
	redisClient *redis.Client,
	cfg *config.Config,
) *LoanService {
	return &LoanService{
		LoanRepo:    loanRepo,
		PaymentRepo: paymentRepo,
		ClientRepo:  clientRepo,
		redis:       redisClient,
		config:      cfg,
		now:         time.Now,
	}
}

// PreviewLoan runs the amortization calculator without persisting anything.
func (s *LoanService) PreviewLoan(ctx context.Context, request *domain.PreviewLoanRequest) (*domain.PreviewLoanResponse, error) {
	amort, err := domain.ComputeAmortization(request.Principal, request.InterestRate, request.TermPeriods)
	if err != nil {
		return nil, err
	}

	return &domain.PreviewLoanResponse{
		TotalPayable:     utils.FormatMoney(amort.TotalPayable),
		Installment:      utils.FormatMoney(amort.Installment),
		FinalInstallment: utils.FormatMoney(amort.FinalInstallment),
	}, nil
}

// CreateLoan computes the amortization, generates the initial schedule and
// persists the loan in one step.
func (s *LoanService) CreateLoan(ctx context.Context, request *domain.CreateLoanRequest) (*domain.Loan, []*domain.ScheduleEntry, error) {
	clientID, err := uuid.Parse(request.ClientID)
	if err != nil {
		return nil, nil, customError.NewValidationError("client_id", "must be a valid UUID")
	}

	if _, err := s.ClientRepo.GetByID(ctx, clientID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, customError.WrapNotFound("client", request.ClientID)
		}
		return nil, nil, customError.WrapDatabaseError(err)
	}

	var collectorID *uuid.UUID
	if request.CollectorID != "" {
		id, err := uuid.Parse(request.CollectorID)
		if err != nil {
			return nil, nil, customError.NewValidationError("collector_id", "must be a valid UUID")
		}
		collectorID = &id
	}

	startDate, err := utils.ParseDate(request.StartDate)
	if err != nil {
		return nil, nil, customError.NewValidationError("start_date", "must be a YYYY-MM-DD date")
	}

	moraRate := request.MoraRate
	if moraRate.IsNegative() {
		return nil, nil, customError.NewValidationError("mora_rate", "must not be negative")
	}
	if moraRate.IsZero() {
		moraRate = s.config.GetDefaultMoraRate()
	}

	amort, err := domain.ComputeAmortization(request.Principal, request.InterestRate, request.TermPeriods)
	if err != nil {
		return nil, nil, err
	}

	frequency := domain.Frequency(request.Frequency)
	schedule, err := domain.GenerateSchedule(startDate, request.TermPeriods, frequency, amort)
	if err != nil {
		return nil, nil, err
	}

	loan := &domain.Loan{
		ID:           uuid.New(),
		ClientID:     clientID,
		CollectorID:  collectorID,
		Principal:    request.Principal,
		InterestRate: request.InterestRate,
		MoraRate:     moraRate,
		TermPeriods:  request.TermPeriods,
		Frequency:    frequency,
		StartDate:    startDate,
		TotalPayable: amort.TotalPayable,
		Installment:  amort.Installment,
		PaidPeriods:  0,
		AccruedMora:  decimal.Zero,
		AnchorPeriod: 1,
		AnchorDate:   schedule[0].DueDate,
		AnchorDay:    startDate.Day(),
		Version:      1,
	}
	loan.Refresh(utils.Noon(s.now()))

	if err := s.LoanRepo.Create(ctx, loan); err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	log.Info().
		Str("loan_id", loan.ID.String()).
		Str("client_id", loan.ClientID.String()).
		Str("total_payable", utils.FormatMoney(loan.TotalPayable)).
		Int("term_periods", loan.TermPeriods).
		Msg("loan created")

	return loan, schedule, nil
}

// GetLoan returns a loan with overdue status derived lazily. Only the
// ACTIVO -> ATRASADO direction is derived on read; every other transition
// happens through a mutation, so manual overrides are not fought here.
func (s *LoanService) GetLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	s.deriveOverdue(loan)
	return loan, nil
}

// ListClientLoans returns all loans of a client.
func (s *LoanService) ListClientLoans(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error) {
	loans, err := s.LoanRepo.ListByClient(ctx, clientID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	for _, loan := range loans {
		s.deriveOverdue(loan)
	}
	return loans, nil
}

// GetSchedule derives the full schedule of a loan on demand.
func (s *LoanService) GetSchedule(ctx context.Context, loanID uuid.UUID) ([]*domain.ScheduleEntry, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return loan.BuildSchedule(payments, s.now()), nil
}

// GetPayments returns the payment ledger of a loan, oldest first.
func (s *LoanService) GetPayments(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	if _, err := s.loadLoan(ctx, loanID); err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return payments, nil
}

// GetSummary returns the aggregation projection, served from the redis cache
// when fresh. Cache failures degrade to a direct read, never to an error.
func (s *LoanService) GetSummary(ctx context.Context, loanID uuid.UUID) (*domain.LoanSummary, error) {
	cacheKey := summaryCacheKey(loanID)
	if s.redis != nil {
		cached, err := s.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var summary domain.LoanSummary
			if err := json.Unmarshal([]byte(cached), &summary); err == nil {
				return &summary, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(customError.WrapCacheError(err)).Str("loan_id", loanID.String()).Msg("summary cache read failed")
		}
	}

	loan, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	summary := loan.Summarize(payments)

	if s.redis != nil {
		if data, err := json.Marshal(summary); err == nil {
			if err := s.redis.Set(ctx, cacheKey, data, s.config.GetSummaryTTL()).Err(); err != nil {
				log.Warn().Err(customError.WrapCacheError(err)).Str("loan_id", loanID.String()).Msg("summary cache write failed")
			}
		}
	}

	return summary, nil
}

// ApplyPayment runs the payment engine and persists the loan counters and the
// new ledger rows atomically, guarded by the loan's version.
func (s *LoanService) ApplyPayment(ctx context.Context, loanID uuid.UUID, request *domain.MakePaymentRequest) (*domain.ApplyPaymentResult, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	paymentDate, err := utils.ParseDate(request.PaymentDate)
	if err != nil {
		return nil, customError.NewValidationError("payment_date", "must be a YYYY-MM-DD date")
	}

	records, err := domain.ApplyPayment(loan, payments, request.Amount, paymentDate, s.now(), request.AllowPartial, s.config.Policy())
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.PaymentRepo.Create(ctx, tx, records); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return s.updateLoan(ctx, tx, loan)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, loanID)

	log.Info().
		Str("loan_id", loanID.String()).
		Int("records", len(records)).
		Int("paid_periods", loan.PaidPeriods).
		Str("status", string(loan.Status)).
		Msg("payment applied")

	return &domain.ApplyPaymentResult{Loan: loan, Payments: records}, nil
}

// ReversePayment deletes the most recent ledger row of the loan and rolls the
// counters back, atomically.
func (s *LoanService) ReversePayment(ctx context.Context, loanID, paymentID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	removed, err := domain.ReversePayment(loan, payments, paymentID, s.now())
	if err != nil {
		return nil, err
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := s.PaymentRepo.Delete(ctx, tx, removed.ID); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return s.updateLoan(ctx, tx, loan)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, loanID)

	log.Info().
		Str("loan_id", loanID.String()).
		Str("payment_id", paymentID.String()).
		Int("paid_periods", loan.PaidPeriods).
		Msg("payment reversed")

	return loan, nil
}

// ChangePaymentDay re-anchors the unpaid schedule at newDate. Paid periods
// keep their historical due dates.
func (s *LoanService) ChangePaymentDay(ctx context.Context, loanID uuid.UUID, request *domain.ChangePaymentDayRequest) (*domain.Loan, []*domain.ScheduleEntry, error) {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, nil, err
	}

	newDate, err := utils.ParseDate(request.NewDate)
	if err != nil {
		return nil, nil, customError.NewValidationError("new_date", "must be a YYYY-MM-DD date")
	}

	if err := loan.Reanchor(newDate); err != nil {
		return nil, nil, err
	}
	loan.Refresh(utils.Noon(s.now()))

	if err := s.updateLoan(ctx, nil, loan); err != nil {
		return nil, nil, err
	}

	s.invalidateSummary(ctx, loanID)

	payments, err := s.PaymentRepo.GetByLoanID(ctx, loanID)
	if err != nil {
		return nil, nil, customError.WrapDatabaseError(err)
	}

	log.Info().
		Str("loan_id", loanID.String()).
		Str("anchor_date", utils.FormatDate(loan.AnchorDate)).
		Int("anchor_period", loan.AnchorPeriod).
		Msg("payment day changed")

	return loan, loan.BuildSchedule(payments, s.now()), nil
}

// OverrideStatus forces a loan status. This is the explicit audited operator
// operation; the forced status is persisted as-is and not re-derived within
// this request.
func (s *LoanService) OverrideStatus(ctx context.Context, loanID uuid.UUID, request *domain.UpdateStatusRequest) (*domain.Loan, error) {
	status := domain.LoanStatus(request.Status)
	if !status.Valid() {
		return nil, customError.NewValidationError("status", "must be ACTIVO, ATRASADO or PAGADO")
	}

	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	previous := loan.Status
	loan.Status = status

	if err := s.updateLoan(ctx, nil, loan); err != nil {
		return nil, err
	}

	s.invalidateSummary(ctx, loanID)

	log.Warn().
		Str("loan_id", loanID.String()).
		Str("from", string(previous)).
		Str("to", string(status)).
		Msg("manual status override")

	return loan, nil
}

// DeleteLoan removes a loan. Loans with recorded payments are rejected unless
// the cascade-delete policy is enabled, in which case the ledger rows go with
// the loan in one transaction.
func (s *LoanService) DeleteLoan(ctx context.Context, loanID uuid.UUID) error {
	loan, err := s.loadLoan(ctx, loanID)
	if err != nil {
		return err
	}

	count, err := s.PaymentRepo.CountByLoanID(ctx, loanID)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	policy := s.config.Policy()
	if count > 0 && !policy.CascadeDelete {
		return customError.WrapLoanHasPayments(loanID.String())
	}

	err = s.inTx(ctx, func(tx *sqlx.Tx) error {
		if count > 0 {
			if err := s.PaymentRepo.DeleteByLoan(ctx, tx, loanID); err != nil {
				return customError.WrapDatabaseError(err)
			}
		}
		if err := s.LoanRepo.Delete(ctx, tx, loanID); err != nil {
			return customError.WrapDatabaseError(err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.invalidateSummary(ctx, loanID)

	log.Info().Str("loan_id", loan.ID.String()).Int64("payments", count).Msg("loan deleted")
	return nil
}

// MarkOverdueLoans persists ATRASADO on every unpaid loan whose next due date
// has passed. The sweep writes exactly what lazy derivation would return, so
// the two can never disagree; version conflicts are skipped, the next run
// picks them up.
func (s *LoanService) MarkOverdueLoans(ctx context.Context) (int, error) {
	loans, err := s.LoanRepo.ListUnpaid(ctx)
	if err != nil {
		return 0, customError.WrapDatabaseError(err)
	}

	today := utils.Noon(s.now())
	marked := 0
	for _, loan := range loans {
		if loan.Status != domain.StatusActivo || !today.After(loan.NextDueDate) {
			continue
		}

		loan.Status = domain.StatusAtrasado
		if err := s.updateLoan(ctx, nil, loan); err != nil {
			if errors.Is(err, customError.ErrConcurrentModification) {
				log.Warn().Str("loan_id", loan.ID.String()).Msg("overdue sweep skipped concurrently modified loan")
				continue
			}
			return marked, err
		}
		s.invalidateSummary(ctx, loan.ID)
		marked++
	}

	return marked, nil
}

// updateLoan persists the loan through the version guard. A version conflict
// passes through with its own code; anything else is a database error.
func (s *LoanService) updateLoan(ctx context.Context, ext sqlx.ExtContext, loan *domain.Loan) error {
	if err := s.LoanRepo.Update(ctx, ext, loan); err != nil {
		if errors.Is(err, customError.ErrConcurrentModification) {
			return err
		}
		return customError.WrapDatabaseError(err)
	}
	return nil
}

// loadLoan fetches a loan translating the not-found case.
func (s *LoanService) loadLoan(ctx context.Context, loanID uuid.UUID) (*domain.Loan, error) {
	loan, err := s.LoanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNotFound("loan", loanID.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return loan, nil
}

// deriveOverdue applies the lazy ACTIVO -> ATRASADO derivation on a loaded
// loan without persisting it.
func (s *LoanService) deriveOverdue(loan *domain.Loan) {
	if loan.Status != domain.StatusActivo {
		return
	}
	if derived := domain.DeriveStatus(loan.PaidPeriods, loan.TermPeriods, loan.NextDueDate, utils.Noon(s.now())); derived == domain.StatusAtrasado {
		loan.Status = domain.StatusAtrasado
	}
}

func (s *LoanService) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.LoanRepo.BeginTx(ctx)
	if err != nil {
		return customError.WrapDatabaseError(err)
	}

	if err := fn(tx); err != nil {
		if tx != nil {
			_ = tx.Rollback()
		}
		return err
	}

	if tx != nil {
		if err := tx.Commit(); err != nil {
			return customError.WrapDatabaseError(err)
		}
	}
	return nil
}

func (s *LoanService) invalidateSummary(ctx context.Context, loanID uuid.UUID) {
	if s.redis == nil {
		return
	}
	if err := s.redis.Del(ctx, summaryCacheKey(loanID)).Err(); err != nil {
		log.Warn().Err(customError.WrapCacheError(err)).Str("loan_id", loanID.String()).Msg("summary cache invalidation failed")
	}
}

func summaryCacheKey(loanID uuid.UUID) string {
	return fmt.Sprintf("loan:summary:%s", loanID)
}
