package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/utils"
)

// Frequency is the installment cadence of a loan.
type Frequency string

const (
	FrequencyWeekly   Frequency = "WEEKLY"
	FrequencyBiweekly Frequency = "BIWEEKLY"
	FrequencyMonthly  Frequency = "MONTHLY"
)

func (f Frequency) Valid() bool {
	switch f {
	case FrequencyWeekly, FrequencyBiweekly, FrequencyMonthly:
		return true
	}
	return false
}

// AddPeriods returns the date n periods after t for this frequency.
// Weekly and biweekly periods are fixed day counts; monthly periods keep the
// day of month, clipped to the target month's length.
func (f Frequency) AddPeriods(t time.Time, n int) time.Time {
	switch f {
	case FrequencyWeekly:
		return utils.AddDays(t, 7*n)
	case FrequencyBiweekly:
		return utils.AddDays(t, 14*n)
	default:
		return utils.AddMonthsClipped(t, n)
	}
}

// Policy holds the product decisions the engine accepts as configuration
// rather than hard-coding: whether overpayment rolls into following periods
// and whether deleting a loan cascades to its payments.
type Policy struct {
	OverpaymentRollover bool
	CascadeDelete       bool
}

// Loan represents a loan and its ledger counters. TotalPayable and
// Installment are fixed at creation and never recomputed afterwards.
// AnchorDate is the due date of period AnchorPeriod; due dates of later
// periods derive from it, so changing the payment day only moves the anchor.
// AnchorDay carries the scheduled day of month for monthly loans, since the
// anchor date itself may be clipped (a day-31 schedule anchored in February).
type Loan struct {
	ID           uuid.UUID       `json:"id" db:"id"`
	ClientID     uuid.UUID       `json:"client_id" db:"client_id"`
	CollectorID  *uuid.UUID      `json:"collector_id,omitempty" db:"collector_id"`
	Principal    decimal.Decimal `json:"principal" db:"principal"`
	InterestRate decimal.Decimal `json:"interest_rate" db:"interest_rate"` // percent over the full term
	MoraRate     decimal.Decimal `json:"mora_rate" db:"mora_rate"`         // percent of the missed installment
	TermPeriods  int             `json:"term_periods" db:"term_periods"`
	Frequency    Frequency       `json:"frequency" db:"frequency"`
	StartDate    time.Time       `json:"start_date" db:"start_date"`
	TotalPayable decimal.Decimal `json:"total_payable" db:"total_payable"`
	Installment  decimal.Decimal `json:"installment" db:"installment"`
	PaidPeriods  int             `json:"paid_periods" db:"paid_periods"`
	AccruedMora  decimal.Decimal `json:"accrued_mora" db:"accrued_mora"`
	AnchorPeriod int             `json:"anchor_period" db:"anchor_period"`
	AnchorDate   time.Time       `json:"anchor_date" db:"anchor_date"`
	AnchorDay    int             `json:"anchor_day" db:"anchor_day"`
	NextDueDate  time.Time       `json:"next_due_date" db:"next_due_date"`
	Status       LoanStatus      `json:"status" db:"status"`
	Version      int64           `json:"version" db:"version"`
	CreatedAt    time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at" db:"updated_at"`
}

// InstallmentFor returns the expected amount for a period. The final period
// absorbs the rounding remainder so installments sum to TotalPayable exactly.
func (l *Loan) InstallmentFor(period int) decimal.Decimal {
	if period == l.TermPeriods {
		prior := l.Installment.Mul(decimal.NewFromInt(int64(l.TermPeriods - 1)))
		return l.TotalPayable.Sub(prior)
	}
	return l.Installment
}

// DueDate returns the due date of a 1-based period.
// Periods at or after the anchor derive from the anchor date; earlier periods
// are historical and live on their payment records, so callers needing them
// go through BuildSchedule. Monthly periods clip per target month from
// AnchorDay, so a day-31 schedule returns to the 31st after short months.
func (l *Loan) DueDate(period int) time.Time {
	n := period - l.AnchorPeriod
	if l.Frequency == FrequencyMonthly {
		day := l.AnchorDay
		if day == 0 {
			day = utils.Noon(l.AnchorDate).Day()
		}
		return utils.AddMonthsWithDay(l.AnchorDate, n, day)
	}
	return l.Frequency.AddPeriods(l.AnchorDate, n)
}

// Reanchor moves the due dates of all unpaid periods so that the next unpaid
// period falls due on newDate. Paid periods keep their historical due dates.
func (l *Loan) Reanchor(newDate time.Time) error {
	if l.PaidPeriods >= l.TermPeriods {
		return customError.WrapLoanAlreadyPaid(l.ID.String())
	}
	if newDate.IsZero() {
		return customError.NewValidationError("new_date", "must be a valid date")
	}
	l.AnchorPeriod = l.PaidPeriods + 1
	l.AnchorDate = utils.Noon(newDate)
	l.AnchorDay = l.AnchorDate.Day()
	l.NextDueDate = l.AnchorDate
	return nil
}

// Refresh re-derives NextDueDate and Status from the counters. It is a pure
// projection: calling it twice with the same today yields the same result.
func (l *Loan) Refresh(today time.Time) {
	if l.PaidPeriods >= l.TermPeriods {
		l.NextDueDate = l.DueDate(l.TermPeriods)
	} else {
		l.NextDueDate = l.DueDate(l.PaidPeriods + 1)
	}
	l.Status = DeriveStatus(l.PaidPeriods, l.TermPeriods, l.NextDueDate, today)
}

// DTOs for requests and responses

type PreviewLoanRequest struct {
	Principal    decimal.Decimal `json:"principal" validate:"required"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	TermPeriods  int             `json:"term_periods" validate:"required"`
}

type PreviewLoanResponse struct {
	TotalPayable     string `json:"total_payable"`
	Installment      string `json:"installment"`
	FinalInstallment string `json:"final_installment"`
}

type CreateLoanRequest struct {
	ClientID     string          `json:"client_id" validate:"required,uuid4"`
	CollectorID  string          `json:"collector_id,omitempty" validate:"omitempty,uuid4"`
	Principal    decimal.Decimal `json:"principal" validate:"required"`
	InterestRate decimal.Decimal `json:"interest_rate"`
	MoraRate     decimal.Decimal `json:"mora_rate"`
	TermPeriods  int             `json:"term_periods" validate:"required"`
	Frequency    string          `json:"frequency" validate:"required"`
	StartDate    string          `json:"start_date" validate:"required"`
}

type ChangePaymentDayRequest struct {
	NewDate string `json:"new_date" validate:"required"`
}

type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

type LoanResponse struct {
	ID           string  `json:"id"`
	ClientID     string  `json:"client_id"`
	CollectorID  *string `json:"collector_id,omitempty"`
	Principal    string  `json:"principal"`
	InterestRate string  `json:"interest_rate"`
	MoraRate     string  `json:"mora_rate"`
	TermPeriods  int     `json:"term_periods"`
	Frequency    string  `json:"frequency"`
	StartDate    string  `json:"start_date"`
	TotalPayable string  `json:"total_payable"`
	Installment  string  `json:"installment"`
	PaidPeriods  int     `json:"paid_periods"`
	AccruedMora  string  `json:"accrued_mora"`
	NextDueDate  string  `json:"next_due_date"`
	Status       string  `json:"status"`
	Version      int64   `json:"version"`
}

// ToResponse maps the entity to its API shape: money as decimal strings,
// dates as YYYY-MM-DD.
func (l *Loan) ToResponse() *LoanResponse {
	resp := &LoanResponse{
		ID:           l.ID.String(),
		ClientID:     l.ClientID.String(),
		Principal:    utils.FormatMoney(l.Principal),
		InterestRate: l.InterestRate.String(),
		MoraRate:     l.MoraRate.String(),
		TermPeriods:  l.TermPeriods,
		Frequency:    string(l.Frequency),
		StartDate:    utils.FormatDate(l.StartDate),
		TotalPayable: utils.FormatMoney(l.TotalPayable),
		Installment:  utils.FormatMoney(l.Installment),
		PaidPeriods:  l.PaidPeriods,
		AccruedMora:  utils.FormatMoney(l.AccruedMora),
		NextDueDate:  utils.FormatDate(l.NextDueDate),
		Status:       string(l.Status),
		Version:      l.Version,
	}
	if l.CollectorID != nil {
		id := l.CollectorID.String()
		resp.CollectorID = &id
	}
	return resp
}

type CreateLoanResponse struct {
	Loan     *LoanResponse            `json:"loan"`
	Schedule []*ScheduleEntryResponse `json:"schedule"`
}

// LoanSummary is the read-only aggregation projection over a loan and its
// payment history.
type LoanSummary struct {
	LoanID       string `json:"loan_id"`
	Status       string `json:"status"`
	TotalPayable string `json:"total_payable"`
	AccruedMora  string `json:"accrued_mora"`
	TotalPaid    string `json:"total_paid"`
	Outstanding  string `json:"outstanding"`
	PaidPeriods  int    `json:"paid_periods"`
	TermPeriods  int    `json:"term_periods"`
	NextDueDate  string `json:"next_due_date"`
}

// Summarize computes the aggregation projection. Outstanding is total payable
// plus mora charged minus everything paid, floored at zero when surplus
// overshoots the balance.
func (l *Loan) Summarize(payments []*Payment) *LoanSummary {
	totalPaid := decimal.Zero
	for _, p := range payments {
		totalPaid = totalPaid.Add(p.Amount).Add(p.Surplus)
	}
	outstanding := l.TotalPayable.Add(l.AccruedMora).Sub(totalPaid)
	if outstanding.IsNegative() {
		outstanding = decimal.Zero
	}
	return &LoanSummary{
		LoanID:       l.ID.String(),
		Status:       string(l.Status),
		TotalPayable: utils.FormatMoney(l.TotalPayable),
		AccruedMora:  utils.FormatMoney(l.AccruedMora),
		TotalPaid:    utils.FormatMoney(totalPaid),
		Outstanding:  utils.FormatMoney(outstanding),
		PaidPeriods:  l.PaidPeriods,
		TermPeriods:  l.TermPeriods,
		NextDueDate:  utils.FormatDate(l.NextDueDate),
	}
}
