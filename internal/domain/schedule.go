package domain

import (
	"time"

	"github.com/shopspring/decimal"

	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/utils"
)

const (
	ScheduleStatusPending = "pending"
	ScheduleStatusPaid    = "paid"
	ScheduleStatusOverdue = "overdue"
)

// ScheduleEntry is a derived row, computed on demand and never persisted.
type ScheduleEntry struct {
	Period  int             `json:"period"`
	DueDate time.Time       `json:"due_date"`
	Amount  decimal.Decimal `json:"amount"`
	Status  string          `json:"status"`
}

type ScheduleEntryResponse struct {
	Period  int    `json:"period"`
	DueDate string `json:"due_date"`
	Amount  string `json:"amount"`
	Status  string `json:"status"`
}

func (e *ScheduleEntry) ToResponse() *ScheduleEntryResponse {
	return &ScheduleEntryResponse{
		Period:  e.Period,
		DueDate: utils.FormatDate(e.DueDate),
		Amount:  utils.FormatMoney(e.Amount),
		Status:  e.Status,
	}
}

// GenerateSchedule maps (startDate, periods, frequency) to the ordered list
// of due dates. Period k (1-based) falls due k period lengths after the start
// date, at noon UTC.
func GenerateSchedule(startDate time.Time, periods int, frequency Frequency, amort *Amortization) ([]*ScheduleEntry, error) {
	if periods <= 0 {
		return nil, customError.NewValidationError("term_periods", "must be greater than zero")
	}
	if !frequency.Valid() {
		return nil, customError.NewValidationError("frequency", "must be WEEKLY, BIWEEKLY or MONTHLY")
	}

	start := utils.Noon(startDate)
	entries := make([]*ScheduleEntry, 0, periods)
	for period := 1; period <= periods; period++ {
		amount := amort.Installment
		if period == periods {
			amount = amort.FinalInstallment
		}
		entries = append(entries, &ScheduleEntry{
			Period:  period,
			DueDate: frequency.AddPeriods(start, period),
			Amount:  amount,
			Status:  ScheduleStatusPending,
		})
	}
	return entries, nil
}

// BuildSchedule derives the current schedule of a loan. Paid periods keep the
// historical due date recorded on their payment, which survives re-anchoring;
// unpaid periods derive from the anchor, marked overdue once today has passed
// their due date.
func (l *Loan) BuildSchedule(payments []*Payment, today time.Time) []*ScheduleEntry {
	dueByPeriod := make(map[int]time.Time, len(payments))
	for _, p := range payments {
		dueByPeriod[p.Period] = p.DueDate
	}

	today = utils.Noon(today)
	entries := make([]*ScheduleEntry, 0, l.TermPeriods)
	for period := 1; period <= l.TermPeriods; period++ {
		entry := &ScheduleEntry{
			Period: period,
			Amount: l.InstallmentFor(period),
		}
		if period <= l.PaidPeriods {
			entry.Status = ScheduleStatusPaid
			if due, ok := dueByPeriod[period]; ok {
				entry.DueDate = due
			} else {
				entry.DueDate = l.DueDate(period)
			}
		} else {
			entry.DueDate = l.DueDate(period)
			entry.Status = ScheduleStatusPending
			if today.After(entry.DueDate) {
				entry.Status = ScheduleStatusOverdue
			}
		}
		entries = append(entries, entry)
	}
	return entries
}

type ScheduleResponse struct {
	LoanID   string                   `json:"loan_id"`
	Schedule []*ScheduleEntryResponse `json:"schedule"`
}
