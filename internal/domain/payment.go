package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/utils"
)

// Payment is one ledger row against a loan period. A full payment closes its
// period (Remaining zero); a partial one leaves Remaining for a later payment
// against the same period. DueDate is the due date the payment was applied
// against, kept so paid history survives re-anchoring.
type Payment struct {
	ID          uuid.UUID       `json:"id" db:"id"`
	LoanID      uuid.UUID       `json:"loan_id" db:"loan_id"`
	Period      int             `json:"period" db:"period"`
	Amount      decimal.Decimal `json:"amount" db:"amount"`
	Mora        decimal.Decimal `json:"mora" db:"mora"`
	Remaining   decimal.Decimal `json:"remaining" db:"remaining"`
	Surplus     decimal.Decimal `json:"surplus" db:"surplus"`
	Late        bool            `json:"late" db:"late"`
	DueDate     time.Time       `json:"due_date" db:"due_date"`
	PaymentDate time.Time       `json:"payment_date" db:"payment_date"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

type MakePaymentRequest struct {
	Amount       decimal.Decimal `json:"amount" validate:"required"`
	PaymentDate  string          `json:"payment_date" validate:"required"`
	AllowPartial bool            `json:"allow_partial"`
}

type PaymentResponse struct {
	ID          string `json:"id"`
	LoanID      string `json:"loan_id"`
	Period      int    `json:"period"`
	Amount      string `json:"amount"`
	Mora        string `json:"mora"`
	Remaining   string `json:"remaining"`
	Surplus     string `json:"surplus"`
	Late        bool   `json:"late"`
	DueDate     string `json:"due_date"`
	PaymentDate string `json:"payment_date"`
}

func (p *Payment) ToResponse() *PaymentResponse {
	return &PaymentResponse{
		ID:          p.ID.String(),
		LoanID:      p.LoanID.String(),
		Period:      p.Period,
		Amount:      utils.FormatMoney(p.Amount),
		Mora:        utils.FormatMoney(p.Mora),
		Remaining:   utils.FormatMoney(p.Remaining),
		Surplus:     utils.FormatMoney(p.Surplus),
		Late:        p.Late,
		DueDate:     utils.FormatDate(p.DueDate),
		PaymentDate: utils.FormatDate(p.PaymentDate),
	}
}

// ApplyPaymentResult carries the complete post-mutation state so callers
// never need to re-read after a payment.
type ApplyPaymentResult struct {
	Loan     *Loan      `json:"loan"`
	Payments []*Payment `json:"payments"`
}

// ApplyPayment credits amount against the next unpaid period of the loan,
// mutating its counters and returning the created ledger rows (more than one
// when the rollover policy lets an overpayment close several periods).
//
// Lateness is judged against the period's due date; a late period is charged
// mora of installment*moraRate/100, flat, at most once per period. A payment
// below the required amount is only recorded when allowPartial is set,
// otherwise the caller gets a confirmation-required error and nothing is
// mutated.
func ApplyPayment(loan *Loan, history []*Payment, amount decimal.Decimal, paymentDate, today time.Time, allowPartial bool, policy Policy) ([]*Payment, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, customError.NewValidationError("amount", "must be greater than zero")
	}
	if paymentDate.IsZero() {
		return nil, customError.NewValidationError("payment_date", "must be a valid date")
	}
	if loan.Status == StatusPagado || loan.PaidPeriods >= loan.TermPeriods {
		return nil, customError.WrapLoanAlreadyPaid(loan.ID.String())
	}

	date := utils.Noon(paymentDate)
	cursor := amount
	var records []*Payment

	for {
		period := loan.PaidPeriods + 1
		dueDate := loan.DueDate(period)
		expected := loan.InstallmentFor(period)
		late := date.After(dueDate)

		assessed := moraAssessed(history, period)
		mora := decimal.Zero
		if late && assessed.IsZero() {
			mora = utils.RoundMoney(expected.Mul(loan.MoraRate).Div(oneHundred))
		}

		required := expected.Add(assessed).Add(mora).Sub(paidToward(history, period))

		if cursor.LessThan(required) {
			if len(records) > 0 {
				// Rollover leftover that cannot close another period is
				// recorded as surplus, never as an implicit partial.
				records[len(records)-1].Surplus = cursor
				break
			}
			if !allowPartial {
				return nil, customError.WrapPartialNotConfirmed(
					utils.FormatMoney(required), utils.FormatMoney(cursor))
			}
			records = append(records, newPaymentRecord(loan, period, cursor, mora, required.Sub(cursor), late, dueDate, date))
			loan.AccruedMora = loan.AccruedMora.Add(mora)
			break
		}

		records = append(records, newPaymentRecord(loan, period, required, mora, decimal.Zero, late, dueDate, date))
		loan.PaidPeriods++
		loan.AccruedMora = loan.AccruedMora.Add(mora)
		cursor = cursor.Sub(required)

		if cursor.IsZero() {
			break
		}
		if loan.PaidPeriods >= loan.TermPeriods || !policy.OverpaymentRollover {
			records[len(records)-1].Surplus = cursor
			break
		}
	}

	loan.Refresh(utils.Noon(today))
	return records, nil
}

// ReversePayment undoes the most recent ledger row of the loan: the paid
// counter is rolled back when the row had closed its period, the mora it
// charged is restored, and the anchor is moved back when the reversal reopens
// a period older than the current anchor. history must be ordered oldest
// first, as the repositories return it.
func ReversePayment(loan *Loan, history []*Payment, paymentID uuid.UUID, today time.Time) (*Payment, error) {
	var target *Payment
	for _, p := range history {
		if p.ID == paymentID {
			target = p
			break
		}
	}
	if target == nil {
		return nil, customError.WrapNotFound("payment", paymentID.String())
	}
	if target != history[len(history)-1] {
		return nil, customError.NewValidationError("payment_id", "only the most recent payment can be reversed")
	}

	if target.Remaining.IsZero() {
		loan.PaidPeriods--
	}
	loan.AccruedMora = loan.AccruedMora.Sub(target.Mora)
	if loan.AccruedMora.IsNegative() {
		loan.AccruedMora = decimal.Zero
	}
	if target.Period < loan.AnchorPeriod {
		// Reopening a period that predates the anchor: its historical due
		// date becomes the anchor again.
		loan.AnchorPeriod = target.Period
		loan.AnchorDate = target.DueDate
		loan.AnchorDay = utils.Noon(target.DueDate).Day()
	}

	loan.Refresh(utils.Noon(today))
	return target, nil
}

func newPaymentRecord(loan *Loan, period int, amount, mora, remaining decimal.Decimal, late bool, dueDate, paymentDate time.Time) *Payment {
	return &Payment{
		ID:          uuid.New(),
		LoanID:      loan.ID,
		Period:      period,
		Amount:      amount,
		Mora:        mora,
		Remaining:   remaining,
		Surplus:     decimal.Zero,
		Late:        late,
		DueDate:     dueDate,
		PaymentDate: paymentDate,
		CreatedAt:   time.Now(),
	}
}

// paidToward sums earlier partial amounts credited to a still-open period.
func paidToward(history []*Payment, period int) decimal.Decimal {
	total := decimal.Zero
	for _, p := range history {
		if p.Period == period {
			total = total.Add(p.Amount)
		}
	}
	return total
}

// moraAssessed sums the mora already charged against a period, so it is
// never charged twice.
func moraAssessed(history []*Payment, period int) decimal.Decimal {
	total := decimal.Zero
	for _, p := range history {
		if p.Period == period {
			total = total.Add(p.Mora)
		}
	}
	return total
}
