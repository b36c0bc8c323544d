package domain

import (
	"github.com/shopspring/decimal"

	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/utils"
)

var oneHundred = decimal.NewFromInt(100)

// Amortization is the result of the flat-rate calculation done once at loan
// creation. Interest is computed on the full principal, not period by period.
type Amortization struct {
	TotalPayable     decimal.Decimal
	Installment      decimal.Decimal
	FinalInstallment decimal.Decimal
}

// ComputeAmortization maps (principal, ratePercent, periods) to the total
// payable and the periodic installment.
//
//	totalPayable = principal + principal*rate/100
//	installment  = totalPayable / periods, rounded half up to cents
//
// The final installment absorbs the rounding remainder so that the sum of all
// installments equals totalPayable exactly. Pure and idempotent.
func ComputeAmortization(principal, ratePercent decimal.Decimal, periods int) (*Amortization, error) {
	if principal.LessThanOrEqual(decimal.Zero) {
		return nil, customError.NewValidationError("principal", "must be greater than zero")
	}
	if ratePercent.IsNegative() {
		return nil, customError.NewValidationError("interest_rate", "must not be negative")
	}
	if ratePercent.GreaterThan(oneHundred) {
		return nil, customError.NewValidationError("interest_rate", "must not exceed 100")
	}
	if periods <= 0 {
		return nil, customError.NewValidationError("term_periods", "must be greater than zero")
	}

	interest := principal.Mul(ratePercent).Div(oneHundred)
	totalPayable := utils.RoundMoney(principal.Add(interest))
	installment := utils.RoundMoney(totalPayable.Div(decimal.NewFromInt(int64(periods))))
	final := totalPayable.Sub(installment.Mul(decimal.NewFromInt(int64(periods - 1))))

	// Every installment must be a positive money amount. A total too small
	// for the term rounds to a zero installment, or to a final installment
	// that the per-period rounding has already consumed.
	if installment.IsZero() || final.LessThanOrEqual(decimal.Zero) {
		return nil, customError.NewValidationError("principal", "is too small to spread over the requested periods")
	}

	return &Amortization{
		TotalPayable:     totalPayable,
		Installment:      installment,
		FinalInstallment: final,
	}, nil
}
