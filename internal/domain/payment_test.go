package domain

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
)

func TestApplyPaymentOnTime(t *testing.T) {
	loan := testLoan(t, 12) // installment 100.00, period 1 due 2025-01-13
	payDate := mustDate(t, "2025-01-13")

	records, err := ApplyPayment(loan, nil, decimal.RequireFromString("100"), payDate, payDate, false, Policy{})
	require.NoError(t, err)
	require.Len(t, records, 1)

	record := records[0]
	assert.Equal(t, 1, record.Period)
	assert.Equal(t, "100.00", record.Amount.StringFixed(2))
	assert.True(t, record.Mora.IsZero())
	assert.True(t, record.Remaining.IsZero())
	assert.True(t, record.Surplus.IsZero())
	assert.False(t, record.Late, "payment on the due date itself is not late")

	assert.Equal(t, 1, loan.PaidPeriods)
	assert.True(t, loan.AccruedMora.IsZero())
	assert.Equal(t, mustDate(t, "2025-01-20"), loan.NextDueDate)
	assert.Equal(t, StatusActivo, loan.Status)
}

func TestApplyPaymentPartial(t *testing.T) {
	t.Run("Rejected without confirmation", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("60"), payDate, payDate, false, Policy{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrPartialNotConfirmed))
		assert.Nil(t, records)

		// Nothing was mutated.
		assert.Equal(t, 0, loan.PaidPeriods)
		assert.Equal(t, StatusActivo, loan.Status)
	})

	t.Run("Recorded with confirmation, never advances the counter", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("60"), payDate, payDate, true, Policy{})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, "60.00", records[0].Amount.StringFixed(2))
		assert.Equal(t, "40.00", records[0].Remaining.StringFixed(2))
		assert.Equal(t, 0, loan.PaidPeriods)
		assert.Equal(t, mustDate(t, "2025-01-13"), loan.NextDueDate, "partial does not move the due date")
	})

	t.Run("Remainder closes the period", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		history, err := ApplyPayment(loan, nil, decimal.RequireFromString("60"), payDate, payDate, true, Policy{})
		require.NoError(t, err)

		records, err := ApplyPayment(loan, history, decimal.RequireFromString("40"), payDate, payDate, false, Policy{})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, 1, records[0].Period)
		assert.Equal(t, "40.00", records[0].Amount.StringFixed(2))
		assert.True(t, records[0].Remaining.IsZero())
		assert.Equal(t, 1, loan.PaidPeriods)
	})
}

func TestApplyPaymentLate(t *testing.T) {
	t.Run("Late payment charges flat mora", func(t *testing.T) {
		loan := testLoan(t, 12) // mora rate 5% of installment 100
		payDate := mustDate(t, "2025-01-16")

		// 105.00 covers installment plus mora.
		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("105"), payDate, payDate, false, Policy{})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.True(t, records[0].Late)
		assert.Equal(t, "5.00", records[0].Mora.StringFixed(2))
		assert.Equal(t, "105.00", records[0].Amount.StringFixed(2))
		assert.Equal(t, 1, loan.PaidPeriods)
		assert.Equal(t, "5.00", loan.AccruedMora.StringFixed(2))
	})

	t.Run("Exact installment while late is a partial", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-16")

		_, err := ApplyPayment(loan, nil, decimal.RequireFromString("100"), payDate, payDate, false, Policy{})
		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrPartialNotConfirmed))
	})

	t.Run("Mora charged at most once per period", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-16")

		history, err := ApplyPayment(loan, nil, decimal.RequireFromString("50"), payDate, payDate, true, Policy{})
		require.NoError(t, err)
		assert.Equal(t, "5.00", history[0].Mora.StringFixed(2))
		assert.Equal(t, "55.00", history[0].Remaining.StringFixed(2))

		// The follow-up the day after owes 55, not 55 plus another mora.
		nextDate := mustDate(t, "2025-01-17")
		records, err := ApplyPayment(loan, history, decimal.RequireFromString("55"), nextDate, nextDate, false, Policy{})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.True(t, records[0].Mora.IsZero())
		assert.Equal(t, 1, loan.PaidPeriods)
		assert.Equal(t, "5.00", loan.AccruedMora.StringFixed(2))
	})
}

func TestApplyPaymentOverpayment(t *testing.T) {
	t.Run("Without rollover the surplus sits on the record", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("250"), payDate, payDate, false, Policy{})
		require.NoError(t, err)
		require.Len(t, records, 1)

		assert.Equal(t, "100.00", records[0].Amount.StringFixed(2))
		assert.Equal(t, "150.00", records[0].Surplus.StringFixed(2))
		assert.Equal(t, 1, loan.PaidPeriods)
	})

	t.Run("With rollover the surplus closes following periods", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("250"), payDate, payDate, false, Policy{OverpaymentRollover: true})
		require.NoError(t, err)
		require.Len(t, records, 2)

		assert.Equal(t, 1, records[0].Period)
		assert.Equal(t, 2, records[1].Period)
		assert.Equal(t, "50.00", records[1].Surplus.StringFixed(2))
		assert.Equal(t, 2, loan.PaidPeriods)
		assert.Equal(t, mustDate(t, "2025-01-27"), loan.NextDueDate)
	})
}

func TestApplyPaymentClosesLoan(t *testing.T) {
	loan := testLoan(t, 2) // installments 600.00 + 600.00
	payDate := mustDate(t, "2025-01-13")

	var history []*Payment
	records, err := ApplyPayment(loan, history, decimal.RequireFromString("600"), payDate, payDate, false, Policy{})
	require.NoError(t, err)
	history = append(history, records...)

	payDate = mustDate(t, "2025-01-20")
	_, err = ApplyPayment(loan, history, decimal.RequireFromString("600"), payDate, payDate, false, Policy{})
	require.NoError(t, err)

	assert.Equal(t, 2, loan.PaidPeriods)
	assert.Equal(t, StatusPagado, loan.Status)

	// PAGADO is terminal.
	_, err = ApplyPayment(loan, history, decimal.RequireFromString("100"), payDate, payDate, false, Policy{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, customError.ErrLoanAlreadyPaid))
}

func TestApplyPaymentValidation(t *testing.T) {
	loan := testLoan(t, 12)
	payDate := mustDate(t, "2025-01-13")

	_, err := ApplyPayment(loan, nil, decimal.Zero, payDate, payDate, false, Policy{})
	assert.True(t, errors.Is(err, customError.ErrValidation))

	_, err = ApplyPayment(loan, nil, decimal.RequireFromString("-10"), payDate, payDate, false, Policy{})
	assert.True(t, errors.Is(err, customError.ErrValidation))
}

func TestReversePayment(t *testing.T) {
	t.Run("Round trip restores the counters", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-16") // late, charges 5.00 mora

		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("105"), payDate, payDate, false, Policy{})
		require.NoError(t, err)
		require.Equal(t, 1, loan.PaidPeriods)
		require.Equal(t, "5.00", loan.AccruedMora.StringFixed(2))

		removed, err := ReversePayment(loan, records, records[0].ID, payDate)
		require.NoError(t, err)

		assert.Equal(t, records[0].ID, removed.ID)
		assert.Equal(t, 0, loan.PaidPeriods)
		assert.True(t, loan.AccruedMora.IsZero())
		assert.Equal(t, mustDate(t, "2025-01-13"), loan.NextDueDate)
		assert.Equal(t, StatusAtrasado, loan.Status)
	})

	t.Run("Partial reversal does not touch the counter", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("60"), payDate, payDate, true, Policy{})
		require.NoError(t, err)
		require.Equal(t, 0, loan.PaidPeriods)

		_, err = ReversePayment(loan, records, records[0].ID, payDate)
		require.NoError(t, err)
		assert.Equal(t, 0, loan.PaidPeriods)
	})

	t.Run("Only the most recent payment can be reversed", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		var history []*Payment
		first, err := ApplyPayment(loan, history, decimal.RequireFromString("100"), payDate, payDate, false, Policy{})
		require.NoError(t, err)
		history = append(history, first...)

		payDate = mustDate(t, "2025-01-20")
		second, err := ApplyPayment(loan, history, decimal.RequireFromString("100"), payDate, payDate, false, Policy{})
		require.NoError(t, err)
		history = append(history, second...)

		_, err = ReversePayment(loan, history, first[0].ID, payDate)
		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrValidation))
		assert.Equal(t, 2, loan.PaidPeriods)
	})

	t.Run("Unknown payment id", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("100"), payDate, payDate, false, Policy{})
		require.NoError(t, err)

		_, err = ReversePayment(loan, records, uuid.New(), payDate)
		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrNotFound))
	})

	t.Run("Reversal after re-anchoring restores the historical anchor", func(t *testing.T) {
		loan := testLoan(t, 12)
		payDate := mustDate(t, "2025-01-13")

		records, err := ApplyPayment(loan, nil, decimal.RequireFromString("100"), payDate, payDate, false, Policy{})
		require.NoError(t, err)

		require.NoError(t, loan.Reanchor(mustDate(t, "2025-02-10")))
		require.Equal(t, 2, loan.AnchorPeriod)

		_, err = ReversePayment(loan, records, records[0].ID, payDate)
		require.NoError(t, err)

		assert.Equal(t, 1, loan.AnchorPeriod)
		assert.Equal(t, mustDate(t, "2025-01-13"), loan.AnchorDate)
		assert.Equal(t, mustDate(t, "2025-01-13"), loan.NextDueDate)
	})
}

func TestReanchor(t *testing.T) {
	t.Run("Moves unpaid due dates only", func(t *testing.T) {
		loan := testLoan(t, 12)
		loan.PaidPeriods = 3

		require.NoError(t, loan.Reanchor(mustDate(t, "2025-03-01")))

		assert.Equal(t, 4, loan.AnchorPeriod)
		assert.Equal(t, mustDate(t, "2025-03-01"), loan.AnchorDate)
		assert.Equal(t, mustDate(t, "2025-03-01"), loan.NextDueDate)
		assert.Equal(t, mustDate(t, "2025-03-08"), loan.DueDate(5))
	})

	t.Run("Rejected on a paid loan", func(t *testing.T) {
		loan := testLoan(t, 12)
		loan.PaidPeriods = 12

		err := loan.Reanchor(mustDate(t, "2025-03-01"))
		require.Error(t, err)
		assert.True(t, errors.Is(err, customError.ErrLoanAlreadyPaid))
	})
}
