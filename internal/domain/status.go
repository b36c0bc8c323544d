package domain

import (
	"time"
)

// LoanStatus is a closed enum. PAGADO is terminal: no further payments are
// accepted against it.
type LoanStatus string

const (
	StatusActivo   LoanStatus = "ACTIVO"
	StatusAtrasado LoanStatus = "ATRASADO"
	StatusPagado   LoanStatus = "PAGADO"
)

func (s LoanStatus) Valid() bool {
	switch s {
	case StatusActivo, StatusAtrasado, StatusPagado:
		return true
	}
	return false
}

// DeriveStatus computes the automatic status from the ledger counters:
//
//	PAGADO   when every period is paid
//	ATRASADO when the next unpaid period's due date has passed
//	ACTIVO   otherwise
//
// It is a pure function of its inputs; re-deriving from the same inputs
// always yields the same result. Manual operator overrides are applied by the
// service layer after this derivation and are never re-derived in the same
// request.
func DeriveStatus(paidPeriods, termPeriods int, nextDueDate, today time.Time) LoanStatus {
	if paidPeriods >= termPeriods {
		return StatusPagado
	}
	if today.After(nextDueDate) {
		return StatusAtrasado
	}
	return StatusActivo
}
