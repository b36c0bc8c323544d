package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
)

// LoanRepository defines the interface for loan data operations. Mutating
// methods take an sqlx.ExtContext so the service can run them inside one
// transaction together with the payment rows.
type LoanRepository interface {
	// BeginTx opens the transaction the payment engine commits atomically.
	BeginTx(ctx context.Context) (*sqlx.Tx, error)

	// Create inserts a new loan
	Create(ctx context.Context, loan *domain.Loan) error

	// GetByID retrieves a loan by its ID
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error)

	// ListByClient retrieves all loans of a client
	ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error)

	// ListUnpaid retrieves every loan that is not PAGADO, for the overdue sweep
	ListUnpaid(ctx context.Context) ([]*domain.Loan, error)

	// Update persists the loan with a version compare-and-swap; it fails with
	// a concurrent-modification error when another writer got there first
	Update(ctx context.Context, ext sqlx.ExtContext, loan *domain.Loan) error

	// Delete removes a loan
	Delete(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) error
}

// PaymentRepository defines the interface for payment ledger rows.
type PaymentRepository interface {
	// Create inserts payment records
	Create(ctx context.Context, ext sqlx.ExtContext, payments []*domain.Payment) error

	// Delete removes a single payment record
	Delete(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) error

	// DeleteByLoan removes all payment records of a loan (cascade delete policy)
	DeleteByLoan(ctx context.Context, ext sqlx.ExtContext, loanID uuid.UUID) error

	// GetByLoanID retrieves all payments for a loan, oldest first
	GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error)

	// CountByLoanID counts the payments recorded against a loan
	CountByLoanID(ctx context.Context, loanID uuid.UUID) (int64, error)
}

// ClientRepository defines the interface for client registry rows.
type ClientRepository interface {
	Create(ctx context.Context, client *domain.Client) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, client *domain.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CollectorRepository defines the interface for collector registry rows.
type CollectorRepository interface {
	Create(ctx context.Context, collector *domain.Collector) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Collector, error)
	List(ctx context.Context) ([]*domain.Collector, error)
	Update(ctx context.Context, collector *domain.Collector) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// CashEntryRepository defines the interface for cash register ledger rows.
type CashEntryRepository interface {
	Create(ctx context.Context, entry *domain.CashEntry) error
	ListByDateRange(ctx context.Context, from, to time.Time) ([]*domain.CashEntry, error)
	SumByKind(ctx context.Context, kind string, from, to time.Time) (decimal.Decimal, error)
}
