package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
)

type loanRepository struct {
	db *sqlx.DB
}

func NewLoanRepository(db *sqlx.DB) LoanRepository {
	return &loanRepository{db: db}
}

func (r *loanRepository) BeginTx(ctx context.Context) (*sqlx.Tx, error) {
	return r.db.BeginTxx(ctx, nil)
}

func (r *loanRepository) Create(ctx context.Context, loan *domain.Loan) error {
	query := `
		INSERT INTO loans (
			id, client_id, collector_id, principal, interest_rate, mora_rate,
			term_periods, frequency, start_date, total_payable, installment,
			paid_periods, accrued_mora, anchor_period, anchor_date, anchor_day,
			next_due_date, status, version, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	now := time.Now()
	loan.CreatedAt = now
	loan.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		loan.ID,
		loan.ClientID,
		loan.CollectorID,
		loan.Principal,
		loan.InterestRate,
		loan.MoraRate,
		loan.TermPeriods,
		loan.Frequency,
		loan.StartDate,
		loan.TotalPayable,
		loan.Installment,
		loan.PaidPeriods,
		loan.AccruedMora,
		loan.AnchorPeriod,
		loan.AnchorDate,
		loan.AnchorDay,
		loan.NextDueDate,
		loan.Status,
		loan.Version,
		loan.CreatedAt,
		loan.UpdatedAt,
	)

	return err
}

const loanColumns = `
	id, client_id, collector_id, principal, interest_rate, mora_rate,
	term_periods, frequency, start_date, total_payable, installment,
	paid_periods, accrued_mora, anchor_period, anchor_date, anchor_day,
	next_due_date, status, version, created_at, updated_at
`

func (r *loanRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`

	var loan domain.Loan
	if err := r.db.GetContext(ctx, &loan, query, id); err != nil {
		return nil, err
	}

	return &loan, nil
}

func (r *loanRepository) ListByClient(ctx context.Context, clientID uuid.UUID) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE client_id = $1 ORDER BY created_at`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, clientID); err != nil {
		return nil, err
	}

	return loans, nil
}

func (r *loanRepository) ListUnpaid(ctx context.Context) ([]*domain.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status <> $1 ORDER BY created_at`

	var loans []*domain.Loan
	if err := r.db.SelectContext(ctx, &loans, query, domain.StatusPagado); err != nil {
		return nil, err
	}

	return loans, nil
}

// Update writes the loan guarded by its version: the row is only touched when
// nobody else bumped the version since this loan was read.
func (r *loanRepository) Update(ctx context.Context, ext sqlx.ExtContext, loan *domain.Loan) error {
	query := `
		UPDATE loans
		SET paid_periods = $3, accrued_mora = $4, anchor_period = $5,
			anchor_date = $6, anchor_day = $7, next_due_date = $8, status = $9,
			version = version + 1, updated_at = $10
		WHERE id = $1 AND version = $2
	`

	if ext == nil {
		ext = r.db
	}

	loan.UpdatedAt = time.Now()
	result, err := ext.ExecContext(ctx, query,
		loan.ID,
		loan.Version,
		loan.PaidPeriods,
		loan.AccruedMora,
		loan.AnchorPeriod,
		loan.AnchorDate,
		loan.AnchorDay,
		loan.NextDueDate,
		loan.Status,
		loan.UpdatedAt,
	)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return customError.WrapConcurrentModification(loan.ID.String())
	}

	loan.Version++
	return nil
}

func (r *loanRepository) Delete(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	_, err := ext.ExecContext(ctx, `DELETE FROM loans WHERE id = $1`, id)
	return err
}
