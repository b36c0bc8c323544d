package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
)

type paymentRepository struct {
	db *sqlx.DB
}

func NewPaymentRepository(db *sqlx.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, ext sqlx.ExtContext, payments []*domain.Payment) error {
	query := `
		INSERT INTO payments (
			id, loan_id, period, amount, mora, remaining, surplus,
			late, due_date, payment_date, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	if ext == nil {
		ext = r.db
	}

	for _, payment := range payments {
		if payment.CreatedAt.IsZero() {
			payment.CreatedAt = time.Now()
		}
		_, err := ext.ExecContext(ctx, query,
			payment.ID,
			payment.LoanID,
			payment.Period,
			payment.Amount,
			payment.Mora,
			payment.Remaining,
			payment.Surplus,
			payment.Late,
			payment.DueDate,
			payment.PaymentDate,
			payment.CreatedAt,
		)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *paymentRepository) Delete(ctx context.Context, ext sqlx.ExtContext, id uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	_, err := ext.ExecContext(ctx, `DELETE FROM payments WHERE id = $1`, id)
	return err
}

func (r *paymentRepository) DeleteByLoan(ctx context.Context, ext sqlx.ExtContext, loanID uuid.UUID) error {
	if ext == nil {
		ext = r.db
	}

	_, err := ext.ExecContext(ctx, `DELETE FROM payments WHERE loan_id = $1`, loanID)
	return err
}

func (r *paymentRepository) GetByLoanID(ctx context.Context, loanID uuid.UUID) ([]*domain.Payment, error) {
	query := `
		SELECT id, loan_id, period, amount, mora, remaining, surplus,
			late, due_date, payment_date, created_at
		FROM payments
		WHERE loan_id = $1
		ORDER BY created_at, period
	`

	var payments []*domain.Payment
	if err := r.db.SelectContext(ctx, &payments, query, loanID); err != nil {
		return nil, err
	}

	return payments, nil
}

func (r *paymentRepository) CountByLoanID(ctx context.Context, loanID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM payments WHERE loan_id = $1`, loanID)
	return count, err
}
