package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
)

type clientRepository struct {
	db *sqlx.DB
}

func NewClientRepository(db *sqlx.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *domain.Client) error {
	query := `
		INSERT INTO clients (id, name, document_id, phone, address, collector_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	now := time.Now()
	client.CreatedAt = now
	client.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.DocumentID,
		client.Phone,
		client.Address,
		client.CollectorID,
		client.CreatedAt,
		client.UpdatedAt,
	)

	return err
}

func (r *clientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	query := `
		SELECT id, name, document_id, phone, address, collector_id, created_at, updated_at
		FROM clients
		WHERE id = $1
	`

	var client domain.Client
	if err := r.db.GetContext(ctx, &client, query, id); err != nil {
		return nil, err
	}

	return &client, nil
}

func (r *clientRepository) List(ctx context.Context) ([]*domain.Client, error) {
	query := `
		SELECT id, name, document_id, phone, address, collector_id, created_at, updated_at
		FROM clients
		ORDER BY name
	`

	var clients []*domain.Client
	if err := r.db.SelectContext(ctx, &clients, query); err != nil {
		return nil, err
	}

	return clients, nil
}

func (r *clientRepository) Update(ctx context.Context, client *domain.Client) error {
	query := `
		UPDATE clients
		SET name = $2, document_id = $3, phone = $4, address = $5, collector_id = $6, updated_at = $7
		WHERE id = $1
	`

	client.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		client.ID,
		client.Name,
		client.DocumentID,
		client.Phone,
		client.Address,
		client.CollectorID,
		client.UpdatedAt,
	)

	return err
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM clients WHERE id = $1`, id)
	return err
}

type collectorRepository struct {
	db *sqlx.DB
}

func NewCollectorRepository(db *sqlx.DB) CollectorRepository {
	return &collectorRepository{db: db}
}

func (r *collectorRepository) Create(ctx context.Context, collector *domain.Collector) error {
	query := `
		INSERT INTO collectors (id, name, zone, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	now := time.Now()
	collector.CreatedAt = now
	collector.UpdatedAt = now

	_, err := r.db.ExecContext(ctx, query,
		collector.ID,
		collector.Name,
		collector.Zone,
		collector.Phone,
		collector.CreatedAt,
		collector.UpdatedAt,
	)

	return err
}

func (r *collectorRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Collector, error) {
	query := `SELECT id, name, zone, phone, created_at, updated_at FROM collectors WHERE id = $1`

	var collector domain.Collector
	if err := r.db.GetContext(ctx, &collector, query, id); err != nil {
		return nil, err
	}

	return &collector, nil
}

func (r *collectorRepository) List(ctx context.Context) ([]*domain.Collector, error) {
	query := `SELECT id, name, zone, phone, created_at, updated_at FROM collectors ORDER BY name`

	var collectors []*domain.Collector
	if err := r.db.SelectContext(ctx, &collectors, query); err != nil {
		return nil, err
	}

	return collectors, nil
}

func (r *collectorRepository) Update(ctx context.Context, collector *domain.Collector) error {
	query := `UPDATE collectors SET name = $2, zone = $3, phone = $4, updated_at = $5 WHERE id = $1`

	collector.UpdatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		collector.ID,
		collector.Name,
		collector.Zone,
		collector.Phone,
		collector.UpdatedAt,
	)

	return err
}

func (r *collectorRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM collectors WHERE id = $1`, id)
	return err
}

type cashEntryRepository struct {
	db *sqlx.DB
}

func NewCashEntryRepository(db *sqlx.DB) CashEntryRepository {
	return &cashEntryRepository{db: db}
}

func (r *cashEntryRepository) Create(ctx context.Context, entry *domain.CashEntry) error {
	query := `
		INSERT INTO cash_entries (id, entry_date, concept, kind, amount, loan_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	entry.CreatedAt = time.Now()
	_, err := r.db.ExecContext(ctx, query,
		entry.ID,
		entry.EntryDate,
		entry.Concept,
		entry.Kind,
		entry.Amount,
		entry.LoanID,
		entry.CreatedAt,
	)

	return err
}

func (r *cashEntryRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]*domain.CashEntry, error) {
	query := `
		SELECT id, entry_date, concept, kind, amount, loan_id, created_at
		FROM cash_entries
		WHERE entry_date >= $1 AND entry_date <= $2
		ORDER BY entry_date, created_at
	`

	var entries []*domain.CashEntry
	if err := r.db.SelectContext(ctx, &entries, query, from, to); err != nil {
		return nil, err
	}

	return entries, nil
}

func (r *cashEntryRepository) SumByKind(ctx context.Context, kind string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(amount), 0)
		FROM cash_entries
		WHERE kind = $1 AND entry_date >= $2 AND entry_date <= $3
	`

	var total decimal.Decimal
	if err := r.db.GetContext(ctx, &total, query, kind, from, to); err != nil {
		return decimal.Zero, err
	}

	return total, nil
}
