package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/utils"
)

// Back-office registry rows. These are plain CRUD records with no ledger
// invariants of their own.

type Client struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Name        string     `json:"name" db:"name"`
	DocumentID  string     `json:"document_id" db:"document_id"`
	Phone       string     `json:"phone" db:"phone"`
	Address     string     `json:"address" db:"address"`
	CollectorID *uuid.UUID `json:"collector_id,omitempty" db:"collector_id"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
}

type Collector struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Zone      string    `json:"zone" db:"zone"`
	Phone     string    `json:"phone" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

const (
	CashEntryIncome  = "INGRESO"
	CashEntryExpense = "EGRESO"
)

// CashEntry is one cash register ledger row. The register balance is a
// read-side sum, never stored.
type CashEntry struct {
	ID        uuid.UUID       `json:"id" db:"id"`
	EntryDate time.Time       `json:"entry_date" db:"entry_date"`
	Concept   string          `json:"concept" db:"concept"`
	Kind      string          `json:"kind" db:"kind"`
	Amount    decimal.Decimal `json:"amount" db:"amount"`
	LoanID    *uuid.UUID      `json:"loan_id,omitempty" db:"loan_id"`
	CreatedAt time.Time       `json:"created_at" db:"created_at"`
}

type UpsertClientRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	DocumentID  string `json:"document_id" validate:"required,max=50"`
	Phone       string `json:"phone" validate:"max=30"`
	Address     string `json:"address" validate:"max=300"`
	CollectorID string `json:"collector_id,omitempty" validate:"omitempty,uuid4"`
}

type UpsertCollectorRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Zone  string `json:"zone" validate:"max=100"`
	Phone string `json:"phone" validate:"max=30"`
}

type CreateCashEntryRequest struct {
	EntryDate string          `json:"entry_date" validate:"required"`
	Concept   string          `json:"concept" validate:"required,max=300"`
	Kind      string          `json:"kind" validate:"required,oneof=INGRESO EGRESO"`
	Amount    decimal.Decimal `json:"amount" validate:"required"`
	LoanID    string          `json:"loan_id,omitempty" validate:"omitempty,uuid4"`
}

type CashEntryResponse struct {
	ID        string  `json:"id"`
	EntryDate string  `json:"entry_date"`
	Concept   string  `json:"concept"`
	Kind      string  `json:"kind"`
	Amount    string  `json:"amount"`
	LoanID    *string `json:"loan_id,omitempty"`
}

func (e *CashEntry) ToResponse() *CashEntryResponse {
	resp := &CashEntryResponse{
		ID:        e.ID.String(),
		EntryDate: utils.FormatDate(e.EntryDate),
		Concept:   e.Concept,
		Kind:      e.Kind,
		Amount:    utils.FormatMoney(e.Amount),
	}
	if e.LoanID != nil {
		id := e.LoanID.String()
		resp.LoanID = &id
	}
	return resp
}

// CashBalanceResponse is the register balance over a date range.
type CashBalanceResponse struct {
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Balance string `json:"balance"`
}
