package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/repository"
	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/utils"
)

// RegistryService is the thin CRUD layer over the back-office registries:
// clients, collectors and the cash register. No ledger invariants live here.
type RegistryService struct {
	ClientRepo    repository.ClientRepository
	CollectorRepo repository.CollectorRepository
	CashRepo      repository.CashEntryRepository
}

func NewRegistryService(
	clientRepo repository.ClientRepository,
	collectorRepo repository.CollectorRepository,
	cashRepo repository.CashEntryRepository,
) *RegistryService {
	return &RegistryService{
		ClientRepo:    clientRepo,
		CollectorRepo: collectorRepo,
		CashRepo:      cashRepo,
	}
}

func (s *RegistryService) CreateClient(ctx context.Context, request *domain.UpsertClientRequest) (*domain.Client, error) {
	collectorID, err := parseOptionalUUID(request.CollectorID, "collector_id")
	if err != nil {
		return nil, err
	}

	client := &domain.Client{
		ID:          uuid.New(),
		Name:        request.Name,
		DocumentID:  request.DocumentID,
		Phone:       request.Phone,
		Address:     request.Address,
		CollectorID: collectorID,
	}

	if err := s.ClientRepo.Create(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return client, nil
}

func (s *RegistryService) GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.ClientRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNotFound("client", id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return client, nil
}

func (s *RegistryService) ListClients(ctx context.Context) ([]*domain.Client, error) {
	clients, err := s.ClientRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return clients, nil
}

func (s *RegistryService) UpdateClient(ctx context.Context, id uuid.UUID, request *domain.UpsertClientRequest) (*domain.Client, error) {
	client, err := s.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	collectorID, err := parseOptionalUUID(request.CollectorID, "collector_id")
	if err != nil {
		return nil, err
	}

	client.Name = request.Name
	client.DocumentID = request.DocumentID
	client.Phone = request.Phone
	client.Address = request.Address
	client.CollectorID = collectorID

	if err := s.ClientRepo.Update(ctx, client); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return client, nil
}

func (s *RegistryService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetClient(ctx, id); err != nil {
		return err
	}
	if err := s.ClientRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

func (s *RegistryService) CreateCollector(ctx context.Context, request *domain.UpsertCollectorRequest) (*domain.Collector, error) {
	collector := &domain.Collector{
		ID:    uuid.New(),
		Name:  request.Name,
		Zone:  request.Zone,
		Phone: request.Phone,
	}

	if err := s.CollectorRepo.Create(ctx, collector); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return collector, nil
}

func (s *RegistryService) GetCollector(ctx context.Context, id uuid.UUID) (*domain.Collector, error) {
	collector, err := s.CollectorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, customError.WrapNotFound("collector", id.String())
		}
		return nil, customError.WrapDatabaseError(err)
	}
	return collector, nil
}

func (s *RegistryService) ListCollectors(ctx context.Context) ([]*domain.Collector, error) {
	collectors, err := s.CollectorRepo.List(ctx)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return collectors, nil
}

func (s *RegistryService) UpdateCollector(ctx context.Context, id uuid.UUID, request *domain.UpsertCollectorRequest) (*domain.Collector, error) {
	collector, err := s.GetCollector(ctx, id)
	if err != nil {
		return nil, err
	}

	collector.Name = request.Name
	collector.Zone = request.Zone
	collector.Phone = request.Phone

	if err := s.CollectorRepo.Update(ctx, collector); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return collector, nil
}

func (s *RegistryService) DeleteCollector(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetCollector(ctx, id); err != nil {
		return err
	}
	if err := s.CollectorRepo.Delete(ctx, id); err != nil {
		return customError.WrapDatabaseError(err)
	}
	return nil
}

func (s *RegistryService) AddCashEntry(ctx context.Context, request *domain.CreateCashEntryRequest) (*domain.CashEntry, error) {
	entryDate, err := utils.ParseDate(request.EntryDate)
	if err != nil {
		return nil, customError.NewValidationError("entry_date", "must be a YYYY-MM-DD date")
	}
	if !request.Amount.IsPositive() {
		return nil, customError.NewValidationError("amount", "must be greater than zero")
	}

	loanID, err := parseOptionalUUID(request.LoanID, "loan_id")
	if err != nil {
		return nil, err
	}

	entry := &domain.CashEntry{
		ID:        uuid.New(),
		EntryDate: entryDate,
		Concept:   request.Concept,
		Kind:      request.Kind,
		Amount:    request.Amount,
		LoanID:    loanID,
	}

	if err := s.CashRepo.Create(ctx, entry); err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return entry, nil
}

func (s *RegistryService) ListCashEntries(ctx context.Context, from, to time.Time) ([]*domain.CashEntry, error) {
	entries, err := s.CashRepo.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}
	return entries, nil
}

// GetCashBalance sums income and expense over a date range. The balance is
// always computed, never stored.
func (s *RegistryService) GetCashBalance(ctx context.Context, from, to time.Time) (*domain.CashBalanceResponse, error) {
	income, err := s.CashRepo.SumByKind(ctx, domain.CashEntryIncome, from, to)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	expense, err := s.CashRepo.SumByKind(ctx, domain.CashEntryExpense, from, to)
	if err != nil {
		return nil, customError.WrapDatabaseError(err)
	}

	return &domain.CashBalanceResponse{
		Income:  utils.FormatMoney(income),
		Expense: utils.FormatMoney(expense),
		Balance: utils.FormatMoney(income.Sub(expense)),
	}, nil
}

func parseOptionalUUID(s, field string) (*uuid.UUID, error) {
	if s == "" {
		return nil, nil
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return nil, customError.NewValidationError(field, "must be a valid UUID")
	}
	return &id, nil
}
