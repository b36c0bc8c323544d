package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/Rafadaddy/Loanmanagementghr-sub001/internal/domain"
	customError "github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/errors"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/response"
	"github.com/Rafadaddy/Loanmanagementghr-sub001/pkg/utils"
)

// RegistryService is the slice of the service layer the registry handler needs.
type RegistryService interface {
	CreateClient(ctx context.Context, request *domain.UpsertClientRequest) (*domain.Client, error)
	GetClient(ctx context.Context, id uuid.UUID) (*domain.Client, error)
	ListClients(ctx context.Context) ([]*domain.Client, error)
	UpdateClient(ctx context.Context, id uuid.UUID, request *domain.UpsertClientRequest) (*domain.Client, error)
	DeleteClient(ctx context.Context, id uuid.UUID) error

	CreateCollector(ctx context.Context, request *domain.UpsertCollectorRequest) (*domain.Collector, error)
	GetCollector(ctx context.Context, id uuid.UUID) (*domain.Collector, error)
	ListCollectors(ctx context.Context) ([]*domain.Collector, error)
	UpdateCollector(ctx context.Context, id uuid.UUID, request *domain.UpsertCollectorRequest) (*domain.Collector, error)
	DeleteCollector(ctx context.Context, id uuid.UUID) error

	AddCashEntry(ctx context.Context, request *domain.CreateCashEntryRequest) (*domain.CashEntry, error)
	ListCashEntries(ctx context.Context, from, to time.Time) ([]*domain.CashEntry, error)
	GetCashBalance(ctx context.Context, from, to time.Time) (*domain.CashBalanceResponse, error)
}

type RegistryHandler struct {
	service   RegistryService
	validator *validator.Validate
}

func NewRegistryHandler(service RegistryService) *RegistryHandler {
	return &RegistryHandler{
		service:   service,
		validator: newValidator(),
	}
}

// CreateClient handles POST /clients
func (h *RegistryHandler) CreateClient(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertClientRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	client, err := h.service.CreateClient(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, client)
}

// GetClient handles GET /clients/{clientId}
func (h *RegistryHandler) GetClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "clientId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	client, err := h.service.GetClient(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, client)
}

// ListClients handles GET /clients
func (h *RegistryHandler) ListClients(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.ListClients(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, clients)
}

// UpdateClient handles PUT /clients/{clientId}
func (h *RegistryHandler) UpdateClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "clientId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req domain.UpsertClientRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	client, err := h.service.UpdateClient(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, client)
}

// DeleteClient handles DELETE /clients/{clientId}
func (h *RegistryHandler) DeleteClient(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "clientId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteClient(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

// CreateCollector handles POST /collectors
func (h *RegistryHandler) CreateCollector(w http.ResponseWriter, r *http.Request) {
	var req domain.UpsertCollectorRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	collector, err := h.service.CreateCollector(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, collector)
}

// GetCollector handles GET /collectors/{collectorId}
func (h *RegistryHandler) GetCollector(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "collectorId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	collector, err := h.service.GetCollector(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, collector)
}

// ListCollectors handles GET /collectors
func (h *RegistryHandler) ListCollectors(w http.ResponseWriter, r *http.Request) {
	collectors, err := h.service.ListCollectors(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, collectors)
}

// UpdateCollector handles PUT /collectors/{collectorId}
func (h *RegistryHandler) UpdateCollector(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "collectorId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	var req domain.UpsertCollectorRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	collector, err := h.service.UpdateCollector(r.Context(), id, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, collector)
}

// DeleteCollector handles DELETE /collectors/{collectorId}
func (h *RegistryHandler) DeleteCollector(w http.ResponseWriter, r *http.Request) {
	id, err := pathUUID(r, "collectorId")
	if err != nil {
		writeError(w, r, err)
		return
	}

	if err := h.service.DeleteCollector(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}

	response.NoContent(w)
}

// CreateCashEntry handles POST /cash-entries
func (h *RegistryHandler) CreateCashEntry(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCashEntryRequest
	if err := decodeJSON(r, h.validator, &req); err != nil {
		writeError(w, r, err)
		return
	}

	entry, err := h.service.AddCashEntry(r.Context(), &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Created(w, entry.ToResponse())
}

// ListCashEntries handles GET /cash-entries?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *RegistryHandler) ListCashEntries(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	entries, err := h.service.ListCashEntries(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	responses := make([]*domain.CashEntryResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, entry.ToResponse())
	}
	response.Success(w, responses)
}

// GetCashBalance handles GET /cash-entries/balance?from=YYYY-MM-DD&to=YYYY-MM-DD
func (h *RegistryHandler) GetCashBalance(w http.ResponseWriter, r *http.Request) {
	from, to, err := dateRange(r)
	if err != nil {
		writeError(w, r, err)
		return
	}

	balance, err := h.service.GetCashBalance(r.Context(), from, to)
	if err != nil {
		writeError(w, r, err)
		return
	}

	response.Success(w, balance)
}

// dateRange parses the from/to query parameters. Both default to today when
// absent, matching the daily cash-closing workflow.
func dateRange(r *http.Request) (time.Time, time.Time, error) {
	today := utils.Noon(time.Now())
	from, to := today, today

	if raw := r.URL.Query().Get("from"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, customError.NewValidationError("from", "must be a YYYY-MM-DD date")
		}
		from = parsed
	}
	if raw := r.URL.Query().Get("to"); raw != "" {
		parsed, err := utils.ParseDate(raw)
		if err != nil {
			return time.Time{}, time.Time{}, customError.NewValidationError("to", "must be a YYYY-MM-DD date")
		}
		to = parsed
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, customError.NewValidationError("to", "must not be earlier than from")
	}
	return from, to, nil
}
