package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/coinlink/exchange/internal/repos/transactions"
	"github.com/coinlink/exchange/internal/services/exchange"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// HandlerProvider wraps the exchange service and exposes HTTP handlers.
type HandlerProvider struct {
	svc *exchange.Service
}

// NewHandler returns a new Handler provider.
func NewHandler(svc *exchange.Service) *HandlerProvider {
	return &HandlerProvider{svc: svc}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		slog.Error("failed to encode JSON response", "error", err)

		http.Error(w, `{"error":"internal json encode failure"}`, http.StatusInternalServerError)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps the domain error taxonomy onto HTTP statuses.
// Storage failures stay opaque.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, exchange.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, exchange.ErrUnknownCurrency):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, exchange.ErrSelfConversion),
		errors.Is(err, exchange.ErrInvalidAmount),
		errors.Is(err, exchange.ErrAmountTooLarge),
		errors.Is(err, exchange.ErrInvalidUser),
		errors.Is(err, exchange.ErrEmptyBatch):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, exchange.ErrCurrencyDisabled),
		errors.Is(err, exchange.ErrReserveExhausted),
		errors.Is(err, exchange.ErrNotRecipient):
		writeError(w, http.StatusForbidden, err.Error())
	case errors.Is(err, transactions.ErrTransactionNotFound):
		writeError(w, http.StatusNotFound, "transaction not found")
	default:
		slog.Error("request failed", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20) // 1MB cap
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(dst)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty body")
		}

		return fmt.Errorf("invalid JSON body")
	}

	return nil
}

func parseTransactionIDFromPath(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid transaction id: %w", err)
	}

	return id, nil
}

type txRequest struct {
	Amount decimal.Decimal `json:"amount"`
	To     string          `json:"to"`
	User   string          `json:"user"`
}

type bulkTxRequest struct {
	Bulk []txRequest `json:"bulk"`
}

type txUpdateRequest struct {
	Handled *bool `json:"handled"`
}

type txResponse struct {
	ID        string          `json:"id"`
	From      string          `json:"from"`
	To        string          `json:"to"`
	Amount    decimal.Decimal `json:"amount"`
	Payout    decimal.Decimal `json:"payout"`
	User      string          `json:"user"`
	Handled   bool            `json:"handled"`
	Timestamp time.Time       `json:"timestamp"`
}

func toResponse(t *transactions.Transaction) txResponse {
	return txResponse{
		ID:        t.ID.String(),
		From:      t.FromCode,
		To:        t.ToCode,
		Amount:    t.Amount,
		Payout:    t.Payout,
		User:      t.User,
		Handled:   t.Handled,
		Timestamp: t.Timestamp,
	}
}

func toCreateRequest(req txRequest) exchange.CreateRequest {
	return exchange.CreateRequest{
		Amount: req.Amount,
		To:     req.To,
		User:   req.User,
	}
}

// --- Handlers ---

// CreateTransactionHandler handles POST /transactions
func (h *HandlerProvider) CreateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	var req txRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	tx, err := h.svc.Create(r.Context(), botFrom(r.Context()), toCreateRequest(req))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toResponse(tx))
}

// CreateBulkHandler handles POST /transactions/bulk
func (h *HandlerProvider) CreateBulkHandler(w http.ResponseWriter, r *http.Request) {
	var req bulkTxRequest

	err := decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	reqs := make([]exchange.CreateRequest, 0, len(req.Bulk))
	for _, element := range req.Bulk {
		reqs = append(reqs, toCreateRequest(element))
	}

	txs, err := h.svc.CreateBatch(r.Context(), botFrom(r.Context()), reqs)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	out := make([]txResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toResponse(tx))
	}

	writeJSON(w, http.StatusCreated, out)
}

// UpdateTransactionHandler handles PATCH /transactions/{id}.
// Only {"handled": true} is accepted: amount, payout and the currency
// references are immutable once the transaction exists.
func (h *HandlerProvider) UpdateTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id in path")
		return
	}

	var req txUpdateRequest

	err = decodeBody(w, r, &req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if req.Handled == nil {
		writeError(w, http.StatusBadRequest, "only the handled field may be updated")
		return
	}

	if !*req.Handled {
		writeError(w, http.StatusBadRequest, "a handled transaction cannot be reverted")
		return
	}

	tx, err := h.svc.MarkHandled(r.Context(), botFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}

// GetTransactionHandler handles GET /transactions/{id}
func (h *HandlerProvider) GetTransactionHandler(w http.ResponseWriter, r *http.Request) {
	id, err := parseTransactionIDFromPath(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid transaction id in path")
		return
	}

	tx, err := h.svc.Get(r.Context(), botFrom(r.Context()), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toResponse(tx))
}
