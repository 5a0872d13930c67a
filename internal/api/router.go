package api

import (
	"net/http"

	"github.com/coinlink/exchange/internal/repos/bots"
	"github.com/coinlink/exchange/internal/services/exchange"
	"github.com/go-chi/chi/v5"
)

// NewRouter constructs the API router with all endpoints registered.
func NewRouter(svc *exchange.Service, botsRepo bots.Bots) http.Handler {
	h := NewHandler(svc)
	r := chi.NewRouter()

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Group(func(r chi.Router) {
		r.Use(RequireBot(botsRepo))

		r.Post("/transactions", h.CreateTransactionHandler)
		r.Post("/transactions/bulk", h.CreateBulkHandler)
		r.Get("/transactions/{id}", h.GetTransactionHandler)
		r.Patch("/transactions/{id}", h.UpdateTransactionHandler)
	})

	return r
}
