package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/coinlink/exchange/internal/repos/bots"
	"github.com/coinlink/exchange/internal/services/exchange"
)

// NewServer creates and returns a configured *http.Server for the
// exchange API.
func NewServer(port uint16, svc *exchange.Service, botsRepo bots.Bots) *http.Server {
	mux := NewRouter(svc, botsRepo)

	addr := fmt.Sprintf(":%d", port)

	return &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
