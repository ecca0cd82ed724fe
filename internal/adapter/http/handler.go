package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"agora-ads/internal/core/port"
)

// Handler is the inbound HTTP adapter. It exposes the resolver to the page
// layer, the click-redirect endpoint to end users, and the wallet operations
// to the payment webhook and the admin back office. Request bodies are
// validated with go-playground/validator before reaching the usecases.
type Handler struct {
	resolver  port.Resolver
	billing   port.Billing
	ledger    port.Ledger
	wallets   port.WalletStore
	campaigns port.CampaignStore
	logger    *slog.Logger
	validate  *validator.Validate
	router    chi.Router
}

// NewHandler creates a handler with all routes configured.
func NewHandler(resolver port.Resolver, billing port.Billing, ledger port.Ledger, wallets port.WalletStore, campaigns port.CampaignStore, logger *slog.Logger) *Handler {
	h := &Handler{
		resolver:  resolver,
		billing:   billing,
		ledger:    ledger,
		wallets:   wallets,
		campaigns: campaigns,
		logger:    logger,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
	}
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/placements/{slug}/resolve", h.handleResolve)
		r.Post("/events/impression", h.handleImpression)
		r.Route("/wallets/{advertiserID}", func(r chi.Router) {
			r.Get("/", h.handleWallet)
			r.Post("/credit", h.handleCredit)
			r.Post("/adjust", h.handleAdjust)
		})
	})
	r.Get("/go/{campaignID}", h.handleClickRedirect)
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	h.router = r
	return h
}

// Router returns the underlying http.Handler.
func (h *Handler) Router() http.Handler {
	return h.router
}

// writeJSON encodes v as the response body. Encoding failures are logged, not
// surfaced; headers are already sent by then.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("encode response error", slog.Any("error", err))
	}
}

// decodeValid decodes the request body into v and runs struct validation.
func (h *Handler) decodeValid(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return h.validate.Struct(v)
}
