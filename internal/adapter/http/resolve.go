package httpadapter

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"agora-ads/internal/core/domain"
)

// resolveRequest is the page layer's input for one placement resolution. The
// allow-list is optional; all other fields are attribution context carried
// into the decision log.
type resolveRequest struct {
	AdvertiserAllowList []int64 `json:"advertiser_allow_list"`
	Page                string  `json:"page"`
	Device              string  `json:"device"`
	SessionID           string  `json:"session_id"`
}

type resolveResponse struct {
	Winners []domain.Winner `json:"winners"`
}

// handleResolve runs the auction for the placement in the path. An unknown or
// inactive placement still returns 200 with zero winners; the page layer
// falls back to organic content.
func (h *Handler) handleResolve(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	var req resolveRequest
	if r.ContentLength > 0 {
		if err := h.decodeValid(r, &req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}
	winners, err := h.resolver.ResolvePlacement(r.Context(), slug, req.AdvertiserAllowList, domain.Attribution{
		Page:      req.Page,
		Placement: slug,
		Device:    req.Device,
		SessionID: req.SessionID,
	})
	if err != nil {
		h.logger.Error("resolve error", slog.String("placement", slug), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if winners == nil {
		winners = []domain.Winner{}
	}
	h.writeJSON(w, http.StatusOK, resolveResponse{Winners: winners})
}

// impressionRequest records that a winning campaign was actually rendered.
type impressionRequest struct {
	CampaignID   int64  `json:"campaign_id" validate:"required,gt=0"`
	AdvertiserID int64  `json:"advertiser_id" validate:"required,gt=0"`
	Page         string `json:"page"`
	Placement    string `json:"placement"`
	Device       string `json:"device"`
	SessionID    string `json:"session_id"`
}

// handleImpression stores a zero-cost impression event. Fire-and-forget from
// the caller's perspective: failures are logged and the response is 202
// either way.
func (h *Handler) handleImpression(w http.ResponseWriter, r *http.Request) {
	var req impressionRequest
	if err := h.decodeValid(r, &req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	err := h.billing.RecordImpression(r.Context(), req.CampaignID, req.AdvertiserID, domain.Attribution{
		Page:      req.Page,
		Placement: req.Placement,
		Device:    req.Device,
		SessionID: req.SessionID,
	})
	if err != nil {
		h.logger.Error("impression error", slog.Int64("campaign_id", req.CampaignID), slog.Any("error", err))
	}
	w.WriteHeader(http.StatusAccepted)
}
