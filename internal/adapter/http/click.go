package httpadapter

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// handleClickRedirect is the outbound click endpoint the rendered ad links
// to. It bills the click and then redirects to the campaign's target URL. The
// user's navigation always completes when the campaign exists, even when
// billing rejects the click; billing failure is never allowed to break the
// redirect. The cid query parameter is the click's idempotency key; retries
// with the same cid are billed once.
func (h *Handler) handleClickRedirect(w http.ResponseWriter, r *http.Request) {
	campaignID, err := strconv.ParseInt(chi.URLParam(r, "campaignID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid campaign id", http.StatusBadRequest)
		return
	}
	campaign, err := h.campaigns.Get(r.Context(), campaignID)
	if err != nil {
		h.logger.Error("click campaign lookup error", slog.Int64("campaign_id", campaignID), slog.Any("error", err))
		http.NotFound(w, r)
		return
	}
	if campaign == nil || campaign.TargetURL == "" {
		http.NotFound(w, r)
		return
	}

	q := r.URL.Query()
	clickID := q.Get("cid")
	if clickID == "" {
		// No idempotency key from the caller; mint one so the click is still
		// recorded. Retries of such a request cannot be deduplicated.
		clickID = uuid.NewString()
	}
	billed, err := h.billing.RecordClick(r.Context(), port.ClickRequest{
		CampaignID:   campaign.ID,
		AdvertiserID: campaign.AdvertiserID,
		BidRate:      campaign.BidRate,
		ClickID:      clickID,
		Attribution: domain.Attribution{
			Page:      q.Get("page"),
			Placement: q.Get("placement"),
			Device:    q.Get("device"),
			SessionID: q.Get("session"),
		},
	})
	if err != nil {
		h.logger.Error("click billing error",
			slog.Int64("campaign_id", campaign.ID),
			slog.String("click_id", clickID),
			slog.Any("error", err))
	} else if !billed {
		h.logger.Info("click not billed",
			slog.Int64("campaign_id", campaign.ID),
			slog.String("click_id", clickID))
	}
	http.Redirect(w, r, campaign.TargetURL, http.StatusFound)
}
