package httpadapter

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"agora-ads/internal/core/port"
)

// creditRequest is the payment webhook's entry point. Reference carries the
// external payment id; the webhook layer de-duplicates on it before calling
// in here.
type creditRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required,gt=0"`
	Description string `json:"description"`
	Reference   string `json:"reference" validate:"required"`
}

// adjustRequest is the admin back office's manual correction. Amount is
// signed; Actor identifies the staff member for the audit trail.
type adjustRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required"`
	Description string `json:"description"`
	Actor       string `json:"actor" validate:"required"`
}

type walletResponse struct {
	AdvertiserID     int64               `json:"advertiser_id"`
	Balance          int64               `json:"balance"`
	LifetimeDeposits int64               `json:"lifetime_deposited"`
	LifetimeSpend    int64               `json:"lifetime_spent"`
	Transactions     []walletTransaction `json:"transactions"`
}

type walletTransaction struct {
	ID           int64     `json:"id"`
	Type         string    `json:"type"`
	Amount       int64     `json:"amount"`
	BalanceAfter int64     `json:"balance_after"`
	Description  string    `json:"description"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"created_at"`
}

func advertiserParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "advertiserID"), 10, 64)
}

// handleWallet returns the wallet and its recent ledger entries for the admin
// back office.
func (h *Handler) handleWallet(w http.ResponseWriter, r *http.Request) {
	advertiserID, err := advertiserParam(r)
	if err != nil {
		http.Error(w, "invalid advertiser id", http.StatusBadRequest)
		return
	}
	wallet, err := h.ledger.GetOrCreateWallet(r.Context(), advertiserID)
	if err != nil {
		h.logger.Error("wallet read error", slog.Int64("advertiser_id", advertiserID), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	txs, err := h.wallets.Transactions(r.Context(), advertiserID, 50)
	if err != nil {
		h.logger.Error("wallet transactions error", slog.Int64("advertiser_id", advertiserID), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	resp := walletResponse{
		AdvertiserID:     wallet.AdvertiserID,
		Balance:          wallet.Balance,
		LifetimeDeposits: wallet.LifetimeDeposits,
		LifetimeSpend:    wallet.LifetimeSpend,
		Transactions:     make([]walletTransaction, 0, len(txs)),
	}
	for _, t := range txs {
		resp.Transactions = append(resp.Transactions, walletTransaction{
			ID:           t.ID,
			Type:         t.Type,
			Amount:       t.Amount,
			BalanceAfter: t.BalanceAfter,
			Description:  t.Description,
			Reference:    t.Reference,
			CreatedAt:    t.CreatedAt,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// handleCredit increases the wallet balance from an external payment.
func (h *Handler) handleCredit(w http.ResponseWriter, r *http.Request) {
	advertiserID, err := advertiserParam(r)
	if err != nil {
		http.Error(w, "invalid advertiser id", http.StatusBadRequest)
		return
	}
	var req creditRequest
	if err = h.decodeValid(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	err = h.ledger.Credit(r.Context(), advertiserID, req.AmountCents, req.Description, req.Reference)
	if err != nil {
		if errors.Is(err, port.ErrInvalidAmount) {
			http.Error(w, "invalid amount", http.StatusUnprocessableEntity)
			return
		}
		h.logger.Error("credit error", slog.Int64("advertiser_id", advertiserID), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleAdjust applies a signed administrative correction.
func (h *Handler) handleAdjust(w http.ResponseWriter, r *http.Request) {
	advertiserID, err := advertiserParam(r)
	if err != nil {
		http.Error(w, "invalid advertiser id", http.StatusBadRequest)
		return
	}
	var req adjustRequest
	if err = h.decodeValid(r, &req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	err = h.ledger.Adjust(r.Context(), advertiserID, req.AmountCents, req.Description, req.Actor)
	if err != nil {
		if errors.Is(err, port.ErrInvalidAmount) {
			http.Error(w, "adjustment would overdraw wallet", http.StatusUnprocessableEntity)
			return
		}
		if errors.Is(err, port.ErrConcurrencyConflict) {
			http.Error(w, "conflicting wallet update, retry", http.StatusConflict)
			return
		}
		h.logger.Error("adjust error", slog.Int64("advertiser_id", advertiserID), slog.Any("error", err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
