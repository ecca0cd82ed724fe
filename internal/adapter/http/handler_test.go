package httpadapter

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// engineStub satisfies the ports the handler needs with canned behavior.
type engineStub struct {
	campaign    *domain.Campaign
	billed      bool
	clickReqs   []port.ClickRequest
	credits     []int64
	creditErr   error
	lastAccount int64
}

func (s *engineStub) ResolvePlacement(context.Context, string, []int64, domain.Attribution) ([]domain.Winner, error) {
	return nil, nil
}

func (s *engineStub) RecordClick(_ context.Context, req port.ClickRequest) (bool, error) {
	s.clickReqs = append(s.clickReqs, req)
	return s.billed, nil
}

func (s *engineStub) RecordImpression(context.Context, int64, int64, domain.Attribution) error {
	return nil
}

func (s *engineStub) GetOrCreateWallet(_ context.Context, advertiserID int64) (*domain.Wallet, error) {
	return &domain.Wallet{AdvertiserID: advertiserID}, nil
}

func (s *engineStub) Credit(_ context.Context, advertiserID, amount int64, _, _ string) error {
	s.lastAccount = advertiserID
	s.credits = append(s.credits, amount)
	return s.creditErr
}

func (s *engineStub) Debit(context.Context, int64, int64, string, string) error  { return nil }
func (s *engineStub) Refund(context.Context, int64, int64, string, string) error { return nil }
func (s *engineStub) Adjust(context.Context, int64, int64, string, string) error { return nil }

func (s *engineStub) GetOrCreate(_ context.Context, advertiserID int64) (*domain.Wallet, error) {
	return &domain.Wallet{AdvertiserID: advertiserID}, nil
}
func (s *engineStub) Apply(context.Context, port.WalletChange) error { return nil }
func (s *engineStub) BalancesFor(context.Context, []int64) (map[int64]int64, error) {
	return nil, nil
}
func (s *engineStub) Transactions(context.Context, int64, int) ([]domain.WalletTransaction, error) {
	return nil, nil
}

func (s *engineStub) Get(context.Context, int64) (*domain.Campaign, error) {
	return s.campaign, nil
}
func (s *engineStub) Candidates(context.Context, int64, time.Time, []int64) ([]domain.Campaign, error) {
	return nil, nil
}
func (s *engineStub) AddSpend(context.Context, int64, int64) error { return nil }

func newTestHandler(stub *engineStub) *Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewHandler(stub, stub, stub, stub, stub, logger)
}

func TestClickRedirectAlwaysCompletesNavigation(t *testing.T) {
	stub := &engineStub{
		campaign: &domain.Campaign{ID: 7, AdvertiserID: 3, BidRate: 100, TargetURL: "https://example.com/offer"},
		billed:   false, // billing rejected: the user still gets their redirect
	}
	h := newTestHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/go/7?cid=c1", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "https://example.com/offer", rec.Header().Get("Location"))
	require.Len(t, stub.clickReqs, 1)
	assert.Equal(t, "c1", stub.clickReqs[0].ClickID)
	assert.Equal(t, int64(7), stub.clickReqs[0].CampaignID)
}

func TestClickRedirectMintsClickIDWhenMissing(t *testing.T) {
	stub := &engineStub{
		campaign: &domain.Campaign{ID: 7, TargetURL: "https://example.com/offer"},
		billed:   true,
	}
	h := newTestHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/go/7", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusFound, rec.Code)
	require.Len(t, stub.clickReqs, 1)
	assert.NotEmpty(t, stub.clickReqs[0].ClickID)
}

func TestClickRedirectUnknownCampaign(t *testing.T) {
	h := newTestHandler(&engineStub{})

	req := httptest.NewRequest(http.MethodGet, "/go/99?cid=c1", nil)
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreditValidation(t *testing.T) {
	stub := &engineStub{}
	h := newTestHandler(stub)

	// missing reference must be rejected before reaching the ledger
	req := httptest.NewRequest(http.MethodPost, "/api/v1/wallets/3/credit",
		strings.NewReader(`{"amount_cents": 500}`))
	rec := httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, stub.credits)

	req = httptest.NewRequest(http.MethodPost, "/api/v1/wallets/3/credit",
		strings.NewReader(`{"amount_cents": 500, "reference": "pay-1"}`))
	rec = httptest.NewRecorder()
	h.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, []int64{500}, stub.credits)
	assert.Equal(t, int64(3), stub.lastAccount)
}
