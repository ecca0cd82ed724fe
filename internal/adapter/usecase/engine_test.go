package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-ads/internal/core/domain"
)

// TestEngineEndToEnd walks the whole flow: fund a wallet, win an auction,
// bill a click, and replay a duplicate delivery of the same click.
func TestEngineEndToEnd(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	ledger := NewLedger(store, testLogger())
	billing := NewBilling(store, store, ledger, testLogger())
	resolver, dl := newTestResolver(store, 16)
	defer dl.Close(ctx)

	require.NoError(t, ledger.Credit(ctx, 1, 500, "initial deposit", "pay-1"))
	store.putPlacement(domain.Placement{ID: 1, Slug: "P", MaxSlots: 1, Active: true})
	store.putCampaign(activeCampaign(42, 1, 1, 100, time.Now().Add(-time.Hour)))

	winners, err := resolver.ResolvePlacement(ctx, "P", nil, domain.Attribution{Page: "/home"})
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, int64(42), winners[0].CampaignID)
	assert.Equal(t, int64(100), winners[0].BidRate)

	// resolution itself charged nothing
	assert.Equal(t, int64(500), store.balance(1))

	billed, err := billing.RecordClick(ctx, clickReq(42, 1, winners[0].BidRate, "c1"))
	require.NoError(t, err)
	assert.True(t, billed)
	assert.Equal(t, int64(400), store.balance(1))

	// network retry of the same click
	billed, err = billing.RecordClick(ctx, clickReq(42, 1, winners[0].BidRate, "c1"))
	require.NoError(t, err)
	assert.True(t, billed)
	assert.Equal(t, int64(400), store.balance(1))
	assert.Len(t, store.clickEvents(42), 1)

	// the ledger tells the same story: one deposit, one spend
	txs := store.walletTxs(1)
	require.Len(t, txs, 2)
	assert.Equal(t, domain.TxDeposit, txs[0].Type)
	assert.Equal(t, domain.TxSpend, txs[1].Type)
	assert.Equal(t, int64(400), txs[1].BalanceAfter)
}
