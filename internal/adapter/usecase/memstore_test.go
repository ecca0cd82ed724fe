package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

// memStore is an in-memory implementation of all store ports, guarded by one
// mutex. It reproduces the two storage behaviors the engine's correctness
// depends on: the conditional wallet update and the click-id uniqueness
// constraint, so the concurrency tests exercise the real failure paths.
type memStore struct {
	mu         sync.Mutex
	wallets    map[int64]*domain.Wallet
	txs        []domain.WalletTransaction
	campaigns  map[int64]*domain.Campaign
	placements map[string]*domain.Placement
	events     []domain.CampaignEvent
	clickIDs   map[string]struct{}
	decisions  []domain.AllocationDecision
	nextTxID   int64
	nextEvID   int64

	// beforeApply, when set, runs inside Apply before the balance check. Used
	// to force an interleaving between a ledger read and its write.
	beforeApply func(s *memStore)
	// insertErr, when set, fails decision inserts.
	insertErr error
}

func newMemStore() *memStore {
	return &memStore{
		wallets:    make(map[int64]*domain.Wallet),
		campaigns:  make(map[int64]*domain.Campaign),
		placements: make(map[string]*domain.Placement),
		clickIDs:   make(map[string]struct{}),
	}
}

// --- port.WalletStore ---

func (s *memStore) GetOrCreate(_ context.Context, advertiserID int64) (*domain.Wallet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.wallets[advertiserID]
	if !ok {
		w = &domain.Wallet{AdvertiserID: advertiserID, CreatedAt: time.Now()}
		s.wallets[advertiserID] = w
	}
	cp := *w
	return &cp, nil
}

func (s *memStore) Apply(_ context.Context, change port.WalletChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.beforeApply != nil {
		hook := s.beforeApply
		s.beforeApply = nil
		hook(s)
	}
	w, ok := s.wallets[change.AdvertiserID]
	if !ok {
		return port.ErrWalletNotFound
	}
	if w.Balance != change.ExpectedBalance {
		return port.ErrConcurrencyConflict
	}
	w.Balance = change.NewBalance
	w.LifetimeDeposits += change.DepositsDelta
	w.LifetimeSpend += change.SpendDelta
	if w.LifetimeSpend < 0 {
		w.LifetimeSpend = 0
	}
	s.nextTxID++
	s.txs = append(s.txs, domain.WalletTransaction{
		ID:           s.nextTxID,
		AdvertiserID: change.AdvertiserID,
		Type:         change.TxType,
		Amount:       change.Amount,
		BalanceAfter: change.NewBalance,
		Description:  change.Description,
		Reference:    change.Reference,
		CreatedAt:    time.Now(),
	})
	return nil
}

func (s *memStore) BalancesFor(_ context.Context, advertiserIDs []int64) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	balances := make(map[int64]int64, len(advertiserIDs))
	for _, id := range advertiserIDs {
		if w, ok := s.wallets[id]; ok {
			balances[id] = w.Balance
		}
	}
	return balances, nil
}

func (s *memStore) Transactions(_ context.Context, advertiserID int64, limit int) ([]domain.WalletTransaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.WalletTransaction, 0, limit)
	for i := len(s.txs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.txs[i].AdvertiserID == advertiserID {
			out = append(out, s.txs[i])
		}
	}
	return out, nil
}

// walletTxs returns the advertiser's transactions in creation order.
func (s *memStore) walletTxs(advertiserID int64) []domain.WalletTransaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.WalletTransaction
	for _, t := range s.txs {
		if t.AdvertiserID == advertiserID {
			out = append(out, t)
		}
	}
	return out
}

func (s *memStore) balance(advertiserID int64) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.wallets[advertiserID]; ok {
		return w.Balance
	}
	return 0
}

// --- port.CampaignStore ---

func (s *memStore) Get(_ context.Context, id int64) (*domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[id]
	if !ok {
		return nil, nil
	}
	cp := *c
	return &cp, nil
}

func (s *memStore) Candidates(_ context.Context, placementID int64, today time.Time, allowList []int64) ([]domain.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	allowed := make(map[int64]struct{}, len(allowList))
	for _, id := range allowList {
		allowed[id] = struct{}{}
	}
	var out []domain.Campaign
	for _, c := range s.campaigns {
		if c.PlacementID != placementID || c.Status != domain.CampaignActive || c.StartDate.After(today) {
			continue
		}
		if len(allowList) > 0 {
			if _, ok := allowed[c.AdvertiserID]; !ok {
				continue
			}
		}
		out = append(out, *c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].BidRate != out[j].BidRate {
			return out[i].BidRate > out[j].BidRate
		}
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (s *memStore) AddSpend(_ context.Context, campaignID int64, amount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.campaigns[campaignID]
	if !ok {
		return nil
	}
	c.Spend += amount
	if c.TotalBudget > 0 && c.Spend >= c.TotalBudget {
		c.Status = domain.CampaignBudgetExhausted
	}
	return nil
}

// --- port.PlacementStore ---

func (s *memStore) GetBySlug(_ context.Context, slug string) (*domain.Placement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.placements[slug]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

// --- port.EventStore ---

func (s *memStore) Insert(_ context.Context, ev domain.CampaignEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ev.Type == domain.EventClick && ev.ClickID != "" {
		if _, dup := s.clickIDs[ev.ClickID]; dup {
			return port.ErrDuplicateClick
		}
		s.clickIDs[ev.ClickID] = struct{}{}
	}
	s.nextEvID++
	ev.ID = s.nextEvID
	if ev.CreatedAt.IsZero() {
		ev.CreatedAt = time.Now()
	}
	s.events = append(s.events, ev)
	return nil
}

func (s *memStore) ClickExists(_ context.Context, clickID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.clickIDs[clickID]
	return ok, nil
}

func (s *memStore) DailyCost(_ context.Context, campaignIDs []int64, day time.Time) (map[int64]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[int64]struct{}, len(campaignIDs))
	for _, id := range campaignIDs {
		wanted[id] = struct{}{}
	}
	end := day.Add(24 * time.Hour)
	costs := make(map[int64]int64)
	for _, ev := range s.events {
		if _, ok := wanted[ev.CampaignID]; !ok {
			continue
		}
		if ev.CreatedAt.Before(day) || !ev.CreatedAt.Before(end) {
			continue
		}
		costs[ev.CampaignID] += ev.Cost
	}
	return costs, nil
}

func (s *memStore) clickEvents(campaignID int64) []domain.CampaignEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.CampaignEvent
	for _, ev := range s.events {
		if ev.CampaignID == campaignID && ev.Type == domain.EventClick {
			out = append(out, ev)
		}
	}
	return out
}

// --- port.DecisionStore ---

func (s *memStore) InsertDecision(_ context.Context, d domain.AllocationDecision) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.insertErr != nil {
		return s.insertErr
	}
	s.decisions = append(s.decisions, d)
	return nil
}

func (s *memStore) decisionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.decisions)
}

func (s *memStore) lastDecision() (domain.AllocationDecision, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.decisions) == 0 {
		return domain.AllocationDecision{}, false
	}
	return s.decisions[len(s.decisions)-1], true
}

// --- test seeding helpers ---

func (s *memStore) putWallet(advertiserID, balance int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.wallets[advertiserID] = &domain.Wallet{
		AdvertiserID:     advertiserID,
		Balance:          balance,
		LifetimeDeposits: balance,
		CreatedAt:        time.Now(),
	}
}

func (s *memStore) putCampaign(c domain.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := c
	s.campaigns[c.ID] = &cp
}

func (s *memStore) putPlacement(p domain.Placement) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := p
	s.placements[p.Slug] = &cp
}

func (s *memStore) campaignStatus(id int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c, ok := s.campaigns[id]; ok {
		return c.Status
	}
	return ""
}

// decisionSink adapts memStore to port.DecisionStore.
type decisionSink struct{ s *memStore }

func (d decisionSink) Insert(ctx context.Context, dec domain.AllocationDecision) error {
	return d.s.InsertDecision(ctx, dec)
}

var (
	_ port.WalletStore    = (*memStore)(nil)
	_ port.CampaignStore  = (*memStore)(nil)
	_ port.PlacementStore = (*memStore)(nil)
	_ port.EventStore     = (*memStore)(nil)
	_ port.DecisionStore  = decisionSink{}
)
