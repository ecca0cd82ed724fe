package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora-ads/internal/core/domain"
	"agora-ads/internal/core/port"
)

func TestDecisionLoggerPersistsInBackground(t *testing.T) {
	store := newMemStore()
	dl := NewDecisionLogger(decisionSink{store}, testLogger(), 16)

	for i := 0; i < 5; i++ {
		dl.Log(domain.AllocationDecision{ID: "d", PlacementSlug: "sidebar"})
	}
	require.Eventually(t, func() bool {
		return store.decisionCount() == 5
	}, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, dl.Close(context.Background()))
}

func TestDecisionLoggerNeverBlocksCaller(t *testing.T) {
	// A store that blocks forever must not stall Log.
	blocked := &blockingDecisionStore{release: make(chan struct{})}
	dl := NewDecisionLogger(blocked, testLogger(), 1)
	defer close(blocked.release)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			dl.Log(domain.AllocationDecision{ID: "d"})
		}
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Log blocked on a slow decision store")
	}
}

func TestDecisionLoggerWriteFailureDoesNotPropagate(t *testing.T) {
	store := newMemStore()
	store.insertErr = errors.New("storage down")
	dl := NewDecisionLogger(decisionSink{store}, testLogger(), 4)

	dl.Log(domain.AllocationDecision{ID: "d"})
	// the failure is swallowed; Close still drains cleanly
	require.NoError(t, dl.Close(context.Background()))
	assert.Equal(t, 0, store.decisionCount())
}

func TestDecisionLoggerCloseDrainsQueue(t *testing.T) {
	store := newMemStore()
	dl := NewDecisionLogger(decisionSink{store}, testLogger(), 64)
	for i := 0; i < 20; i++ {
		dl.Log(domain.AllocationDecision{ID: "d"})
	}
	require.NoError(t, dl.Close(context.Background()))
	assert.Equal(t, 20, store.decisionCount())
}

// blockingDecisionStore parks every insert until release is closed.
type blockingDecisionStore struct {
	release chan struct{}
}

func (b *blockingDecisionStore) Insert(ctx context.Context, _ domain.AllocationDecision) error {
	select {
	case <-b.release:
	case <-ctx.Done():
	}
	return nil
}

var _ port.DecisionStore = (*blockingDecisionStore)(nil)
