package messaging

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/karthikjanagiraman/WritingCoach-sub001/internal/domain/shared"
)

func syncBus() *InMemoryEventBus {
	cfg := DefaultConfig()
	cfg.AsyncMode = false
	return NewInMemoryEventBus(cfg)
}

func TestPublish_RoutesByType(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	var phaseEvents, badgeEvents int
	require.NoError(t, bus.Subscribe(shared.EventPhaseAdvanced, func(shared.Event) error {
		phaseEvents++
		return nil
	}))
	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error {
		badgeEvents++
		return nil
	}))

	ev := shared.NewPhaseAdvancedEvent("s1", "c1", "narrative-1", "instruction", "guided")
	require.NoError(t, bus.Publish(ev))

	assert.Equal(t, 1, phaseEvents)
	assert.Equal(t, 0, badgeEvents)
}

func TestPublish_HandlerErrorSwallowed(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error {
		return errors.New("boom")
	}))

	var secondRan bool
	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error {
		secondRan = true
		return nil
	}))

	err := bus.Publish(shared.NewBadgeUnlockedEvent("c1", "first-steps"))
	assert.NoError(t, err, "handler failures never reach the publisher")
	assert.True(t, secondRan)
}

func TestPublish_HandlerPanicIsolated(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error {
		panic("bad handler")
	}))
	var ran bool
	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error {
		ran = true
		return nil
	}))

	assert.NoError(t, bus.Publish(shared.NewBadgeUnlockedEvent("c1", "first-steps")))
	assert.True(t, ran)
}

func TestPublish_AsyncDelivery(t *testing.T) {
	bus := NewInMemoryEventBus(DefaultConfig())

	var mu sync.Mutex
	var got int
	done := make(chan struct{})
	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error {
		mu.Lock()
		got++
		mu.Unlock()
		close(done)
		return nil
	}))

	require.NoError(t, bus.Publish(shared.NewBadgeUnlockedEvent("c1", "first-steps")))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("async handler never ran")
	}
	require.NoError(t, bus.Close())

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 1, got)
}

func TestClosedBusRejectsOperations(t *testing.T) {
	bus := syncBus()
	require.NoError(t, bus.Close())

	assert.ErrorIs(t, bus.Publish(shared.NewBadgeUnlockedEvent("c1", "x")), ErrEventBusClosed)
	assert.ErrorIs(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error { return nil }),
		ErrEventBusClosed)

	// Closing twice is fine.
	assert.NoError(t, bus.Close())
}

func TestMetrics_CountsExecutions(t *testing.T) {
	bus := syncBus()
	defer bus.Close()

	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error { return nil }))
	require.NoError(t, bus.Subscribe(shared.EventBadgeUnlocked, func(shared.Event) error {
		return errors.New("fail")
	}))

	require.NoError(t, bus.Publish(shared.NewBadgeUnlockedEvent("c1", "x")))

	snap := bus.Metrics().Snapshot()
	assert.Equal(t, int64(1), snap.TotalPublished)
	assert.Equal(t, int64(2), snap.TotalExecutions)
	assert.InDelta(t, 0.5, snap.SuccessRate, 1e-9)
}
