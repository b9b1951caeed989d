package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront/internal/adapter/repository"
	"storefront/internal/domain/service"
	"storefront/pkg/errors"
)

func newRegistry(t *testing.T) (*SessionRegistry, *repository.MemoryCartSnapshotRepository, *recordingNotifier) {
	t.Helper()
	snapshots := repository.NewMemoryCartSnapshotRepository()
	notifier := &recordingNotifier{}
	registry := NewSessionRegistry(SessionDeps{
		Products:    newFakeProductRepo(catalogFixture()...),
		Snapshots:   snapshots,
		Readiness:   AlwaysReady(),
		Notifier:    notifier,
		Prober:      fakeProber{},
		ReadyWithin: time.Second,
	})
	return registry, snapshots, notifier
}

func TestAcquireIssuesFreshIDs(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	s, created := registry.Acquire(ctx, "")
	assert.True(t, created)
	_, err := uuid.Parse(s.ID)
	assert.NoError(t, err)

	again, created := registry.Acquire(ctx, s.ID)
	assert.False(t, created)
	assert.Same(t, s, again)

	forged, created := registry.Acquire(ctx, "../../etc/passwd")
	assert.True(t, created)
	assert.NotEqual(t, "../../etc/passwd", forged.ID)
	assert.Equal(t, 2, registry.Len())
}

func TestSessionPersistsAndNotifiesCartChanges(t *testing.T) {
	registry, snapshots, notifier := newRegistry(t)
	ctx := context.Background()

	s, _ := registry.Acquire(ctx, "")
	_, err := s.Ledger.AddOrIncrement(catalogFixture()[0], "M", "Preto", 2)
	require.NoError(t, err)

	raw, found, err := snapshots.Get(ctx, CartSlotKey(s.ID))
	require.NoError(t, err)
	require.True(t, found)
	assert.Contains(t, string(raw), `"productId":"p1"`)

	events := notifier.sessionEvents()
	require.Len(t, events, 1)
	assert.Equal(t, service.ViewEvent{Type: service.EventCartChanged, ItemCount: 2}, events[0])

	// An evicted session comes back with its cart.
	assert.Equal(t, 1, registry.Sweep(0))
	_, ok := registry.Lookup(s.ID)
	assert.False(t, ok)

	back, created := registry.Acquire(ctx, s.ID)
	assert.True(t, created)
	assert.Equal(t, 2, back.Ledger.ItemCount())
}

func TestSessionsAreIsolated(t *testing.T) {
	registry, _, _ := newRegistry(t)
	ctx := context.Background()

	a, _ := registry.Acquire(ctx, "")
	b, _ := registry.Acquire(ctx, "")

	_, err := a.Ledger.AddOrIncrement(catalogFixture()[1], "P", "Branco", 1)
	require.NoError(t, err)
	a.View.SetFilter("camisetas")

	assert.Zero(t, b.Ledger.ItemCount())
	assert.Empty(t, b.View.Snapshot().Filter)
}

func TestSweepKeepsActiveSessions(t *testing.T) {
	registry, _, _ := newRegistry(t)
	registry.Acquire(context.Background(), "")

	assert.Zero(t, registry.Sweep(time.Hour))
	assert.Equal(t, 1, registry.Len())
}

func TestReadinessIsSticky(t *testing.T) {
	var calls atomic.Int32
	readiness := NewReadiness(func(ctx context.Context) error {
		calls.Add(1)
		return assert.AnError
	}, time.Second)

	ctx := context.Background()
	err := readiness.Wait(ctx)
	assert.True(t, errors.Is(err, errors.CodeTransientIO))
	assert.ErrorIs(t, err, assert.AnError)

	readiness.Start(ctx)
	assert.Error(t, readiness.Wait(ctx))
	assert.Equal(t, int32(1), calls.Load())
	assert.True(t, readiness.Resolved())
}

func TestReadinessHonoursDeadline(t *testing.T) {
	readiness := NewReadiness(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, 10*time.Millisecond)

	start := time.Now()
	err := readiness.Wait(context.Background())
	assert.Error(t, err)
	assert.Less(t, time.Since(start), time.Second)
	assert.NoError(t, AlwaysReady().Wait(context.Background()))
}
