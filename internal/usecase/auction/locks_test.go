package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scraplot/auction-service/internal/domain"
)

func TestLockArenaTimesOutUnderContention(t *testing.T) {
	arena := newLockArena()

	release, err := arena.acquire(context.Background(), "auction-1", 50*time.Millisecond)
	require.NoError(t, err)
	defer release()

	_, err = arena.acquire(context.Background(), "auction-1", 50*time.Millisecond)
	var contentionErr *domain.ContentionTimeoutError
	require.ErrorAs(t, err, &contentionErr)
	assert.Equal(t, "auction-1", contentionErr.AuctionID)
	assert.True(t, domain.IsRetryable(err))
}

func TestLockArenaIsPerAuction(t *testing.T) {
	arena := newLockArena()

	releaseA, err := arena.acquire(context.Background(), "auction-a", 50*time.Millisecond)
	require.NoError(t, err)
	defer releaseA()

	// A different auction is a different critical section.
	releaseB, err := arena.acquire(context.Background(), "auction-b", 50*time.Millisecond)
	require.NoError(t, err)
	releaseB()
}

func TestLockArenaReleaseUnblocksWaiter(t *testing.T) {
	arena := newLockArena()

	release, err := arena.acquire(context.Background(), "auction-1", 50*time.Millisecond)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := arena.acquire(context.Background(), "auction-1", time.Second)
		if err == nil {
			r()
			close(acquired)
		}
	}()

	release()
	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
}

func TestConfiguredLockTimeoutBoundsAdmission(t *testing.T) {
	f := newFixtureTimings(Timings{LockTimeout: 20 * time.Millisecond})
	f.activeAuction(1000)

	release, err := f.uc.locks.acquire(context.Background(), "auction-1", time.Second)
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = f.uc.PlaceBid(context.Background(), "auction-1", "buyer-1", decimal.NewFromInt(1100))
	var contentionErr *domain.ContentionTimeoutError
	require.ErrorAs(t, err, &contentionErr)
	// The wait is bounded by the configured timeout, not the default.
	assert.Less(t, time.Since(start), time.Second)
}

func TestLockArenaHonorsContextCancellation(t *testing.T) {
	arena := newLockArena()

	release, err := arena.acquire(context.Background(), "auction-1", time.Minute)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = arena.acquire(ctx, "auction-1", time.Minute)
	var contentionErr *domain.ContentionTimeoutError
	require.ErrorAs(t, err, &contentionErr)
}
