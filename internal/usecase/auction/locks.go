package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/scraplot/auction-service/internal/domain"
)

// lockArena serializes mutations per auction id. Each auction's state is a
// single critical section; different auctions proceed fully in parallel.
// Acquisition is bounded: a caller that cannot take the lock in time gets
// a ContentionTimeoutError with nothing applied.
type lockArena struct {
	mu    sync.Mutex
	locks map[string]chan struct{}
}

func newLockArena() *lockArena {
	return &lockArena{locks: make(map[string]chan struct{})}
}

func (a *lockArena) lock(auctionID string) chan struct{} {
	a.mu.Lock()
	defer a.mu.Unlock()
	l, ok := a.locks[auctionID]
	if !ok {
		l = make(chan struct{}, 1)
		a.locks[auctionID] = l
	}
	return l
}

// acquire takes the per-auction lock, waiting at most timeout. The returned
// release func must be called exactly once.
func (a *lockArena) acquire(ctx context.Context, auctionID string, timeout time.Duration) (func(), error) {
	l := a.lock(auctionID)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case l <- struct{}{}:
		return func() { <-l }, nil
	case <-timer.C:
		return nil, &domain.ContentionTimeoutError{AuctionID: auctionID}
	case <-ctx.Done():
		return nil, &domain.ContentionTimeoutError{AuctionID: auctionID}
	}
}
