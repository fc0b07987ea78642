package background

import (
	"context"
	"log"
	"time"

	usecase "github.com/scraplot/auction-service/internal/usecase/auction"
)

type BackgroundTasks struct {
	AuctionUsecase usecase.AuctionUsecase
	Interval       time.Duration
}

func NewBackgroundTasks(auctionUC usecase.AuctionUsecase, interval time.Duration) *BackgroundTasks {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &BackgroundTasks{
		AuctionUsecase: auctionUC,
		Interval:       interval,
	}
}

func (bt *BackgroundTasks) StartAll(ctx context.Context) {
	go bt.startAuctionAutoOpen(ctx)
	go bt.startAuctionAutoClose(ctx)
	go bt.startTokenDeadlineScan(ctx)
}

func (bt *BackgroundTasks) startAuctionAutoOpen(ctx context.Context) {
	ticker := time.NewTicker(bt.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.AuctionUsecase.OpenScheduledAuctions(ctx); err != nil {
				log.Printf("Auto-open error: %v\n", err)
			}
		}
	}
}

func (bt *BackgroundTasks) startAuctionAutoClose(ctx context.Context) {
	ticker := time.NewTicker(bt.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.AuctionUsecase.CloseExpiredAuctions(ctx); err != nil {
				log.Printf("Auto-close error: %v\n", err)
			}
		}
	}
}

func (bt *BackgroundTasks) startTokenDeadlineScan(ctx context.Context) {
	// Overdue flagging is once-only per auction, so a coarser period is
	// enough here.
	ticker := time.NewTicker(bt.Interval * 6)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := bt.AuctionUsecase.CheckTokenDeadlines(ctx); err != nil {
				log.Printf("Token deadline scan error: %v\n", err)
			}
		}
	}
}
