package usecase

import (
	"context"
	"fmt"
	"log/slog"
)

// OpenScheduledAuctions activates every scheduled auction whose publish
// date has been reached. Driven by the background clock.
func (uc *DefaultAuctionUsecase) OpenScheduledAuctions(ctx context.Context) error {
	due, err := uc.AuctionRepo.FindDuePublishAuctions(uc.now())
	if err != nil {
		return fmt.Errorf("find due publish auctions: %w", err)
	}
	for _, auction := range due {
		if err := uc.PublishAuction(auction.ID); err != nil {
			slog.Error("failed to auto-open auction", "auction_id", auction.ID, "error", err.Error())
		}
	}
	return nil
}

// CloseExpiredAuctions ends every active auction past its end time. The
// close takes the same per-auction lock as bid admission, so an expiring
// auction either accepts a last bid before closing or rejects it after,
// never both. A re-fired close is a no-op.
func (uc *DefaultAuctionUsecase) CloseExpiredAuctions(ctx context.Context) error {
	expired, err := uc.AuctionRepo.FindExpiredActiveAuctions(uc.now())
	if err != nil {
		return fmt.Errorf("find expired auctions: %w", err)
	}
	for _, auction := range expired {
		if err := uc.closeAuction(auction.ID, "clock"); err != nil {
			slog.Error("failed to auto-close auction", "auction_id", auction.ID, "error", err.Error())
		}
	}
	return nil
}
