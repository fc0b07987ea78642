package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
	"github.com/scraplot/auction-service/internal/usecase/ranking"
)

// CloseAuction is the explicit admin close. The clock-driven close goes
// through CloseExpiredAuctions; both take the same per-auction lock, so a
// bid arriving at the expiry instant is deterministically either accepted
// before the close or rejected after it.
func (uc *DefaultAuctionUsecase) CloseAuction(auctionID string) error {
	return uc.closeAuction(auctionID, "admin")
}

func (uc *DefaultAuctionUsecase) closeAuction(auctionID, trigger string) error {
	release, err := uc.locks.acquire(context.Background(), auctionID, uc.lockTimeout)
	if err != nil {
		return err
	}
	result, err := uc.closeLocked(auctionID)
	release()
	if err != nil {
		return err
	}
	if result == nil {
		// Already ended: a retried close is a no-op.
		return nil
	}

	if uc.Metrics != nil {
		uc.Metrics.AuctionsClosedTotal.WithLabelValues(trigger).Inc()
	}
	uc.publishEvent(result.event)
	if result.winnerID != "" {
		uc.notify(result.winnerID, "won", map[string]any{
			"auction_id": auctionID,
			"amount":     result.winningAmount.String(),
		})
	}
	for _, loserID := range result.loserIDs {
		uc.notify(loserID, "lost", map[string]any{"auction_id": auctionID})
	}
	return nil
}

type closeResult struct {
	event         domain.AuctionEvent
	winnerID      string
	winningAmount decimal.Decimal
	loserIDs      []string
}

// closeLocked freezes the ledger: the rank-1 bid becomes WON, every other
// open bid LOST, flags stop flipping, winnerID is fixed. Returns nil when
// the auction is already past ENDED.
func (uc *DefaultAuctionUsecase) closeLocked(auctionID string) (*closeResult, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, err
	}

	switch auction.Status {
	case domain.StatusEnded, domain.StatusSellerApproved, domain.StatusAdminApproved:
		return nil, nil
	}
	if !auction.Status.CanTransitionTo(domain.StatusEnded) {
		return nil, &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     fmt.Sprintf("auction cannot be closed from status %s", auction.Status),
		}
	}

	bids, err := uc.BidRepo.GetBidsByAuctionID(auctionID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	entries := ranking.Rank(bids)
	winner := ranking.Winner(entries)

	now := uc.now()
	auction.Status = domain.StatusEnded
	auction.Revision++
	auction.UpdatedAt = now

	wonBidID := ""
	if winner != nil {
		auction.WinnerID = winner.BidderID
		wonBidID = winner.BidID
	}
	if err := uc.BidRepo.CloseLedger(auction, wonBidID, now); err != nil {
		return nil, fmt.Errorf("close ledger: %w", err)
	}

	result := &closeResult{
		event:    uc.commitEvent(auction, domain.EventAuctionUpdated, nil),
		winnerID: auction.WinnerID,
	}
	for _, entry := range entries {
		if entry.BidderID == auction.WinnerID {
			result.winningAmount = entry.BestAmount
			continue
		}
		result.loserIDs = append(result.loserIDs, entry.BidderID)
	}
	return result, nil
}
