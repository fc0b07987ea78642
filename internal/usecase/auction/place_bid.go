package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

// PlaceBid admits a bid into the auction's ledger. Admission is serialized
// through the per-auction lock: read currentBid, validate, append, update
// the auction aggregate and flip the previous winner's flags commit as one
// atomic unit. Broadcast, leaderboard projection and notifications run
// after the lock is released.
func (uc *DefaultAuctionUsecase) PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (*domain.Bid, error) {
	// External verification stays outside the critical section.
	verified, err := uc.Verification.IsVerifiedBuyer(ctx, bidderID)
	if err != nil {
		return nil, fmt.Errorf("verify buyer: %w", err)
	}
	if !verified {
		verr := &domain.ValidationError{Reason: "bidder is not a verified buyer"}
		// Best effort: the rejection carries the current bid like every
		// other validation failure.
		if auction, lookupErr := uc.AuctionRepo.GetAuctionByID(auctionID); lookupErr == nil {
			verr.CurrentBid = auction.CurrentBid
		}
		uc.countRejection(verr)
		return nil, verr
	}

	release, err := uc.locks.acquire(ctx, auctionID, uc.lockTimeout)
	if err != nil {
		if uc.Metrics != nil {
			uc.Metrics.LockContentionTotal.Inc()
		}
		uc.countRejection(err)
		return nil, err
	}

	start := uc.now()
	bid, event, outbidBidderID, err := uc.admitBid(auctionID, bidderID, amount)
	release()
	if uc.Metrics != nil {
		uc.Metrics.BidAdmissionDuration.Observe(uc.now().Sub(start).Seconds())
	}
	if err != nil {
		uc.countRejection(err)
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.BidsPlacedTotal.Inc()
	}
	uc.publishEvent(*event)
	uc.recordLeaderboard(ctx, auctionID, bidderID, amount)
	if outbidBidderID != "" {
		uc.notify(outbidBidderID, "outbid", map[string]any{
			"auction_id":  auctionID,
			"current_bid": amount.String(),
		})
	}
	return bid, nil
}

// admitBid runs inside the per-auction critical section.
func (uc *DefaultAuctionUsecase) admitBid(auctionID, bidderID string, amount decimal.Decimal) (*domain.Bid, *domain.AuctionEvent, string, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, nil, "", err
	}
	now := uc.now()

	if auction.Status != domain.StatusActive {
		return nil, nil, "", &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "auction is not open for bidding",
		}
	}
	if now.After(auction.EndTime) {
		return nil, nil, "", &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "auction has reached its end time",
		}
	}
	if bidderID == auction.CurrentBidderID {
		return nil, nil, "", &domain.ValidationError{
			Reason:     "bidder already holds the highest bid",
			CurrentBid: auction.CurrentBid,
		}
	}
	// Strict increase. An amount exactly equal to a currentBid that has
	// already been raised means the caller raced against another bid and
	// lost: surfaced as a state conflict so the client refreshes before
	// retrying.
	if amount.Equal(auction.CurrentBid) && auction.BidCount > 0 {
		return nil, nil, "", &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "stale current bid",
		}
	}
	if !amount.GreaterThan(auction.CurrentBid) {
		return nil, nil, "", &domain.ValidationError{
			Reason:     "amount does not exceed the current bid",
			CurrentBid: auction.CurrentBid,
		}
	}

	prev, err := uc.BidRepo.GetWinningBid(auctionID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("load winning bid: %w", err)
	}
	// The next seq comes from the ledger's max, not the bid count: admin
	// deletions shrink the count but never free an occupied seq.
	maxSeq, err := uc.BidRepo.MaxSeq(auctionID)
	if err != nil {
		return nil, nil, "", fmt.Errorf("read ledger seq: %w", err)
	}

	bid := &domain.Bid{
		ID:        uuid.New().String(),
		AuctionID: auctionID,
		BidderID:  bidderID,
		Amount:    amount,
		Seq:       maxSeq + 1,
		Timestamp: now,
		Status:    domain.BidStatusActive,
		IsWinning: true,
	}

	auction.CurrentBid = amount
	auction.CurrentBidderID = bidderID
	auction.BidCount++
	auction.Revision++
	auction.UpdatedAt = now

	prevBidID, prevBidderID := "", ""
	if prev != nil {
		prevBidID, prevBidderID = prev.ID, prev.BidderID
	}
	if err := uc.BidRepo.AppendBid(auction, bid, prevBidID); err != nil {
		return nil, nil, "", fmt.Errorf("append bid: %w", err)
	}

	event := uc.commitEvent(auction, domain.EventBidPlaced, bid)
	return bid, &event, prevBidderID, nil
}
