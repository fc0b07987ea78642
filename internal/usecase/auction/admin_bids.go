package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/scraplot/auction-service/internal/domain"
	auctiondto "github.com/scraplot/auction-service/internal/usecase/dto/auction"
	"github.com/scraplot/auction-service/internal/usecase/ranking"
)

// Admin override surface. These commands mutate the ledger directly,
// bypassing normal admission, and then re-derive currentBid and the
// winning flags through the ranking engine. Flags are never hand-patched.

func (uc *DefaultAuctionUsecase) AdminCreateBid(ctx context.Context, input *auctiondto.AdminCreateBidInput) (*domain.Bid, error) {
	if err := uc.requireAdmin(ctx, input.ActorID); err != nil {
		return nil, err
	}

	release, err := uc.locks.acquire(ctx, input.AuctionID, uc.lockTimeout)
	if err != nil {
		return nil, err
	}
	bid, event, err := uc.adminCreateBidLocked(input)
	release()
	if err != nil {
		return nil, err
	}
	uc.publishEvent(*event)
	uc.recordLeaderboard(ctx, input.AuctionID, input.BidderID, input.Amount)
	return bid, nil
}

func (uc *DefaultAuctionUsecase) adminCreateBidLocked(input *auctiondto.AdminCreateBidInput) (*domain.Bid, *domain.AuctionEvent, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(input.AuctionID)
	if err != nil {
		return nil, nil, err
	}
	if auction.Status.Terminal() {
		return nil, nil, &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "ledger of a settled or cancelled auction is immutable",
		}
	}
	// Admin bids bypass the strict-increase and self-outbid rules, but
	// never the auction floor.
	if input.Amount.LessThan(auction.StartingPrice) {
		return nil, nil, &domain.ValidationError{
			Reason:     "amount is below the starting price",
			CurrentBid: auction.CurrentBid,
		}
	}

	bids, err := uc.BidRepo.GetBidsByAuctionID(input.AuctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load ledger: %w", err)
	}

	timestamp := input.Timestamp
	if timestamp.IsZero() {
		timestamp = uc.now()
	}
	bid := &domain.Bid{
		ID:           uuid.New().String(),
		AuctionID:    input.AuctionID,
		BidderID:     input.BidderID,
		Amount:       input.Amount,
		Seq:          nextSeq(bids),
		Timestamp:    timestamp,
		Status:       domain.BidStatusActive,
		AdminCreated: true,
	}
	bids = append(bids, bid)

	event, err := uc.rederiveLocked(auction, bids, nil)
	if err != nil {
		return nil, nil, err
	}
	return bid, event, nil
}

func (uc *DefaultAuctionUsecase) AdminUpdateBid(ctx context.Context, input *auctiondto.AdminUpdateBidInput) (*domain.Bid, error) {
	if err := uc.requireAdmin(ctx, input.ActorID); err != nil {
		return nil, err
	}

	target, err := uc.BidRepo.GetBidByID(input.BidID)
	if err != nil {
		return nil, err
	}

	release, err := uc.locks.acquire(ctx, target.AuctionID, uc.lockTimeout)
	if err != nil {
		return nil, err
	}
	bid, event, err := uc.adminUpdateBidLocked(target.AuctionID, input)
	release()
	if err != nil {
		return nil, err
	}
	uc.publishEvent(*event)
	return bid, nil
}

func (uc *DefaultAuctionUsecase) adminUpdateBidLocked(auctionID string, input *auctiondto.AdminUpdateBidInput) (*domain.Bid, *domain.AuctionEvent, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, nil, err
	}
	if auction.Status.Terminal() {
		return nil, nil, &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "ledger of a settled or cancelled auction is immutable",
		}
	}
	if input.Amount.LessThan(auction.StartingPrice) {
		return nil, nil, &domain.ValidationError{
			Reason:     "amount is below the starting price",
			CurrentBid: auction.CurrentBid,
		}
	}

	bids, err := uc.BidRepo.GetBidsByAuctionID(auctionID)
	if err != nil {
		return nil, nil, fmt.Errorf("load ledger: %w", err)
	}
	var target *domain.Bid
	for _, b := range bids {
		if b.ID == input.BidID {
			target = b
			break
		}
	}
	if target == nil {
		return nil, nil, domain.ErrBidNotFound
	}

	target.Amount = input.Amount
	target.AdminCreated = true

	event, err := uc.rederiveLocked(auction, bids, nil)
	if err != nil {
		return nil, nil, err
	}
	return target, event, nil
}

func (uc *DefaultAuctionUsecase) AdminDeleteBid(ctx context.Context, input *auctiondto.AdminDeleteBidInput) error {
	if err := uc.requireAdmin(ctx, input.ActorID); err != nil {
		return err
	}

	target, err := uc.BidRepo.GetBidByID(input.BidID)
	if err != nil {
		return err
	}

	release, err := uc.locks.acquire(ctx, target.AuctionID, uc.lockTimeout)
	if err != nil {
		return err
	}
	event, err := uc.adminDeleteBidLocked(target.AuctionID, input.BidID)
	release()
	if err != nil {
		return err
	}
	uc.publishEvent(*event)
	return nil
}

func (uc *DefaultAuctionUsecase) adminDeleteBidLocked(auctionID, bidID string) (*domain.AuctionEvent, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status.Terminal() {
		return nil, &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "ledger of a settled or cancelled auction is immutable",
		}
	}

	bids, err := uc.BidRepo.GetBidsByAuctionID(auctionID)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	remaining := make([]*domain.Bid, 0, len(bids))
	found := false
	for _, b := range bids {
		if b.ID == bidID {
			found = true
			continue
		}
		remaining = append(remaining, b)
	}
	if !found {
		return nil, domain.ErrBidNotFound
	}

	return uc.rederiveLocked(auction, remaining, []string{bidID})
}

// rederiveLocked recomputes the auction aggregate and every bid's flags
// from the revised ledger and persists the whole revision atomically.
func (uc *DefaultAuctionUsecase) rederiveLocked(auction *domain.Auction, bids []*domain.Bid, deletedBidIDs []string) (*domain.AuctionEvent, error) {
	entries := ranking.Rank(bids)
	top := ranking.Winner(entries)
	frozen := auction.Status == domain.StatusEnded || auction.Status == domain.StatusSellerApproved

	for _, b := range bids {
		if b.Status == domain.BidStatusClosed {
			b.IsWinning = false
			continue
		}
		winning := top != nil && b.ID == top.BidID
		wasWinning := b.IsWinning
		b.IsWinning = winning
		switch {
		case winning:
			b.IsOutbid = false
			if frozen {
				b.Status = domain.BidStatusWon
			} else {
				b.Status = domain.BidStatusActive
			}
		default:
			if wasWinning {
				b.IsOutbid = true
			}
			if frozen {
				b.Status = domain.BidStatusLost
			} else if b.IsOutbid {
				b.Status = domain.BidStatusOutbid
			}
		}
	}

	if top != nil {
		auction.CurrentBid = top.BestAmount
		auction.CurrentBidderID = top.BidderID
	} else {
		auction.CurrentBid = auction.StartingPrice
		auction.CurrentBidderID = ""
	}
	if frozen {
		if top != nil {
			auction.WinnerID = top.BidderID
		} else {
			auction.WinnerID = ""
		}
	}
	auction.BidCount = int64(len(bids))
	auction.Revision++
	auction.UpdatedAt = uc.now()

	if err := uc.BidRepo.ApplyLedgerRevision(auction, bids, deletedBidIDs); err != nil {
		return nil, fmt.Errorf("apply ledger revision: %w", err)
	}
	event := uc.commitEvent(auction, domain.EventAuctionUpdated, nil)
	return &event, nil
}

func (uc *DefaultAuctionUsecase) requireAdmin(ctx context.Context, actorID string) error {
	role, err := uc.Verification.Role(ctx, actorID)
	if err != nil {
		return fmt.Errorf("resolve role: %w", err)
	}
	if role != domain.RoleAdmin {
		return domain.ErrForbidden
	}
	return nil
}

func nextSeq(bids []*domain.Bid) int64 {
	var max int64
	for _, b := range bids {
		if b.Seq > max {
			max = b.Seq
		}
	}
	return max + 1
}
