package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/scraplot/auction-service/internal/domain"
	auctiondto "github.com/scraplot/auction-service/internal/usecase/dto/auction"
)

func (uc *DefaultAuctionUsecase) CreateAuction(input *auctiondto.CreateAuctionInput) (*domain.Auction, error) {
	now := uc.now()

	if input.SellerID == "" || input.MaterialID == "" {
		return nil, &domain.ValidationError{Reason: "seller and material are required"}
	}
	if !input.StartingPrice.IsPositive() {
		return nil, &domain.ValidationError{Reason: "starting price must be positive"}
	}
	if !input.EndTime.After(now) {
		return nil, &domain.ValidationError{Reason: "end time must be in the future"}
	}
	if input.TokenAmount != nil && !input.TokenAmount.IsPositive() {
		return nil, &domain.ValidationError{Reason: "token amount must be positive"}
	}

	status := domain.StatusDraft
	startTime := now
	switch {
	case input.PublishNow:
		status = domain.StatusActive
	case input.ScheduledPublishDate != nil:
		status = domain.StatusScheduled
		startTime = *input.ScheduledPublishDate
	}

	auction := &domain.Auction{
		ID:                   uuid.New().String(),
		MaterialID:           input.MaterialID,
		SellerID:             input.SellerID,
		Title:                input.Title,
		StartingPrice:        input.StartingPrice,
		CurrentBid:           input.StartingPrice,
		StartTime:            startTime,
		EndTime:              input.EndTime,
		ScheduledPublishDate: input.ScheduledPublishDate,
		TokenAmount:          input.TokenAmount,
		Status:               status,
		Revision:             1,
		CreatedAt:            now,
		UpdatedAt:            now,
	}
	if err := uc.AuctionRepo.CreateAuction(auction); err != nil {
		return nil, fmt.Errorf("create auction: %w", err)
	}

	if uc.Metrics != nil {
		uc.Metrics.AuctionsCreatedTotal.Inc()
	}
	uc.publishEvent(uc.commitEvent(auction, domain.EventAuctionUpdated, nil))
	return auction, nil
}

// PublishAuction puts the auction live. It is triggered by an immediate
// admin approval or by the scheduler once scheduledPublishDate is reached.
func (uc *DefaultAuctionUsecase) PublishAuction(auctionID string) error {
	return uc.transition(auctionID, domain.StatusActive, func(auction *domain.Auction) {
		auction.StartTime = auction.UpdatedAt
	})
}

// CancelAuction withdraws the auction from any pre-ended state. The ledger
// is retained for audit but no further bids are accepted, so the
// leaderboard projection is dropped.
func (uc *DefaultAuctionUsecase) CancelAuction(auctionID string) error {
	if err := uc.transition(auctionID, domain.StatusCancelled, nil); err != nil {
		return err
	}
	uc.dropLeaderboard(auctionID)
	return nil
}

func (uc *DefaultAuctionUsecase) transition(auctionID string, next domain.AuctionStatus, mutate func(*domain.Auction)) error {
	release, err := uc.locks.acquire(context.Background(), auctionID, uc.lockTimeout)
	if err != nil {
		return err
	}
	event, err := uc.transitionLocked(auctionID, next, mutate)
	release()
	if err != nil {
		return err
	}
	uc.publishEvent(*event)
	return nil
}

func (uc *DefaultAuctionUsecase) transitionLocked(auctionID string, next domain.AuctionStatus, mutate func(*domain.Auction)) (*domain.AuctionEvent, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, err
	}
	if !auction.Status.CanTransitionTo(next) {
		return nil, &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     fmt.Sprintf("transition %s -> %s is not allowed", auction.Status, next),
		}
	}

	auction.Status = next
	auction.Revision++
	auction.UpdatedAt = uc.now()
	if mutate != nil {
		mutate(auction)
	}
	if err := uc.AuctionRepo.UpdateAuction(auction); err != nil {
		return nil, fmt.Errorf("update auction: %w", err)
	}
	event := uc.commitEvent(auction, domain.EventAuctionUpdated, nil)
	return &event, nil
}
