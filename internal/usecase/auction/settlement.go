package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jaevor/go-nanoid"

	"github.com/scraplot/auction-service/internal/domain"
	auctiondto "github.com/scraplot/auction-service/internal/usecase/dto/auction"
)

// AcceptBidSeller records the seller's acceptance of the winning bid. The
// ranking does not change; only the status moves forward.
func (uc *DefaultAuctionUsecase) AcceptBidSeller(auctionID string) error {
	release, err := uc.locks.acquire(context.Background(), auctionID, uc.lockTimeout)
	if err != nil {
		return err
	}
	event, err := uc.acceptSellerLocked(auctionID)
	release()
	if err != nil {
		return err
	}
	uc.publishEvent(*event)
	return nil
}

func (uc *DefaultAuctionUsecase) acceptSellerLocked(auctionID string) (*domain.AuctionEvent, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, err
	}
	if !auction.Status.CanTransitionTo(domain.StatusSellerApproved) {
		return nil, &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "only an ended auction can be seller-approved",
		}
	}
	if auction.WinnerID == "" {
		return nil, domain.ErrNoWinningBid
	}

	auction.Status = domain.StatusSellerApproved
	auction.Revision++
	auction.UpdatedAt = uc.now()
	if err := uc.AuctionRepo.UpdateAuction(auction); err != nil {
		return nil, fmt.Errorf("update auction: %w", err)
	}
	event := uc.commitEvent(auction, domain.EventAuctionUpdated, nil)
	return &event, nil
}

// AcceptBidAdmin settles the auction: it generates the purchase order,
// stamps adminApprovedAt and, when a token amount is configured, starts
// the token payment clock at adminApprovedAt plus the payment window.
func (uc *DefaultAuctionUsecase) AcceptBidAdmin(auctionID string) (*auctiondto.SettlementOutput, error) {
	release, err := uc.locks.acquire(context.Background(), auctionID, uc.lockTimeout)
	if err != nil {
		return nil, err
	}
	auction, event, err := uc.acceptAdminLocked(auctionID)
	release()
	if err != nil {
		return nil, err
	}

	if uc.Metrics != nil {
		uc.Metrics.AuctionsSettledTotal.Inc()
	}
	uc.publishEvent(*event)

	payload := map[string]any{
		"auction_id":     auction.ID,
		"purchase_order": auction.PurchaseOrder,
		"amount":         auction.CurrentBid.String(),
	}
	if auction.TokenPaymentDeadline != nil {
		payload["token_payment_deadline"] = auction.TokenPaymentDeadline
	}
	uc.notify(auction.WinnerID, "settlement", payload)

	return &auctiondto.SettlementOutput{
		AuctionID:            auction.ID,
		PurchaseOrder:        auction.PurchaseOrder,
		WinnerID:             auction.WinnerID,
		Amount:               auction.CurrentBid,
		AdminApprovedAt:      *auction.AdminApprovedAt,
		TokenAmount:          auction.TokenAmount,
		TokenPaymentDeadline: auction.TokenPaymentDeadline,
	}, nil
}

func (uc *DefaultAuctionUsecase) acceptAdminLocked(auctionID string) (*domain.Auction, *domain.AuctionEvent, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, nil, err
	}
	if !auction.Status.CanTransitionTo(domain.StatusAdminApproved) {
		return nil, nil, &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "only an ended or seller-approved auction can be admin-approved",
		}
	}
	if auction.WinnerID == "" {
		return nil, nil, domain.ErrNoWinningBid
	}

	idGenerator, err := nanoid.Standard(15)
	if err != nil {
		return nil, nil, err
	}

	now := uc.now()
	auction.Status = domain.StatusAdminApproved
	auction.PurchaseOrder = "PO-" + idGenerator()
	auction.AdminApprovedAt = &now
	if auction.TokenAmount != nil {
		deadline := now.Add(uc.tokenWindow)
		auction.TokenPaymentDeadline = &deadline
		auction.TokenPaid = false
	}
	auction.Revision++
	auction.UpdatedAt = now
	if err := uc.AuctionRepo.UpdateAuction(auction); err != nil {
		return nil, nil, fmt.Errorf("update auction: %w", err)
	}
	event := uc.commitEvent(auction, domain.EventAuctionUpdated, nil)
	return auction, &event, nil
}

// MarkTokenReceived is idempotent: marking an already-paid auction is a
// no-op success with no duplicate notification side effects.
func (uc *DefaultAuctionUsecase) MarkTokenReceived(auctionID string) error {
	release, err := uc.locks.acquire(context.Background(), auctionID, uc.lockTimeout)
	if err != nil {
		return err
	}
	auction, event, err := uc.markTokenLocked(auctionID)
	release()
	if err != nil {
		return err
	}
	if event == nil {
		return nil
	}
	uc.publishEvent(*event)
	uc.notify(auction.SellerID, "token-received", map[string]any{
		"auction_id":     auction.ID,
		"purchase_order": auction.PurchaseOrder,
	})
	return nil
}

func (uc *DefaultAuctionUsecase) markTokenLocked(auctionID string) (*domain.Auction, *domain.AuctionEvent, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, nil, err
	}
	if auction.Status != domain.StatusAdminApproved {
		return nil, nil, &domain.StateConflictError{
			Status:     auction.Status,
			CurrentBid: auction.CurrentBid,
			Reason:     "token payment applies to admin-approved auctions only",
		}
	}
	if auction.TokenPaid {
		return auction, nil, nil
	}

	auction.TokenPaid = true
	auction.Revision++
	auction.UpdatedAt = uc.now()
	if err := uc.AuctionRepo.UpdateAuction(auction); err != nil {
		return nil, nil, fmt.Errorf("update auction: %w", err)
	}
	event := uc.commitEvent(auction, domain.EventAuctionUpdated, nil)
	return auction, &event, nil
}

// CheckTokenDeadlines flags admin-approved auctions whose token payment is
// overdue. A missed deadline is a flagged condition, not an error: the
// sale is never cancelled automatically, each auction is flagged once.
func (uc *DefaultAuctionUsecase) CheckTokenDeadlines(ctx context.Context) error {
	overdue, err := uc.AuctionRepo.FindOverdueTokenAuctions(uc.now())
	if err != nil {
		return fmt.Errorf("find overdue token auctions: %w", err)
	}

	for _, candidate := range overdue {
		if err := uc.flagTokenOverdue(ctx, candidate.ID); err != nil {
			slog.Error("failed to flag overdue token payment", "auction_id", candidate.ID, "error", err.Error())
		}
	}
	return nil
}

func (uc *DefaultAuctionUsecase) flagTokenOverdue(ctx context.Context, auctionID string) error {
	release, err := uc.locks.acquire(ctx, auctionID, uc.lockTimeout)
	if err != nil {
		return err
	}
	auction, event, err := uc.flagTokenOverdueLocked(auctionID)
	release()
	if err != nil || event == nil {
		return err
	}

	if uc.Metrics != nil {
		uc.Metrics.TokenOverdueTotal.Inc()
	}
	uc.publishEvent(*event)
	uc.notify(auction.WinnerID, "token-overdue", map[string]any{
		"auction_id":             auction.ID,
		"purchase_order":         auction.PurchaseOrder,
		"token_payment_deadline": auction.TokenPaymentDeadline,
	})
	return nil
}

func (uc *DefaultAuctionUsecase) flagTokenOverdueLocked(auctionID string) (*domain.Auction, *domain.AuctionEvent, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, nil, err
	}
	// Re-check under the lock: the token may have been paid (or the
	// auction already flagged) since the scan selected it.
	if auction.Status != domain.StatusAdminApproved || auction.TokenPaid || auction.TokenOverdueNotified {
		return nil, nil, nil
	}
	if auction.TokenPaymentDeadline == nil || uc.now().Before(*auction.TokenPaymentDeadline) {
		return nil, nil, nil
	}

	auction.TokenOverdueNotified = true
	auction.Revision++
	auction.UpdatedAt = uc.now()
	if err := uc.AuctionRepo.UpdateAuction(auction); err != nil {
		return nil, nil, fmt.Errorf("update auction: %w", err)
	}
	event := uc.commitEvent(auction, domain.EventTokenOverdue, nil)
	return auction, &event, nil
}
