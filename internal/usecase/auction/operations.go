package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

const auctionEventsTopic = "auction-events"

// commitEvent captures the broadcast event for a committed mutation. It
// must be built inside the critical section so Seq reflects the revision
// that was just persisted; the fan-out itself happens after release.
func (uc *DefaultAuctionUsecase) commitEvent(auction *domain.Auction, eventType string, bid *domain.Bid) domain.AuctionEvent {
	event := domain.AuctionEvent{
		AuctionID:  auction.ID,
		Seq:        auction.Revision,
		Type:       eventType,
		Status:     auction.Status,
		CurrentBid: auction.CurrentBid,
		BidCount:   auction.BidCount,
		Time:       auction.UpdatedAt,
	}
	if bid != nil {
		event.BidderID = bid.BidderID
		event.Amount = bid.Amount
	}
	return event
}

// publishEvent fans a committed event out to room subscribers and mirrors
// it to the global Kafka stream. Delivery failures are logged and never
// roll back the committed state.
func (uc *DefaultAuctionUsecase) publishEvent(event domain.AuctionEvent) {
	if uc.Broadcaster != nil {
		uc.Broadcaster.Publish(event)
	}
	if uc.Metrics != nil {
		uc.Metrics.EventsBroadcastTotal.WithLabelValues(event.Type).Inc()
	}
	if uc.Publisher == nil {
		return
	}
	go func(event domain.AuctionEvent) {
		value, err := json.Marshal(event)
		if err != nil {
			slog.Error("failed to marshal AuctionEvent", "type", event.Type, "error", err.Error())
			return
		}
		msg := domain.Message{Key: []byte(event.AuctionID), Value: value}
		if err := uc.Publisher.Publish(auctionEventsTopic, msg); err != nil {
			slog.Error("failed to publish kafka AuctionEvent", "type", event.Type, "auction_id", event.AuctionID, "error", err.Error())
		}
	}(event)
}

func (uc *DefaultAuctionUsecase) notify(userID, event string, payload map[string]any) {
	if uc.Notifier == nil || userID == "" {
		return
	}
	uc.Notifier.Notify(userID, event, payload)
}

func (uc *DefaultAuctionUsecase) recordLeaderboard(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) {
	if uc.Leaderboard == nil {
		return
	}
	if err := uc.Leaderboard.RecordBid(ctx, auctionID, bidderID, amount); err != nil {
		slog.Warn("failed to project bid to leaderboard", "auction_id", auctionID, "error", err.Error())
	}
}

func (uc *DefaultAuctionUsecase) dropLeaderboard(auctionID string) {
	if uc.Leaderboard == nil {
		return
	}
	if err := uc.Leaderboard.DropAuction(context.Background(), auctionID); err != nil {
		slog.Warn("failed to drop auction leaderboard", "auction_id", auctionID, "error", err.Error())
	}
}

func (uc *DefaultAuctionUsecase) countRejection(err error) {
	if uc.Metrics == nil {
		return
	}
	uc.Metrics.BidsRejectedTotal.WithLabelValues(rejectionReason(err)).Inc()
}

func rejectionReason(err error) string {
	var validation *domain.ValidationError
	var conflict *domain.StateConflictError
	var contention *domain.ContentionTimeoutError
	switch {
	case errors.As(err, &validation):
		return "validation"
	case errors.As(err, &conflict):
		return "state_conflict"
	case errors.As(err, &contention):
		return "contention"
	case errors.Is(err, domain.ErrAuctionNotFound):
		return "not_found"
	default:
		return "internal"
	}
}
