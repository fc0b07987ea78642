package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	EventBidPlaced      = "bid-placed"
	EventAuctionUpdated = "auction-updated"
	EventTokenOverdue   = "token-overdue"
)

// AuctionEvent is a state-change notification. Seq is the auction revision
// captured inside the admission/lifecycle critical section; subscribers of
// one auction observe events in Seq order regardless of delivery timing.
// Events are at-least-once refresh signals, never the source of truth.
type AuctionEvent struct {
	AuctionID  string          `json:"auction_id"`
	Seq        int64           `json:"seq"`
	Type       string          `json:"type"`
	Status     AuctionStatus   `json:"status"`
	CurrentBid decimal.Decimal `json:"current_bid"`
	BidCount   int64           `json:"bid_count"`
	BidderID   string          `json:"bidder_id,omitempty"`
	Amount     decimal.Decimal `json:"amount,omitempty"`
	Time       time.Time       `json:"time"`
}

// Broadcaster fans events out to the subscribers of an auction's room and
// to global admin/analytics subscribers.
type Broadcaster interface {
	Publish(event AuctionEvent)
}
