package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type BidStatus string

const (
	BidStatusActive BidStatus = "ACTIVE"
	BidStatusOutbid BidStatus = "OUTBID"
	BidStatusWon    BidStatus = "WON"
	BidStatusLost   BidStatus = "LOST"
	BidStatusClosed BidStatus = "CLOSED"
)

// Open reports whether the bid still competes in the ledger. Closed bids
// are withdrawn and excluded from ranking and currentBid derivation.
func (s BidStatus) Open() bool {
	return s == BidStatusActive || s == BidStatusOutbid
}

type Bid struct {
	ID        string
	AuctionID string
	BidderID  string
	Amount    decimal.Decimal
	// Seq is the per-auction logical sequence number assigned at
	// acceptance time inside the admission critical section. Ledger order
	// is defined by Seq, not by wall-clock Timestamp.
	Seq       int64
	Timestamp time.Time
	Status    BidStatus
	IsWinning bool
	IsOutbid  bool
	ClosedAt  *time.Time
	// AdminCreated marks ledger entries inserted through the privileged
	// admin surface. They bypass the strict-increase rule, so ranking
	// tie-breaks must stay deterministic for them.
	AdminCreated bool
}
