package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AuctionStatus string

const (
	StatusDraft          AuctionStatus = "DRAFT"
	StatusScheduled      AuctionStatus = "SCHEDULED"
	StatusActive         AuctionStatus = "ACTIVE"
	StatusEnded          AuctionStatus = "ENDED"
	StatusSellerApproved AuctionStatus = "SELLER_APPROVED"
	StatusAdminApproved  AuctionStatus = "ADMIN_APPROVED"
	StatusCancelled      AuctionStatus = "CANCELLED"
)

// auctionTransitions is the closed transition table. Any pair not listed
// here is an illegal transition and must be rejected with a
// StateConflictError, never silently ignored.
var auctionTransitions = map[AuctionStatus][]AuctionStatus{
	StatusDraft:          {StatusScheduled, StatusActive, StatusCancelled},
	StatusScheduled:      {StatusActive, StatusCancelled},
	StatusActive:         {StatusEnded, StatusCancelled},
	StatusEnded:          {StatusSellerApproved, StatusAdminApproved},
	StatusSellerApproved: {StatusAdminApproved},
	StatusAdminApproved:  {},
	StatusCancelled:      {},
}

func (s AuctionStatus) CanTransitionTo(next AuctionStatus) bool {
	for _, allowed := range auctionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Terminal reports whether no further transition is possible.
func (s AuctionStatus) Terminal() bool {
	return len(auctionTransitions[s]) == 0
}

type Auction struct {
	ID                   string
	MaterialID           string
	SellerID             string
	Title                string
	StartingPrice        decimal.Decimal
	// CurrentBid is monotonic non-decreasing and always >= StartingPrice.
	// It equals the amount of the highest open bid in the ledger and is
	// maintained transactionally together with ledger appends.
	CurrentBid           decimal.Decimal
	BidCount             int64
	CurrentBidderID      string
	StartTime            time.Time
	EndTime              time.Time
	ScheduledPublishDate *time.Time
	TokenAmount          *decimal.Decimal
	TokenPaymentDeadline *time.Time
	TokenPaid            bool
	TokenOverdueNotified bool
	Status               AuctionStatus
	WinnerID             string
	PurchaseOrder        string
	AdminApprovedAt      *time.Time
	// Revision grows by one on every committed mutation of the auction.
	// It is the ordering key for broadcast events.
	Revision  int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

type AuctionFilters struct {
	SellerID   string
	Statuses   []AuctionStatus
	MaterialID string
	DateFrom   time.Time
	DateTo     time.Time
}

type AuctionStatistics struct {
	TotalAuctions     int64
	EndedAuctions     int64
	SettledAuctions   int64
	CancelledAuctions int64
	TotalBids         int64
	GrossAmount       decimal.Decimal
}
