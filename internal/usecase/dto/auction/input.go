package auctiondto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

type CreateAuctionInput struct {
	MaterialID           string
	SellerID             string
	Title                string
	StartingPrice        decimal.Decimal
	EndTime              time.Time
	ScheduledPublishDate *time.Time
	TokenAmount          *decimal.Decimal
	// PublishNow puts the auction live immediately instead of waiting for
	// the scheduled publish date or an explicit admin approval.
	PublishNow bool
}

type GetAuctionsInput struct {
	SellerID   string
	MaterialID string
	Statuses   []domain.AuctionStatus
	DateFrom   time.Time
	DateTo     time.Time
	Page       int32
	Limit      int32
}

type AdminCreateBidInput struct {
	ActorID   string
	AuctionID string
	BidderID  string
	Amount    decimal.Decimal
	// Timestamp is optional; zero means "now". Admin-reconstructed bids may
	// carry a historical timestamp, which feeds the ranking tie-break.
	Timestamp time.Time
}

type AdminUpdateBidInput struct {
	ActorID string
	BidID   string
	Amount  decimal.Decimal
}

type AdminDeleteBidInput struct {
	ActorID string
	BidID   string
}
