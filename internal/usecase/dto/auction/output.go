package auctiondto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

type RankingEntry struct {
	BidderID   string          `json:"bidder_id"`
	BestAmount decimal.Decimal `json:"best_amount"`
	Rank       int             `json:"rank"`
	Timestamp  time.Time       `json:"timestamp"`
}

type AnalyticsOutput struct {
	AuctionID       string               `json:"auction_id"`
	Status          domain.AuctionStatus `json:"status"`
	CurrentBid      decimal.Decimal      `json:"current_bid"`
	BidCount        int64                `json:"bid_count"`
	DistinctBidders int                  `json:"distinct_bidders"`
	Ranking         []RankingEntry       `json:"ranking"`
	WinnerID        string               `json:"winner_id,omitempty"`
}

type SettlementOutput struct {
	AuctionID            string           `json:"auction_id"`
	PurchaseOrder        string           `json:"purchase_order"`
	WinnerID             string           `json:"winner_id"`
	Amount               decimal.Decimal  `json:"amount"`
	AdminApprovedAt      time.Time        `json:"admin_approved_at"`
	TokenAmount          *decimal.Decimal `json:"token_amount,omitempty"`
	TokenPaymentDeadline *time.Time       `json:"token_payment_deadline,omitempty"`
}

type BidderHistoryOutput struct {
	BidderID   string        `json:"bidder_id"`
	Bids       []*domain.Bid `json:"bids"`
	Pagination Pagination    `json:"pagination"`
}

type Pagination struct {
	CurrentPage int32 `json:"current_page"`
	TotalPages  int32 `json:"total_pages"`
	TotalItems  int64 `json:"total_items"`
	Limit       int32 `json:"limit"`
}

type GetAuctionsOutput struct {
	Auctions   []*domain.Auction `json:"auctions"`
	Pagination Pagination        `json:"pagination"`
}
