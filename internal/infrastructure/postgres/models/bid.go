package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

type BidModel struct {
	ID        string           `gorm:"primaryKey;type:uuid"`
	AuctionID string           `gorm:"type:uuid;index:idx_auction_seq,unique"`
	// Seq is the per-auction ledger position; the unique composite index
	// backs the append-only total order.
	Seq          int64            `gorm:"index:idx_auction_seq,unique"`
	BidderID     string           `gorm:"type:uuid;index"`
	Amount       decimal.Decimal  `gorm:"type:numeric(18,2)"`
	Timestamp    time.Time
	Status       domain.BidStatus `gorm:"index"`
	IsWinning    bool
	IsOutbid     bool
	ClosedAt     *time.Time
	AdminCreated bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (BidModel) TableName() string {
	return "bids"
}
