package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

type AuctionModel struct {
	ID                   string               `gorm:"primaryKey;type:uuid"`
	MaterialID           string               `gorm:"type:uuid;index"`
	SellerID             string               `gorm:"type:uuid;index:idx_seller_created"`
	Title                string
	StartingPrice        decimal.Decimal      `gorm:"type:numeric(18,2)"`
	CurrentBid           decimal.Decimal      `gorm:"type:numeric(18,2)"`
	BidCount             int64
	CurrentBidderID      string
	StartTime            time.Time
	EndTime              time.Time            `gorm:"index:idx_status_end_time"`
	ScheduledPublishDate *time.Time           `gorm:"index"`
	TokenAmount          *decimal.Decimal     `gorm:"type:numeric(18,2)"`
	TokenPaymentDeadline *time.Time
	TokenPaid            bool
	TokenOverdueNotified bool
	Status               domain.AuctionStatus `gorm:"index:idx_status_end_time"`
	WinnerID             string
	PurchaseOrder        string
	AdminApprovedAt      *time.Time
	Revision             int64
	CreatedAt            time.Time            `gorm:"index:idx_seller_created"`
	UpdatedAt            time.Time
}

func (AuctionModel) TableName() string {
	return "auctions"
}
