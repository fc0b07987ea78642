package domain

import "time"

type AuctionRepository interface {
	CreateAuction(auction *Auction) error
	GetAuctionByID(auctionID string) (*Auction, error)
	UpdateAuction(auction *Auction) error

	// FindDuePublishAuctions returns scheduled auctions whose publish date
	// has been reached.
	FindDuePublishAuctions(now time.Time) ([]*Auction, error)
	// FindExpiredActiveAuctions returns active auctions past their end time.
	FindExpiredActiveAuctions(now time.Time) ([]*Auction, error)
	// FindOverdueTokenAuctions returns admin-approved auctions with an
	// unpaid token past its payment deadline that have not been flagged yet.
	FindOverdueTokenAuctions(now time.Time) ([]*Auction, error)

	GetAuctions(filters AuctionFilters, page, limit int32) ([]*Auction, int64, error)
	GetSellerStatistics(sellerID string, dateFrom, dateTo time.Time) (*AuctionStatistics, error)
}
