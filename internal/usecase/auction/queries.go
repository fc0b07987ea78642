package usecase

import (
	"time"

	"github.com/scraplot/auction-service/internal/domain"
	auctiondto "github.com/scraplot/auction-service/internal/usecase/dto/auction"
	"github.com/scraplot/auction-service/internal/usecase/ranking"
)

func (uc *DefaultAuctionUsecase) GetAuctionByID(auctionID string) (*domain.Auction, error) {
	return uc.AuctionRepo.GetAuctionByID(auctionID)
}

// GetBidHistory returns the ledger in sequence order.
func (uc *DefaultAuctionUsecase) GetBidHistory(auctionID string) ([]*domain.Bid, error) {
	if _, err := uc.AuctionRepo.GetAuctionByID(auctionID); err != nil {
		return nil, err
	}
	return uc.BidRepo.GetBidsByAuctionID(auctionID)
}

// GetAnalytics projects the ranking snapshot and aggregate stats from the
// ledger. The read runs lock-free against the last committed state and may
// trail a concurrent admission by one bid.
func (uc *DefaultAuctionUsecase) GetAnalytics(auctionID string) (*auctiondto.AnalyticsOutput, error) {
	auction, err := uc.AuctionRepo.GetAuctionByID(auctionID)
	if err != nil {
		return nil, err
	}
	bids, err := uc.BidRepo.GetBidsByAuctionID(auctionID)
	if err != nil {
		return nil, err
	}

	entries := ranking.Rank(bids)
	out := &auctiondto.AnalyticsOutput{
		AuctionID:       auction.ID,
		Status:          auction.Status,
		CurrentBid:      auction.CurrentBid,
		BidCount:        auction.BidCount,
		DistinctBidders: len(entries),
		WinnerID:        auction.WinnerID,
		Ranking:         make([]auctiondto.RankingEntry, 0, len(entries)),
	}
	for _, entry := range entries {
		out.Ranking = append(out.Ranking, auctiondto.RankingEntry{
			BidderID:   entry.BidderID,
			BestAmount: entry.BestAmount,
			Rank:       entry.Rank,
			Timestamp:  entry.Timestamp,
		})
	}
	return out, nil
}

func (uc *DefaultAuctionUsecase) GetAuctions(input *auctiondto.GetAuctionsInput) (*auctiondto.GetAuctionsOutput, error) {
	if input.Page < 1 {
		input.Page = 1
	}
	if input.Limit < 1 || input.Limit > 100 {
		input.Limit = 50
	}

	filters := domain.AuctionFilters{
		SellerID:   input.SellerID,
		MaterialID: input.MaterialID,
		Statuses:   input.Statuses,
		DateFrom:   input.DateFrom,
		DateTo:     input.DateTo,
	}
	auctions, total, err := uc.AuctionRepo.GetAuctions(filters, input.Page, input.Limit)
	if err != nil {
		return nil, err
	}

	totalPages := int32(total) / input.Limit
	if int32(total)%input.Limit > 0 {
		totalPages++
	}
	return &auctiondto.GetAuctionsOutput{
		Auctions: auctions,
		Pagination: auctiondto.Pagination{
			CurrentPage: input.Page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       input.Limit,
		},
	}, nil
}

// GetBidderHistory returns a buyer's bids across all auctions, newest
// first.
func (uc *DefaultAuctionUsecase) GetBidderHistory(bidderID string, page, limit int32) (*auctiondto.BidderHistoryOutput, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 50
	}

	bids, total, err := uc.BidRepo.GetBidsByBidderID(bidderID, page, limit)
	if err != nil {
		return nil, err
	}

	totalPages := int32(total) / limit
	if int32(total)%limit > 0 {
		totalPages++
	}
	return &auctiondto.BidderHistoryOutput{
		BidderID: bidderID,
		Bids:     bids,
		Pagination: auctiondto.Pagination{
			CurrentPage: page,
			TotalPages:  totalPages,
			TotalItems:  total,
			Limit:       limit,
		},
	}, nil
}

func (uc *DefaultAuctionUsecase) GetSellerStatistics(sellerID string, dateFrom, dateTo time.Time) (*domain.AuctionStatistics, error) {
	return uc.AuctionRepo.GetSellerStatistics(sellerID, dateFrom, dateTo)
}
