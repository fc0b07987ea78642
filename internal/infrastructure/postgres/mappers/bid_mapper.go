package mappers

import (
	"github.com/scraplot/auction-service/internal/domain"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres/models"
)

func ToDomainBid(model *models.BidModel) *domain.Bid {
	return &domain.Bid{
		ID:           model.ID,
		AuctionID:    model.AuctionID,
		BidderID:     model.BidderID,
		Amount:       model.Amount,
		Seq:          model.Seq,
		Timestamp:    model.Timestamp,
		Status:       model.Status,
		IsWinning:    model.IsWinning,
		IsOutbid:     model.IsOutbid,
		ClosedAt:     model.ClosedAt,
		AdminCreated: model.AdminCreated,
	}
}

func ToGORMBid(bid *domain.Bid) *models.BidModel {
	return &models.BidModel{
		ID:           bid.ID,
		AuctionID:    bid.AuctionID,
		BidderID:     bid.BidderID,
		Amount:       bid.Amount,
		Seq:          bid.Seq,
		Timestamp:    bid.Timestamp,
		Status:       bid.Status,
		IsWinning:    bid.IsWinning,
		IsOutbid:     bid.IsOutbid,
		ClosedAt:     bid.ClosedAt,
		AdminCreated: bid.AdminCreated,
	}
}
