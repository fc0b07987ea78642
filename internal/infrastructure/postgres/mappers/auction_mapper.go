package mappers

import (
	"github.com/scraplot/auction-service/internal/domain"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres/models"
)

func ToDomainAuction(model *models.AuctionModel) *domain.Auction {
	return &domain.Auction{
		ID:                   model.ID,
		MaterialID:           model.MaterialID,
		SellerID:             model.SellerID,
		Title:                model.Title,
		StartingPrice:        model.StartingPrice,
		CurrentBid:           model.CurrentBid,
		BidCount:             model.BidCount,
		CurrentBidderID:      model.CurrentBidderID,
		StartTime:            model.StartTime,
		EndTime:              model.EndTime,
		ScheduledPublishDate: model.ScheduledPublishDate,
		TokenAmount:          model.TokenAmount,
		TokenPaymentDeadline: model.TokenPaymentDeadline,
		TokenPaid:            model.TokenPaid,
		TokenOverdueNotified: model.TokenOverdueNotified,
		Status:               model.Status,
		WinnerID:             model.WinnerID,
		PurchaseOrder:        model.PurchaseOrder,
		AdminApprovedAt:      model.AdminApprovedAt,
		Revision:             model.Revision,
		CreatedAt:            model.CreatedAt,
		UpdatedAt:            model.UpdatedAt,
	}
}

func ToGORMAuction(auction *domain.Auction) *models.AuctionModel {
	return &models.AuctionModel{
		ID:                   auction.ID,
		MaterialID:           auction.MaterialID,
		SellerID:             auction.SellerID,
		Title:                auction.Title,
		StartingPrice:        auction.StartingPrice,
		CurrentBid:           auction.CurrentBid,
		BidCount:             auction.BidCount,
		CurrentBidderID:      auction.CurrentBidderID,
		StartTime:            auction.StartTime,
		EndTime:              auction.EndTime,
		ScheduledPublishDate: auction.ScheduledPublishDate,
		TokenAmount:          auction.TokenAmount,
		TokenPaymentDeadline: auction.TokenPaymentDeadline,
		TokenPaid:            auction.TokenPaid,
		TokenOverdueNotified: auction.TokenOverdueNotified,
		Status:               auction.Status,
		WinnerID:             auction.WinnerID,
		PurchaseOrder:        auction.PurchaseOrder,
		AdminApprovedAt:      auction.AdminApprovedAt,
		Revision:             auction.Revision,
		CreatedAt:            auction.CreatedAt,
		UpdatedAt:            auction.UpdatedAt,
	}
}
