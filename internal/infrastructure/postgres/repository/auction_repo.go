package repository

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/scraplot/auction-service/internal/domain"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres/mappers"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres/models"
)

type DefaultAuctionRepository struct {
	DB *gorm.DB
}

func NewDefaultAuctionRepository(db *gorm.DB) *DefaultAuctionRepository {
	return &DefaultAuctionRepository{DB: db}
}

func (r *DefaultAuctionRepository) CreateAuction(auction *domain.Auction) error {
	auctionModel := mappers.ToGORMAuction(auction)
	if err := r.DB.Create(auctionModel).Error; err != nil {
		return err
	}
	return nil
}

func (r *DefaultAuctionRepository) GetAuctionByID(auctionID string) (*domain.Auction, error) {
	var auctionModel models.AuctionModel
	if err := r.DB.First(&auctionModel, "id = ?", auctionID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrAuctionNotFound
		}
		return nil, err
	}
	return mappers.ToDomainAuction(&auctionModel), nil
}

func (r *DefaultAuctionRepository) UpdateAuction(auction *domain.Auction) error {
	auctionModel := mappers.ToGORMAuction(auction)
	result := r.DB.Model(&models.AuctionModel{}).
		Where("id = ?", auction.ID).
		Select("*").Omit("created_at").
		Updates(auctionModel)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

func (r *DefaultAuctionRepository) FindDuePublishAuctions(now time.Time) ([]*domain.Auction, error) {
	var auctionModels []models.AuctionModel
	if err := r.DB.
		Where("status = ?", domain.StatusScheduled).
		Where("scheduled_publish_date IS NOT NULL AND scheduled_publish_date <= ?", now).
		Find(&auctionModels).Error; err != nil {
		return nil, err
	}
	return toDomainAuctions(auctionModels), nil
}

func (r *DefaultAuctionRepository) FindExpiredActiveAuctions(now time.Time) ([]*domain.Auction, error) {
	var auctionModels []models.AuctionModel
	if err := r.DB.
		Where("status = ?", domain.StatusActive).
		Where("end_time < ?", now).
		Find(&auctionModels).Error; err != nil {
		return nil, err
	}
	return toDomainAuctions(auctionModels), nil
}

func (r *DefaultAuctionRepository) FindOverdueTokenAuctions(now time.Time) ([]*domain.Auction, error) {
	var auctionModels []models.AuctionModel
	if err := r.DB.
		Where("status = ?", domain.StatusAdminApproved).
		Where("token_paid = false AND token_overdue_notified = false").
		Where("token_payment_deadline IS NOT NULL AND token_payment_deadline < ?", now).
		Find(&auctionModels).Error; err != nil {
		return nil, err
	}
	return toDomainAuctions(auctionModels), nil
}

func (r *DefaultAuctionRepository) GetAuctions(filters domain.AuctionFilters, page, limit int32) ([]*domain.Auction, int64, error) {
	var auctionModels []models.AuctionModel
	var total int64

	baseQuery := r.DB.Model(&models.AuctionModel{})

	if filters.SellerID != "" {
		baseQuery = baseQuery.Where("seller_id = ?", filters.SellerID)
	}
	if filters.MaterialID != "" {
		baseQuery = baseQuery.Where("material_id = ?", filters.MaterialID)
	}
	if len(filters.Statuses) > 0 {
		baseQuery = baseQuery.Where("status IN (?)", filters.Statuses)
	}
	if !filters.DateFrom.IsZero() {
		baseQuery = baseQuery.Where("created_at >= ?", filters.DateFrom)
	}
	if !filters.DateTo.IsZero() {
		baseQuery = baseQuery.Where("created_at <= ?", filters.DateTo)
	}

	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count auctions: %w", err)
	}

	offset := (page - 1) * limit
	if err := baseQuery.
		Order("created_at DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&auctionModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find auctions: %w", err)
	}

	return toDomainAuctions(auctionModels), total, nil
}

func (r *DefaultAuctionRepository) GetSellerStatistics(sellerID string, dateFrom, dateTo time.Time) (*domain.AuctionStatistics, error) {
	baseQuery := r.DB.Model(&models.AuctionModel{}).Where("seller_id = ?", sellerID)
	if !dateFrom.IsZero() {
		baseQuery = baseQuery.Where("created_at >= ?", dateFrom)
	}
	if !dateTo.IsZero() {
		baseQuery = baseQuery.Where("created_at <= ?", dateTo)
	}

	var row struct {
		TotalAuctions     int64
		EndedAuctions     int64
		SettledAuctions   int64
		CancelledAuctions int64
		TotalBids         int64
		GrossAmount       decimal.Decimal
	}

	err := baseQuery.Select(`
		COUNT(*) AS total_auctions,
		COUNT(*) FILTER (WHERE status IN ?) AS ended_auctions,
		COUNT(*) FILTER (WHERE status = ?) AS settled_auctions,
		COUNT(*) FILTER (WHERE status = ?) AS cancelled_auctions,
		COALESCE(SUM(bid_count), 0) AS total_bids,
		COALESCE(SUM(current_bid) FILTER (WHERE status = ?), 0) AS gross_amount`,
		[]domain.AuctionStatus{domain.StatusEnded, domain.StatusSellerApproved, domain.StatusAdminApproved},
		domain.StatusAdminApproved,
		domain.StatusCancelled,
		domain.StatusAdminApproved,
	).Scan(&row).Error
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate seller statistics: %w", err)
	}

	return &domain.AuctionStatistics{
		TotalAuctions:     row.TotalAuctions,
		EndedAuctions:     row.EndedAuctions,
		SettledAuctions:   row.SettledAuctions,
		CancelledAuctions: row.CancelledAuctions,
		TotalBids:         row.TotalBids,
		GrossAmount:       row.GrossAmount,
	}, nil
}

func toDomainAuctions(auctionModels []models.AuctionModel) []*domain.Auction {
	auctions := make([]*domain.Auction, len(auctionModels))
	for i, auctionModel := range auctionModels {
		auctions[i] = mappers.ToDomainAuction(&auctionModel)
	}
	return auctions
}
