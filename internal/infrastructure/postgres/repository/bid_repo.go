package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/scraplot/auction-service/internal/domain"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres/mappers"
	"github.com/scraplot/auction-service/internal/infrastructure/postgres/models"
)

type DefaultBidRepository struct {
	DB *gorm.DB
}

func NewDefaultBidRepository(db *gorm.DB) *DefaultBidRepository {
	return &DefaultBidRepository{DB: db}
}

func (r *DefaultBidRepository) AppendBid(auction *domain.Auction, bid *domain.Bid, prevWinningBidID string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(mappers.ToGORMBid(bid)).Error; err != nil {
			return fmt.Errorf("failed to append bid: %w", err)
		}
		if prevWinningBidID != "" {
			err := tx.Model(&models.BidModel{}).
				Where("id = ?", prevWinningBidID).
				Updates(map[string]interface{}{
					"is_winning": false,
					"is_outbid":  true,
					"status":     domain.BidStatusOutbid,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to outbid previous winner: %w", err)
			}
		}
		return updateAuctionTx(tx, auction)
	})
}

func (r *DefaultBidRepository) CloseLedger(auction *domain.Auction, wonBidID string, closedAt time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if wonBidID != "" {
			err := tx.Model(&models.BidModel{}).
				Where("id = ?", wonBidID).
				Updates(map[string]interface{}{
					"status":     domain.BidStatusWon,
					"is_winning": true,
					"closed_at":  closedAt,
				}).Error
			if err != nil {
				return fmt.Errorf("failed to mark won bid: %w", err)
			}
		}
		err := tx.Model(&models.BidModel{}).
			Where("auction_id = ? AND id <> ? AND status IN ?", auction.ID, wonBidID,
				[]domain.BidStatus{domain.BidStatusActive, domain.BidStatusOutbid}).
			Updates(map[string]interface{}{
				"status":     domain.BidStatusLost,
				"is_winning": false,
				"closed_at":  closedAt,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to mark lost bids: %w", err)
		}
		return updateAuctionTx(tx, auction)
	})
}

func (r *DefaultBidRepository) ApplyLedgerRevision(auction *domain.Auction, bids []*domain.Bid, deletedBidIDs []string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if len(deletedBidIDs) > 0 {
			if err := tx.Delete(&models.BidModel{}, "id IN ?", deletedBidIDs).Error; err != nil {
				return fmt.Errorf("failed to delete revised bids: %w", err)
			}
		}
		for _, bid := range bids {
			bidModel := mappers.ToGORMBid(bid)
			result := tx.Model(&models.BidModel{}).
				Where("id = ?", bid.ID).
				Select("*").Omit("created_at").
				Updates(bidModel)
			if result.Error != nil {
				return fmt.Errorf("failed to revise bid %s: %w", bid.ID, result.Error)
			}
			if result.RowsAffected == 0 {
				if createErr := tx.Create(bidModel).Error; createErr != nil {
					return fmt.Errorf("failed to insert revised bid %s: %w", bid.ID, createErr)
				}
			}
		}
		return updateAuctionTx(tx, auction)
	})
}

func (r *DefaultBidRepository) GetBidByID(bidID string) (*domain.Bid, error) {
	var bidModel models.BidModel
	if err := r.DB.First(&bidModel, "id = ?", bidID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrBidNotFound
		}
		return nil, err
	}
	return mappers.ToDomainBid(&bidModel), nil
}

func (r *DefaultBidRepository) GetBidsByAuctionID(auctionID string) ([]*domain.Bid, error) {
	var bidModels []models.BidModel
	if err := r.DB.
		Where("auction_id = ?", auctionID).
		Order("seq ASC").
		Find(&bidModels).Error; err != nil {
		return nil, err
	}
	return toDomainBids(bidModels), nil
}

func (r *DefaultBidRepository) GetWinningBid(auctionID string) (*domain.Bid, error) {
	var bidModel models.BidModel
	err := r.DB.
		Where("auction_id = ? AND is_winning = true", auctionID).
		Order("seq DESC").
		First(&bidModel).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return mappers.ToDomainBid(&bidModel), nil
}

func (r *DefaultBidRepository) MaxSeq(auctionID string) (int64, error) {
	var maxSeq int64
	err := r.DB.Model(&models.BidModel{}).
		Where("auction_id = ?", auctionID).
		Select("COALESCE(MAX(seq), 0)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, fmt.Errorf("failed to read max seq: %w", err)
	}
	return maxSeq, nil
}

func (r *DefaultBidRepository) GetBidsByBidderID(bidderID string, page, limit int32) ([]*domain.Bid, int64, error) {
	var bidModels []models.BidModel
	var total int64

	baseQuery := r.DB.Model(&models.BidModel{}).Where("bidder_id = ?", bidderID)
	if err := baseQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count bids: %w", err)
	}

	offset := (page - 1) * limit
	if err := baseQuery.
		Order("timestamp DESC").
		Offset(int(offset)).
		Limit(int(limit)).
		Find(&bidModels).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to find bids: %w", err)
	}

	return toDomainBids(bidModels), total, nil
}

func updateAuctionTx(tx *gorm.DB, auction *domain.Auction) error {
	result := tx.Model(&models.AuctionModel{}).
		Where("id = ?", auction.ID).
		Select("*").Omit("created_at").
		Updates(mappers.ToGORMAuction(auction))
	if result.Error != nil {
		return fmt.Errorf("failed to update auction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.ErrAuctionNotFound
	}
	return nil
}

func toDomainBids(bidModels []models.BidModel) []*domain.Bid {
	bids := make([]*domain.Bid, len(bidModels))
	for i, bidModel := range bidModels {
		bids[i] = mappers.ToDomainBid(&bidModel)
	}
	return bids
}
