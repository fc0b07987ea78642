package redisdb

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

// Leaderboard is a write-through ZSET projection of per-auction rankings.
// Reads against it are lock-free and may trail the ledger by one bid; the
// ledger stays the source of truth.
type Leaderboard struct {
	client *redis.Client
}

func NewLeaderboard(addr, password string, db int) (*Leaderboard, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &Leaderboard{client: rdb}, nil
}

func leaderboardKey(auctionID string) string {
	return fmt.Sprintf("auction:%s:leaderboard", auctionID)
}

// RecordBid keeps the bidder's highest amount: ZADD GT never lowers an
// existing score, so a replayed projection cannot regress the board.
func (l *Leaderboard) RecordBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) error {
	score, _ := amount.Float64()
	return l.client.ZAddGT(ctx, leaderboardKey(auctionID), redis.Z{
		Score:  score,
		Member: bidderID,
	}).Err()
}

func (l *Leaderboard) TopBidders(ctx context.Context, auctionID string, limit int64) ([]domain.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	zs, err := l.client.ZRevRangeWithScores(ctx, leaderboardKey(auctionID), 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]domain.LeaderboardEntry, 0, len(zs))
	for _, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		entries = append(entries, domain.LeaderboardEntry{
			BidderID: member,
			Amount:   decimal.NewFromFloat(z.Score),
		})
	}
	return entries, nil
}

func (l *Leaderboard) DropAuction(ctx context.Context, auctionID string) error {
	return l.client.Del(ctx, leaderboardKey(auctionID)).Err()
}

func (l *Leaderboard) Close() error {
	return l.client.Close()
}
