package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// VerificationProvider is the external user/verification service.
type VerificationProvider interface {
	IsVerifiedBuyer(ctx context.Context, userID string) (bool, error)
	Role(ctx context.Context, userID string) (string, error)
}

const RoleAdmin = "admin"

// Notifier delivers user-facing notifications (outbid, won, lost,
// token-deadline). Delivery is best effort and never blocks or rolls back
// committed state.
type Notifier interface {
	Notify(userID string, event string, payload map[string]any)
}

type LeaderboardEntry struct {
	BidderID string
	Amount   decimal.Decimal
}

// LeaderboardStore is a write-through projection of per-auction rankings
// for lock-free analytics reads. It is never the source of truth.
type LeaderboardStore interface {
	RecordBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) error
	TopBidders(ctx context.Context, auctionID string, limit int64) ([]LeaderboardEntry, error)
	DropAuction(ctx context.Context, auctionID string) error
}
