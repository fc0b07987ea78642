package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
	"github.com/scraplot/auction-service/internal/infrastructure/metrics"
	auctiondto "github.com/scraplot/auction-service/internal/usecase/dto/auction"
)

type AuctionUsecase interface {
	CreateAuction(input *auctiondto.CreateAuctionInput) (*domain.Auction, error)
	PublishAuction(auctionID string) error
	CancelAuction(auctionID string) error

	PlaceBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) (*domain.Bid, error)
	CloseAuction(auctionID string) error

	AcceptBidSeller(auctionID string) error
	AcceptBidAdmin(auctionID string) (*auctiondto.SettlementOutput, error)
	MarkTokenReceived(auctionID string) error
	CheckTokenDeadlines(ctx context.Context) error

	OpenScheduledAuctions(ctx context.Context) error
	CloseExpiredAuctions(ctx context.Context) error

	GetAuctionByID(auctionID string) (*domain.Auction, error)
	GetBidHistory(auctionID string) ([]*domain.Bid, error)
	GetAnalytics(auctionID string) (*auctiondto.AnalyticsOutput, error)
	GetAuctions(input *auctiondto.GetAuctionsInput) (*auctiondto.GetAuctionsOutput, error)
	GetBidderHistory(bidderID string, page, limit int32) (*auctiondto.BidderHistoryOutput, error)
	GetSellerStatistics(sellerID string, dateFrom, dateTo time.Time) (*domain.AuctionStatistics, error)

	AdminCreateBid(ctx context.Context, input *auctiondto.AdminCreateBidInput) (*domain.Bid, error)
	AdminUpdateBid(ctx context.Context, input *auctiondto.AdminUpdateBidInput) (*domain.Bid, error)
	AdminDeleteBid(ctx context.Context, input *auctiondto.AdminDeleteBidInput) error
}

const (
	defaultLockTimeout = 2 * time.Second
	// Token payment is due two days after admin approval.
	defaultTokenWindow = 48 * time.Hour
)

// Timings carries the tunable durations of the bidding core. Zero fields
// fall back to the defaults.
type Timings struct {
	// LockTimeout bounds how long an operation waits for the per-auction
	// admission lock before it is rejected as contended.
	LockTimeout time.Duration
	// TokenWindow is the payment window opened at admin approval for
	// auctions that carry a token amount.
	TokenWindow time.Duration
}

type DefaultAuctionUsecase struct {
	AuctionRepo  domain.AuctionRepository
	BidRepo      domain.BidRepository
	Verification domain.VerificationProvider
	Notifier     domain.Notifier
	Publisher    domain.PublisherPort
	Broadcaster  domain.Broadcaster
	Leaderboard  domain.LeaderboardStore
	Metrics      *metrics.AuctionMetrics

	locks       *lockArena
	lockTimeout time.Duration
	tokenWindow time.Duration
	now         func() time.Time
}

func NewDefaultAuctionUsecase(
	auctionRepo domain.AuctionRepository,
	bidRepo domain.BidRepository,
	verification domain.VerificationProvider,
	notifier domain.Notifier,
	publisher domain.PublisherPort,
	broadcaster domain.Broadcaster,
	leaderboard domain.LeaderboardStore,
	auctionMetrics *metrics.AuctionMetrics,
	timings Timings) *DefaultAuctionUsecase {

	if timings.LockTimeout <= 0 {
		timings.LockTimeout = defaultLockTimeout
	}
	if timings.TokenWindow <= 0 {
		timings.TokenWindow = defaultTokenWindow
	}

	return &DefaultAuctionUsecase{
		AuctionRepo:  auctionRepo,
		BidRepo:      bidRepo,
		Verification: verification,
		Notifier:     notifier,
		Publisher:    publisher,
		Broadcaster:  broadcaster,
		Leaderboard:  leaderboard,
		Metrics:      auctionMetrics,
		locks:        newLockArena(),
		lockTimeout:  timings.LockTimeout,
		tokenWindow:  timings.TokenWindow,
		now:          time.Now,
	}
}
