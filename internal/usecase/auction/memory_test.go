package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

// In-memory repositories backing the usecase tests. They copy rows on the
// way in and out so callers never share state with the store, matching
// how the real database behaves.

type memAuctionRepo struct {
	mu       sync.Mutex
	auctions map[string]domain.Auction
}

func newMemAuctionRepo() *memAuctionRepo {
	return &memAuctionRepo{auctions: make(map[string]domain.Auction)}
}

func (r *memAuctionRepo) CreateAuction(auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auctions[auction.ID] = *auction
	return nil
}

func (r *memAuctionRepo) GetAuctionByID(auctionID string) (*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	auction, ok := r.auctions[auctionID]
	if !ok {
		return nil, domain.ErrAuctionNotFound
	}
	copied := auction
	return &copied, nil
}

func (r *memAuctionRepo) UpdateAuction(auction *domain.Auction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.auctions[auction.ID]; !ok {
		return domain.ErrAuctionNotFound
	}
	r.auctions[auction.ID] = *auction
	return nil
}

func (r *memAuctionRepo) FindDuePublishAuctions(now time.Time) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var due []*domain.Auction
	for _, auction := range r.auctions {
		if auction.Status == domain.StatusScheduled &&
			auction.ScheduledPublishDate != nil &&
			!auction.ScheduledPublishDate.After(now) {
			copied := auction
			due = append(due, &copied)
		}
	}
	return due, nil
}

func (r *memAuctionRepo) FindExpiredActiveAuctions(now time.Time) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var expired []*domain.Auction
	for _, auction := range r.auctions {
		if auction.Status == domain.StatusActive && auction.EndTime.Before(now) {
			copied := auction
			expired = append(expired, &copied)
		}
	}
	return expired, nil
}

func (r *memAuctionRepo) FindOverdueTokenAuctions(now time.Time) ([]*domain.Auction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var overdue []*domain.Auction
	for _, auction := range r.auctions {
		if auction.Status == domain.StatusAdminApproved &&
			!auction.TokenPaid && !auction.TokenOverdueNotified &&
			auction.TokenPaymentDeadline != nil &&
			auction.TokenPaymentDeadline.Before(now) {
			copied := auction
			overdue = append(overdue, &copied)
		}
	}
	return overdue, nil
}

func (r *memAuctionRepo) GetAuctions(filters domain.AuctionFilters, page, limit int32) ([]*domain.Auction, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var matched []*domain.Auction
	for _, auction := range r.auctions {
		if filters.SellerID != "" && auction.SellerID != filters.SellerID {
			continue
		}
		copied := auction
		matched = append(matched, &copied)
	}
	return matched, int64(len(matched)), nil
}

func (r *memAuctionRepo) GetSellerStatistics(sellerID string, dateFrom, dateTo time.Time) (*domain.AuctionStatistics, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.AuctionStatistics{GrossAmount: decimal.Zero}
	for _, auction := range r.auctions {
		if auction.SellerID != sellerID {
			continue
		}
		stats.TotalAuctions++
		stats.TotalBids += auction.BidCount
		switch auction.Status {
		case domain.StatusEnded, domain.StatusSellerApproved:
			stats.EndedAuctions++
		case domain.StatusAdminApproved:
			stats.EndedAuctions++
			stats.SettledAuctions++
			stats.GrossAmount = stats.GrossAmount.Add(auction.CurrentBid)
		case domain.StatusCancelled:
			stats.CancelledAuctions++
		}
	}
	return stats, nil
}

type memBidRepo struct {
	mu       sync.Mutex
	auctions *memAuctionRepo
	bids     map[string]domain.Bid
}

func newMemBidRepo(auctions *memAuctionRepo) *memBidRepo {
	return &memBidRepo{auctions: auctions, bids: make(map[string]domain.Bid)}
}

func (r *memBidRepo) AppendBid(auction *domain.Auction, bid *domain.Bid, prevWinningBidID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bids[bid.ID] = *bid
	if prevWinningBidID != "" {
		prev, ok := r.bids[prevWinningBidID]
		if ok {
			prev.IsWinning = false
			prev.IsOutbid = true
			prev.Status = domain.BidStatusOutbid
			r.bids[prevWinningBidID] = prev
		}
	}
	return r.auctions.UpdateAuction(auction)
}

func (r *memBidRepo) CloseLedger(auction *domain.Auction, wonBidID string, closedAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, bid := range r.bids {
		if bid.AuctionID != auction.ID {
			continue
		}
		at := closedAt
		switch {
		case id == wonBidID:
			bid.Status = domain.BidStatusWon
			bid.IsWinning = true
			bid.ClosedAt = &at
		case bid.Status.Open():
			bid.Status = domain.BidStatusLost
			bid.IsWinning = false
			bid.ClosedAt = &at
		}
		r.bids[id] = bid
	}
	return r.auctions.UpdateAuction(auction)
}

func (r *memBidRepo) ApplyLedgerRevision(auction *domain.Auction, bids []*domain.Bid, deletedBidIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, id := range deletedBidIDs {
		delete(r.bids, id)
	}
	for _, bid := range bids {
		r.bids[bid.ID] = *bid
	}
	return r.auctions.UpdateAuction(auction)
}

func (r *memBidRepo) GetBidByID(bidID string) (*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	bid, ok := r.bids[bidID]
	if !ok {
		return nil, domain.ErrBidNotFound
	}
	copied := bid
	return &copied, nil
}

func (r *memBidRepo) GetBidsByAuctionID(auctionID string) ([]*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ledger []*domain.Bid
	for _, bid := range r.bids {
		if bid.AuctionID != auctionID {
			continue
		}
		copied := bid
		ledger = append(ledger, &copied)
	}
	for i := 1; i < len(ledger); i++ {
		for j := i; j > 0 && ledger[j].Seq < ledger[j-1].Seq; j-- {
			ledger[j], ledger[j-1] = ledger[j-1], ledger[j]
		}
	}
	return ledger, nil
}

func (r *memBidRepo) GetWinningBid(auctionID string) (*domain.Bid, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var winning *domain.Bid
	for _, bid := range r.bids {
		if bid.AuctionID != auctionID || !bid.IsWinning {
			continue
		}
		copied := bid
		if winning == nil || copied.Seq > winning.Seq {
			winning = &copied
		}
	}
	return winning, nil
}

func (r *memBidRepo) MaxSeq(auctionID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var maxSeq int64
	for _, bid := range r.bids {
		if bid.AuctionID == auctionID && bid.Seq > maxSeq {
			maxSeq = bid.Seq
		}
	}
	return maxSeq, nil
}

func (r *memBidRepo) GetBidsByBidderID(bidderID string, page, limit int32) ([]*domain.Bid, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var bids []*domain.Bid
	for _, bid := range r.bids {
		if bid.BidderID != bidderID {
			continue
		}
		copied := bid
		bids = append(bids, &copied)
	}
	for i := 1; i < len(bids); i++ {
		for j := i; j > 0 && bids[j].Timestamp.After(bids[j-1].Timestamp); j-- {
			bids[j], bids[j-1] = bids[j-1], bids[j]
		}
	}
	total := int64(len(bids))
	from := int((page - 1) * limit)
	if from > len(bids) {
		from = len(bids)
	}
	to := from + int(limit)
	if to > len(bids) {
		to = len(bids)
	}
	return bids[from:to], total, nil
}

// stubVerifier treats every user as a verified buyer unless listed, and
// grants the admin role to listed admins.
type stubVerifier struct {
	unverified map[string]bool
	admins     map[string]bool
}

func (v *stubVerifier) IsVerifiedBuyer(ctx context.Context, userID string) (bool, error) {
	return !v.unverified[userID], nil
}

func (v *stubVerifier) Role(ctx context.Context, userID string) (string, error) {
	if v.admins[userID] {
		return domain.RoleAdmin, nil
	}
	return "buyer", nil
}

// memLeaderboard records ranking projections and dropped auctions.
type memLeaderboard struct {
	mu      sync.Mutex
	entries map[string][]domain.LeaderboardEntry
	dropped []string
}

func newMemLeaderboard() *memLeaderboard {
	return &memLeaderboard{entries: make(map[string][]domain.LeaderboardEntry)}
}

func (l *memLeaderboard) RecordBid(ctx context.Context, auctionID, bidderID string, amount decimal.Decimal) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[auctionID] = append(l.entries[auctionID], domain.LeaderboardEntry{BidderID: bidderID, Amount: amount})
	return nil
}

func (l *memLeaderboard) TopBidders(ctx context.Context, auctionID string, limit int64) ([]domain.LeaderboardEntry, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]domain.LeaderboardEntry(nil), l.entries[auctionID]...), nil
}

func (l *memLeaderboard) DropAuction(ctx context.Context, auctionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, auctionID)
	l.dropped = append(l.dropped, auctionID)
	return nil
}

type recordedNotification struct {
	UserID  string
	Event   string
	Payload map[string]any
}

type recordNotifier struct {
	mu   sync.Mutex
	sent []recordedNotification
}

func (n *recordNotifier) Notify(userID string, event string, payload map[string]any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, recordedNotification{UserID: userID, Event: event, Payload: payload})
}

func (n *recordNotifier) byEvent(event string) []recordedNotification {
	n.mu.Lock()
	defer n.mu.Unlock()
	var matched []recordedNotification
	for _, notification := range n.sent {
		if notification.Event == event {
			matched = append(matched, notification)
		}
	}
	return matched
}

type recordBroadcaster struct {
	mu     sync.Mutex
	events []domain.AuctionEvent
}

func (b *recordBroadcaster) Publish(event domain.AuctionEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *recordBroadcaster) all() []domain.AuctionEvent {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]domain.AuctionEvent(nil), b.events...)
}

type fixture struct {
	uc          *DefaultAuctionUsecase
	auctions    *memAuctionRepo
	bids        *memBidRepo
	verifier    *stubVerifier
	notifier    *recordNotifier
	broadcaster *recordBroadcaster
	leaderboard *memLeaderboard
	clock       *fakeClock
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newFixture() *fixture {
	return newFixtureTimings(Timings{})
}

func newFixtureTimings(timings Timings) *fixture {
	auctions := newMemAuctionRepo()
	bids := newMemBidRepo(auctions)
	verifier := &stubVerifier{unverified: map[string]bool{}, admins: map[string]bool{}}
	notifier := &recordNotifier{}
	broadcaster := &recordBroadcaster{}
	leaderboard := newMemLeaderboard()
	clock := &fakeClock{now: time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)}

	uc := NewDefaultAuctionUsecase(auctions, bids, verifier, notifier, nil, broadcaster, leaderboard, nil, timings)
	uc.now = clock.Now

	return &fixture{
		uc:          uc,
		auctions:    auctions,
		bids:        bids,
		verifier:    verifier,
		notifier:    notifier,
		broadcaster: broadcaster,
		leaderboard: leaderboard,
		clock:       clock,
	}
}

func (f *fixture) activeAuction(startingPrice int64) *domain.Auction {
	auction := &domain.Auction{
		ID:            "auction-1",
		MaterialID:    "material-1",
		SellerID:      "seller-1",
		Title:         "copper scrap, 2t",
		StartingPrice: decimal.NewFromInt(startingPrice),
		CurrentBid:    decimal.NewFromInt(startingPrice),
		StartTime:     f.clock.Now(),
		EndTime:       f.clock.Now().Add(24 * time.Hour),
		Status:        domain.StatusActive,
		Revision:      1,
		CreatedAt:     f.clock.Now(),
		UpdatedAt:     f.clock.Now(),
	}
	if err := f.auctions.CreateAuction(auction); err != nil {
		panic(err)
	}
	return auction
}
