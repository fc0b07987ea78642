// Package ranking derives leaderboards from the bid ledger. Ranking is a
// pure projection: given the same ledger it always produces the same
// result, and it is never the source of truth for an auction's current
// bid, which is maintained transactionally by the admission path.
package ranking

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/scraplot/auction-service/internal/domain"
)

type Entry struct {
	BidderID   string
	BestAmount decimal.Decimal
	Rank       int
	BidID      string
	Seq        int64
	Timestamp  time.Time
}

// Rank returns one entry per distinct bidder, using that bidder's highest
// open bid. Ties are broken by earliest timestamp, then lowest sequence
// number: the first bidder to reach an amount outranks a later bidder who
// matches it. Ties cannot occur through normal admission (strict increase)
// but admin-inserted bids can produce them.
func Rank(bids []*domain.Bid) []Entry {
	best := make(map[string]*domain.Bid)
	order := make([]string, 0, len(bids))

	for _, bid := range bids {
		if !bid.Status.Open() && bid.Status != domain.BidStatusWon && bid.Status != domain.BidStatusLost {
			continue
		}
		existing, ok := best[bid.BidderID]
		if !ok {
			best[bid.BidderID] = bid
			order = append(order, bid.BidderID)
			continue
		}
		if bid.Amount.GreaterThan(existing.Amount) ||
			(bid.Amount.Equal(existing.Amount) && earlier(bid, existing)) {
			best[bid.BidderID] = bid
		}
	}

	entries := make([]Entry, 0, len(order))
	for _, bidderID := range order {
		bid := best[bidderID]
		entries = append(entries, Entry{
			BidderID:   bidderID,
			BestAmount: bid.Amount,
			BidID:      bid.ID,
			Seq:        bid.Seq,
			Timestamp:  bid.Timestamp,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].BestAmount.Equal(entries[j].BestAmount) {
			return entries[i].BestAmount.GreaterThan(entries[j].BestAmount)
		}
		if !entries[i].Timestamp.Equal(entries[j].Timestamp) {
			return entries[i].Timestamp.Before(entries[j].Timestamp)
		}
		return entries[i].Seq < entries[j].Seq
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Winner returns the rank-1 entry, or nil for an empty ranking.
func Winner(entries []Entry) *Entry {
	if len(entries) == 0 {
		return nil
	}
	return &entries[0]
}

// RankOf returns the bidder's rank and the total number of ranked bidders.
// A zero rank means the bidder holds no open bid in the ledger.
func RankOf(entries []Entry, bidderID string) (int, int) {
	for _, e := range entries {
		if e.BidderID == bidderID {
			return e.Rank, len(entries)
		}
	}
	return 0, len(entries)
}

func earlier(a, b *domain.Bid) bool {
	if !a.Timestamp.Equal(b.Timestamp) {
		return a.Timestamp.Before(b.Timestamp)
	}
	return a.Seq < b.Seq
}
