package domain

import "time"

// BidRepository is the append-only per-auction bid ledger. The mutating
// methods commit the ledger change and the owning auction row as one
// transaction; callers serialize them through the per-auction lock.
type BidRepository interface {
	// AppendBid inserts a freshly admitted bid, clears the winning flags of
	// prevWinningBidID (if set, marking it outbid) and persists the updated
	// auction aggregate, all atomically.
	AppendBid(auction *Auction, bid *Bid, prevWinningBidID string) error

	// CloseLedger freezes the ledger when the auction ends: the won bid
	// keeps isWinning=true and status WON, every other open bid becomes
	// LOST, and the auction row is persisted with its final status.
	CloseLedger(auction *Auction, wonBidID string, closedAt time.Time) error

	// ApplyLedgerRevision persists an admin-revised ledger: the full bid
	// set with re-derived flags plus the re-derived auction aggregate, with
	// deletedBidIDs removed, atomically.
	ApplyLedgerRevision(auction *Auction, bids []*Bid, deletedBidIDs []string) error

	GetBidByID(bidID string) (*Bid, error)
	// GetBidsByAuctionID returns the ledger in sequence order.
	GetBidsByAuctionID(auctionID string) ([]*Bid, error)
	GetWinningBid(auctionID string) (*Bid, error)
	// MaxSeq returns the highest seq held in the auction's ledger, 0 when
	// the ledger is empty. Admission derives the next seq from it; the bid
	// count cannot serve after admin deletions shrink the ledger.
	MaxSeq(auctionID string) (int64, error)
	GetBidsByBidderID(bidderID string, page, limit int32) ([]*Bid, int64, error)
}
