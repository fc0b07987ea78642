package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrAuctionNotFound = errors.New("auction not found")
	ErrBidNotFound     = errors.New("bid not found")
	ErrNoWinningBid    = errors.New("auction has no winning bid")
	ErrForbidden       = errors.New("operation requires admin role")
)

// ValidationError rejects a bid synchronously with no state change.
// CurrentBid is included so the caller can render "outbid by X" without a
// second round trip.
type ValidationError struct {
	Reason     string
	CurrentBid decimal.Decimal
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("bid rejected: %s (current bid %s)", e.Reason, e.CurrentBid.String())
}

// StateConflictError signals that the auction is not in a status that
// permits the requested operation. The caller must refresh state before
// retrying.
type StateConflictError struct {
	Status     AuctionStatus
	CurrentBid decimal.Decimal
	Reason     string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("state conflict: %s (status %s, current bid %s)", e.Reason, e.Status, e.CurrentBid.String())
}

// ContentionTimeoutError means the per-auction lock was not acquired in
// time. Nothing was applied; the request is safe to retry.
type ContentionTimeoutError struct {
	AuctionID string
}

func (e *ContentionTimeoutError) Error() string {
	return fmt.Sprintf("auction %s busy, retry", e.AuctionID)
}

func IsRetryable(err error) bool {
	var ct *ContentionTimeoutError
	return errors.As(err, &ct)
}
