package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// AuctionMetrics holds every metric of the bidding and settlement engine.
type AuctionMetrics struct {
	BidsPlacedTotal      prometheus.Counter
	BidsRejectedTotal    prometheus.CounterVec
	BidAdmissionDuration prometheus.Histogram
	LockContentionTotal  prometheus.Counter

	AuctionsCreatedTotal prometheus.Counter
	AuctionsClosedTotal  prometheus.CounterVec
	AuctionsSettledTotal prometheus.Counter
	TokenOverdueTotal    prometheus.Counter

	EventsBroadcastTotal    prometheus.CounterVec
	DroppedSubscribersTotal prometheus.Counter
}

func NewAuctionMetrics() *AuctionMetrics {
	return &AuctionMetrics{
		BidsPlacedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "bids_placed_total",
				Help: "Total number of accepted bids",
			},
		),

		BidsRejectedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bids_rejected_total",
				Help: "Total number of rejected bids by rejection reason",
			},
			[]string{"reason"},
		),

		BidAdmissionDuration: promauto.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "bid_admission_duration_seconds",
				Help:    "Time spent inside the per-auction admission critical section",
				Buckets: prometheus.ExponentialBuckets(0.001, 2, 12),
			},
		),

		LockContentionTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auction_lock_contention_total",
				Help: "Total number of requests that timed out waiting for an auction lock",
			},
		),

		AuctionsCreatedTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auctions_created_total",
				Help: "Total number of created auctions",
			},
		),

		AuctionsClosedTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auctions_closed_total",
				Help: "Total number of closed auctions by trigger (clock or admin)",
			},
			[]string{"trigger"},
		),

		AuctionsSettledTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auctions_settled_total",
				Help: "Total number of admin-approved settlements",
			},
		),

		TokenOverdueTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "token_overdue_total",
				Help: "Total number of auctions flagged with an overdue token payment",
			},
		),

		EventsBroadcastTotal: *promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "auction_events_broadcast_total",
				Help: "Total number of events fanned out to subscribers by event type",
			},
			[]string{"type"},
		),

		DroppedSubscribersTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "auction_dropped_subscribers_total",
				Help: "Total number of subscribers dropped for not keeping up with the event stream",
			},
		),
	}
}
