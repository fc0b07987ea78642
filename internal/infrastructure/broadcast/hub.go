// Package broadcast fans auction events out to per-auction rooms and to
// global admin/analytics subscribers. Delivery order within one room
// follows the event sequence number assigned at commit time, not the
// order in which publishers happen to call in.
package broadcast

import (
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/scraplot/auction-service/internal/domain"
	"github.com/scraplot/auction-service/internal/infrastructure/metrics"
)

const (
	defaultBuffer = 64
	// gapWait bounds how long a room waits for a missing sequence number
	// before skipping it. A gap can only appear if a publisher died
	// between commit and publish; consumers re-fetch state anyway.
	gapWait = 2 * time.Second
)

type Subscriber struct {
	C         chan domain.AuctionEvent
	id        string
	auctionID string
	global    bool
}

type room struct {
	subs    map[*Subscriber]struct{}
	nextSeq int64
	pending map[int64]domain.AuctionEvent
	timer   *time.Timer
}

type Hub struct {
	mu      sync.Mutex
	rooms   map[string]*room
	global  map[*Subscriber]struct{}
	metrics *metrics.AuctionMetrics
}

func NewHub(m *metrics.AuctionMetrics) *Hub {
	return &Hub{
		rooms:   make(map[string]*room),
		global:  make(map[*Subscriber]struct{}),
		metrics: m,
	}
}

// Subscribe attaches a consumer to one auction's room. The consumer owns
// draining sub.C; a consumer that stops draining is dropped rather than
// allowed to stall the room.
func (h *Hub) Subscribe(auctionID string) *Subscriber {
	sub := &Subscriber{
		C:         make(chan domain.AuctionEvent, defaultBuffer),
		id:        uuid.New().String(),
		auctionID: auctionID,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.room(auctionID).subs[sub] = struct{}{}
	return sub
}

// SubscribeGlobal attaches an admin/analytics consumer that receives every
// auction's events.
func (h *Hub) SubscribeGlobal() *Subscriber {
	sub := &Subscriber{
		C:      make(chan domain.AuctionEvent, defaultBuffer),
		id:     uuid.New().String(),
		global: true,
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.global[sub] = struct{}{}
	return sub
}

func (h *Hub) Unsubscribe(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(sub)
}

// Publish enqueues a committed event. Events of one auction are delivered
// in Seq order: an event arriving ahead of its predecessors is parked
// until the gap fills or times out.
func (h *Hub) Publish(event domain.AuctionEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r := h.room(event.AuctionID)
	if event.Seq < r.nextSeq {
		// Already delivered, or a peer replica republished an event we
		// committed ourselves. Drop it.
		return
	}
	if _, dup := r.pending[event.Seq]; dup {
		return
	}
	r.pending[event.Seq] = event
	h.drain(event.AuctionID, r)
}

// drain delivers every consecutive pending event and arms the gap timer
// when something is still parked. Callers hold h.mu.
func (h *Hub) drain(auctionID string, r *room) {
	for {
		event, ok := r.pending[r.nextSeq]
		if !ok {
			break
		}
		delete(r.pending, r.nextSeq)
		r.nextSeq++
		h.deliver(r, event)
	}

	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	if len(r.pending) > 0 {
		r.timer = time.AfterFunc(gapWait, func() { h.skipGap(auctionID) })
	}
}

// skipGap advances past a sequence number that never arrived.
func (h *Hub) skipGap(auctionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	r, ok := h.rooms[auctionID]
	if !ok || len(r.pending) == 0 {
		return
	}
	lowest := int64(0)
	for seq := range r.pending {
		if lowest == 0 || seq < lowest {
			lowest = seq
		}
	}
	slog.Warn("event sequence gap skipped", "auction_id", auctionID, "expected", r.nextSeq, "resumed_at", lowest)
	r.nextSeq = lowest
	h.drain(auctionID, r)
}

func (h *Hub) deliver(r *room, event domain.AuctionEvent) {
	for sub := range r.subs {
		h.send(sub, event)
	}
	for sub := range h.global {
		h.send(sub, event)
	}
}

func (h *Hub) send(sub *Subscriber, event domain.AuctionEvent) {
	select {
	case sub.C <- event:
	default:
		// Slow consumer: drop it so one stalled socket cannot block the
		// room. The client reconnects and re-fetches current state.
		h.remove(sub)
		if h.metrics != nil {
			h.metrics.DroppedSubscribersTotal.Inc()
		}
		slog.Warn("dropped slow subscriber", "subscriber_id", sub.id, "auction_id", sub.auctionID)
	}
}

func (h *Hub) remove(sub *Subscriber) {
	if sub.global {
		if _, ok := h.global[sub]; ok {
			delete(h.global, sub)
			close(sub.C)
		}
		return
	}
	r, ok := h.rooms[sub.auctionID]
	if !ok {
		return
	}
	if _, ok := r.subs[sub]; ok {
		delete(r.subs, sub)
		close(sub.C)
	}
}

func (h *Hub) room(auctionID string) *room {
	r, ok := h.rooms[auctionID]
	if !ok {
		// Revisions start at 1; a room created by a mid-stream subscriber
		// catches up through the gap timer instead of stalling forever.
		r = &room{
			subs:    make(map[*Subscriber]struct{}),
			nextSeq: 1,
			pending: make(map[int64]domain.AuctionEvent),
		}
		h.rooms[auctionID] = r
	}
	return r
}

// SubscriberCount reports how many consumers watch one auction.
func (h *Hub) SubscriberCount(auctionID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	r, ok := h.rooms[auctionID]
	if !ok {
		return 0
	}
	return len(r.subs)
}
