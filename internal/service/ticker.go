package service

import (
	"sync"

	"rateguard/internal/models"

	"go.uber.org/zap"
)

// TickerHub fans rate updates out to dashboard subscribers. Delivery is
// at-least-once: new subscribers get a snapshot of the latest quotes, and
// repeated snapshots are not deduplicated, so handlers must be idempotent.
type TickerHub struct {
	mu          sync.RWMutex
	subscribers map[int]chan models.RateQuote
	latest      map[string]models.RateQuote
	nextID      int
	logger      *zap.Logger
}

func NewTickerHub(logger *zap.Logger) *TickerHub {
	return &TickerHub{
		subscribers: make(map[int]chan models.RateQuote),
		latest:      make(map[string]models.RateQuote),
		logger:      logger,
	}
}

// Subscribe registers a listener and returns its channel plus an unsubscribe
// handle. The current snapshot is queued onto the channel before any new
// updates.
func (h *TickerHub) Subscribe() (<-chan models.RateQuote, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	id := h.nextID
	h.nextID++

	// Buffer covers the snapshot plus a burst of updates; slow consumers
	// drop rather than block the publisher.
	ch := make(chan models.RateQuote, len(TickerPairs)*2+8)
	h.subscribers[id] = ch

	for _, quote := range h.latest {
		select {
		case ch <- quote:
		default:
		}
	}

	unsubscribe := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subscribers[id]; ok {
			delete(h.subscribers, id)
			close(sub)
		}
	}

	return ch, unsubscribe
}

// Publish records the quote as the latest for its pair and delivers it to
// every subscriber.
func (h *TickerHub) Publish(quote models.RateQuote) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.latest[quote.Pair] = quote

	for id, ch := range h.subscribers {
		select {
		case ch <- quote:
		default:
			h.logger.Warn("Ticker subscriber lagging, dropping update",
				zap.Int("subscriber", id),
				zap.String("pair", quote.Pair),
			)
		}
	}
}

// Snapshot returns the latest quote per pair.
func (h *TickerHub) Snapshot() []models.RateQuote {
	h.mu.RLock()
	defer h.mu.RUnlock()

	quotes := make([]models.RateQuote, 0, len(h.latest))
	for _, quote := range h.latest {
		quotes = append(quotes, quote)
	}
	return quotes
}

// SubscriberCount reports active listeners.
func (h *TickerHub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
