package queue

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/types"
)

// CheckoutQueue is the FIFO hand-off between monitor workers and the single
// checkout consumer. The buffer may hold more than one qualified offer, but
// the consumer only ever acts on one at a time, in arrival order.
type CheckoutQueue struct {
	ch     chan *types.QualifiedOffer
	logger *zap.Logger

	closeOnce sync.Once
}

// New creates a queue with the given buffer size.
func New(size int, logger *zap.Logger) (*CheckoutQueue, error) {
	if size <= 0 {
		return nil, fmt.Errorf("queue size must be positive")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &CheckoutQueue{
		ch:     make(chan *types.QualifiedOffer, size),
		logger: logger,
	}, nil
}

// Enqueue hands a qualified offer to the consumer without blocking the
// producing worker. A full buffer drops the offer; the item stays in the
// pool, so the next monitoring cycle will rediscover it.
func (q *CheckoutQueue) Enqueue(offer *types.QualifiedOffer) bool {
	select {
	case q.ch <- offer:
		OffersEnqueuedTotal.Inc()
		QueueDepth.Set(float64(len(q.ch)))
		q.logger.Info("offer-enqueued",
			zap.String("offer-id", offer.ID),
			zap.String("item-id", offer.ItemID),
			zap.String("listing-id", offer.ListingID))
		return true
	default:
		OffersDroppedTotal.Inc()
		q.logger.Warn("checkout-queue-full",
			zap.String("offer-id", offer.ID),
			zap.String("item-id", offer.ItemID))
		return false
	}
}

// Out exposes the consumer side of the queue.
func (q *CheckoutQueue) Out() <-chan *types.QualifiedOffer {
	return q.ch
}

// Depth returns the number of buffered offers.
func (q *CheckoutQueue) Depth() int {
	return len(q.ch)
}

// Close closes the hand-off channel. Safe to call more than once.
func (q *CheckoutQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.ch)
	})
}
