package items

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/types"
)

// Pool hands monitored items to workers in fair round-robin order. The
// circular cursor is mutex-guarded: workers run on separate goroutines, so
// the original cooperative-scheduling atomicity must be made explicit here.
type Pool struct {
	logger *zap.Logger

	mu     sync.Mutex
	items  []*types.MonitoredItem
	cursor int
}

// NewPool creates a pool over the configured item set.
func NewPool(items []*types.MonitoredItem, logger *zap.Logger) (*Pool, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("item set cannot be empty")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := seen[item.ID]; dup {
			return nil, fmt.Errorf("duplicate item id %q", item.ID)
		}
		seen[item.ID] = struct{}{}
	}

	return &Pool{
		logger: logger,
		items:  items,
	}, nil
}

// Next returns the next item in cyclic order. Every item is returned exactly
// once per full rotation, so no listing is starved. Returns nil once the
// pool has been emptied by purchases.
func (p *Pool) Next() *types.MonitoredItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.items) == 0 {
		return nil
	}

	if p.cursor >= len(p.items) {
		p.cursor = 0
	}

	item := p.items[p.cursor]
	p.cursor = (p.cursor + 1) % len(p.items)

	ItemsDispatchedTotal.Inc()

	return item
}

// Remove drops an item after a successful purchase. In-flight iteration
// stays well-defined: the cursor is clamped, never invalidated.
func (p *Pool) Remove(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	for i, item := range p.items {
		if item.ID != id {
			continue
		}

		p.items = append(p.items[:i], p.items[i+1:]...)
		if i < p.cursor {
			p.cursor--
		}
		if p.cursor >= len(p.items) {
			p.cursor = 0
		}

		PoolSize.Set(float64(len(p.items)))
		p.logger.Info("item-removed-from-pool",
			zap.String("item-id", id),
			zap.Int("remaining", len(p.items)))

		return true
	}

	return false
}

// Len returns the number of items still monitored.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.items)
}

// Snapshot returns a copy of the current item list for status endpoints.
func (p *Pool) Snapshot() []*types.MonitoredItem {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]*types.MonitoredItem, len(p.items))
	copy(out, p.items)
	return out
}
