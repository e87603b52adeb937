package offercache

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/cache"
)

const (
	keyPrefix = "offer-ids:"
	entryTTL  = 24 * time.Hour
)

// Source serves previously observed listing ids per item, letting workers
// hit the fast stock-check endpoint instead of the full listing page. Ids
// for one item are cycled so a dead listing id does not pin the worker.
type Source struct {
	cache  cache.Cache
	logger *zap.Logger

	mu      sync.Mutex
	cursors map[string]int
}

// Config holds source configuration.
type Config struct {
	// Seed is the offer-id cache file contents: item id to known listing ids.
	Seed map[string][]string

	Cache  cache.Cache
	Logger *zap.Logger
}

// New creates a source seeded from the offer-id cache file.
func New(cfg *Config) (*Source, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Cache == nil {
		return nil, fmt.Errorf("cache cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	s := &Source{
		cache:   cfg.Cache,
		logger:  cfg.Logger,
		cursors: make(map[string]int),
	}

	for itemID, listingIDs := range cfg.Seed {
		if len(listingIDs) > 0 {
			s.cache.Set(keyPrefix+itemID, listingIDs, entryTTL)
		}
	}

	return s, nil
}

// Next returns the next known listing id for an item, cycling through the
// cached list. ok is false when nothing is cached for the item.
func (s *Source) Next(itemID string) (string, bool) {
	value, found := s.cache.Get(keyPrefix + itemID)
	if !found {
		return "", false
	}

	listingIDs, ok := value.([]string)
	if !ok || len(listingIDs) == 0 {
		return "", false
	}

	s.mu.Lock()
	cursor := s.cursors[itemID]
	s.cursors[itemID] = (cursor + 1) % len(listingIDs)
	s.mu.Unlock()

	return listingIDs[cursor%len(listingIDs)], true
}

// Record remembers listing ids observed on a parsed page so later cycles can
// take the fast path.
func (s *Source) Record(itemID string, listingIDs []string) {
	if len(listingIDs) == 0 {
		return
	}

	s.cache.Set(keyPrefix+itemID, listingIDs, entryTTL)
	s.logger.Debug("offer-ids-recorded",
		zap.String("item-id", itemID),
		zap.Int("count", len(listingIDs)))
}
