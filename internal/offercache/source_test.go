package offercache

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mselser95/restock-sniper/pkg/cache"
)

func newSource(t *testing.T, seed map[string][]string) *Source {
	t.Helper()

	c, err := cache.NewRistrettoCache(&cache.RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)
	t.Cleanup(c.Close)

	s, err := New(&Config{
		Seed:   seed,
		Cache:  c,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	if rc, ok := c.(*cache.RistrettoCache); ok {
		rc.Wait()
	}

	return s
}

func TestNextCyclesThroughSeededIDs(t *testing.T) {
	s := newSource(t, map[string][]string{
		"ITEM-1": {"l-a", "l-b"},
	})

	id, ok := s.Next("ITEM-1")
	require.True(t, ok)
	assert.Equal(t, "l-a", id)

	id, _ = s.Next("ITEM-1")
	assert.Equal(t, "l-b", id)

	id, _ = s.Next("ITEM-1")
	assert.Equal(t, "l-a", id, "wraps back to the first id")
}

func TestNextMissingItem(t *testing.T) {
	s := newSource(t, nil)

	_, ok := s.Next("UNKNOWN")
	assert.False(t, ok)
}

func TestRecordMakesFastPathAvailable(t *testing.T) {
	s := newSource(t, nil)

	s.Record("ITEM-2", []string{"l-x"})
	if rc, ok := s.cache.(*cache.RistrettoCache); ok {
		rc.Wait()
	}

	id, ok := s.Next("ITEM-2")
	require.True(t, ok)
	assert.Equal(t, "l-x", id)
}
