package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestCache(t *testing.T) *RistrettoCache {
	t.Helper()

	c, err := NewRistrettoCache(&RistrettoConfig{
		NumCounters: 1000,
		MaxCost:     100,
		BufferItems: 64,
		Logger:      zap.NewNop(),
	})
	require.NoError(t, err)

	rc, ok := c.(*RistrettoCache)
	require.True(t, ok)
	t.Cleanup(rc.Close)

	return rc
}

func TestSetAndGet(t *testing.T) {
	c := newTestCache(t)

	ok := c.Set("offer-ids:B08XYZ1234", []string{"listing-1", "listing-2"}, time.Minute)
	require.True(t, ok)
	c.Wait()

	value, found := c.Get("offer-ids:B08XYZ1234")
	require.True(t, found)
	assert.Equal(t, []string{"listing-1", "listing-2"}, value)
}

func TestGetMissing(t *testing.T) {
	c := newTestCache(t)

	_, found := c.Get("offer-ids:UNKNOWN")
	assert.False(t, found)
}

func TestDelete(t *testing.T) {
	c := newTestCache(t)

	c.Set("k", "v", time.Minute)
	c.Wait()
	c.Delete("k")
	c.Wait()

	_, found := c.Get("k")
	assert.False(t, found)
}

func TestClear(t *testing.T) {
	c := newTestCache(t)

	c.Set("a", 1, time.Minute)
	c.Set("b", 2, time.Minute)
	c.Wait()
	c.Clear()

	_, foundA := c.Get("a")
	_, foundB := c.Get("b")
	assert.False(t, foundA)
	assert.False(t, foundB)
}
