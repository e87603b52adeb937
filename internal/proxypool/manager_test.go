package proxypool

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newManager(t *testing.T, groups [][]string) *Manager {
	t.Helper()

	m, err := New(&Config{
		Groups: groups,
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)

	return m
}

func twoGroups() [][]string {
	return [][]string{
		{"http://p1:8080", "http://p2:8080"},
		{"http://p3:8080", "http://p4:8080"},
	}
}

func TestNewValidation(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)

	_, err = New(&Config{})
	assert.Error(t, err, "missing logger")
}

func TestNoProxiesConfigured(t *testing.T) {
	m := newManager(t, nil)

	assert.Equal(t, 0, m.CurrentGroup())
	assert.Equal(t, 0, m.SlotCount())

	proxy, group := m.ProxyFor(1)
	assert.Empty(t, proxy)
	assert.Equal(t, 0, group)

	assert.False(t, m.SwitchIfDue(0))
}

func TestSwitchIfDueAdvancesAndWraps(t *testing.T) {
	m := newManager(t, twoGroups())
	require.Equal(t, 1, m.CurrentGroup())

	// Not yet due.
	assert.False(t, m.SwitchIfDue(time.Hour))
	assert.Equal(t, 1, m.CurrentGroup())

	// Due: advances by exactly one.
	assert.True(t, m.SwitchIfDue(0))
	assert.Equal(t, 2, m.CurrentGroup())

	// Wraps from the last group back to 1.
	assert.True(t, m.SwitchIfDue(0))
	assert.Equal(t, 1, m.CurrentGroup())
}

func TestSwitchClearsClaimsAndBadSet(t *testing.T) {
	m := newManager(t, twoGroups())

	require.True(t, m.Claim("http://p1:8080", 1, 0))
	m.RecordFailure("http://p2:8080", 503)
	require.True(t, m.IsBad("http://p2:8080"))

	require.True(t, m.SwitchIfDue(0))

	assert.False(t, m.IsBad("http://p2:8080"))
	assert.Equal(t, 0, m.GetStatus().ClaimedCount)
}

func TestClaimRejectsStaleGroup(t *testing.T) {
	m := newManager(t, twoGroups())
	require.True(t, m.SwitchIfDue(0))

	// Group 1 has rotated away; claims against it must pause the worker.
	assert.False(t, m.Claim("http://p1:8080", 1, 0))
	assert.True(t, m.Claim("http://p3:8080", 2, 0))
}

func TestClaimExclusiveAcrossSlots(t *testing.T) {
	m := newManager(t, twoGroups())

	require.True(t, m.Claim("http://p1:8080", 1, 0))
	assert.False(t, m.Claim("http://p1:8080", 1, 1), "another slot may not steal a claim")

	// Same slot reclaiming is how a replacement worker inherits the proxy.
	assert.True(t, m.Claim("http://p1:8080", 1, 0))
}

func TestReleaseFreesClaim(t *testing.T) {
	m := newManager(t, twoGroups())

	require.True(t, m.Claim("http://p1:8080", 1, 0))
	m.Release("http://p1:8080", 0)

	assert.True(t, m.Claim("http://p1:8080", 1, 1))
}

func TestBadProxyInsertAndEvict(t *testing.T) {
	m := newManager(t, twoGroups())

	m.RecordFailure("http://p1:8080", 503)
	assert.True(t, m.IsBad("http://p1:8080"))

	// Non-200 success statuses do not evict.
	m.RecordSuccess("http://p1:8080", 404)
	assert.True(t, m.IsBad("http://p1:8080"))

	m.RecordSuccess("http://p1:8080", 200)
	assert.False(t, m.IsBad("http://p1:8080"))
}

func TestProxyForSlotAssignment(t *testing.T) {
	m := newManager(t, twoGroups())

	proxy, group := m.ProxyFor(1)
	assert.Equal(t, "http://p1:8080", proxy)
	assert.Equal(t, 1, group)

	proxy, _ = m.ProxyFor(2)
	assert.Equal(t, "http://p2:8080", proxy)

	// A slot past the group's size idles instead of sharing a proxy.
	proxy, group = m.ProxyFor(3)
	assert.Empty(t, proxy)
	assert.Equal(t, 1, group)
}

func TestProxyForUnevenGroupsIdleSlot(t *testing.T) {
	m := newManager(t, [][]string{
		{"http://p1:8080", "http://p2:8080", "http://p3:8080"},
		{"http://p4:8080"},
	})
	require.Equal(t, 3, m.SlotCount())

	// Every slot in the large group has its own proxy.
	seen := map[string]bool{}
	for slot := 1; slot <= 3; slot++ {
		proxy, group := m.ProxyFor(slot)
		require.Equal(t, 1, group)
		require.NotEmpty(t, proxy)
		assert.False(t, seen[proxy], "slots must not share a proxy")
		seen[proxy] = true
	}

	// In the small group only slot 1 is assigned; the rest idle.
	require.True(t, m.SwitchIfDue(0))

	proxy, group := m.ProxyFor(1)
	assert.Equal(t, "http://p4:8080", proxy)
	assert.Equal(t, 2, group)

	for slot := 2; slot <= 3; slot++ {
		proxy, group = m.ProxyFor(slot)
		assert.Empty(t, proxy, "slot %d has no proxy in a one-proxy group", slot)
		assert.Equal(t, 2, group)
	}
}
