package proxypool

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Manager owns the proxy-group state machine. Proxies are partitioned into
// groups rotated into active use as a unit; within the active group each
// worker slot claims exactly one proxy. All read-modify-write goes through
// one mutex so the bookkeeping the original kept in ambient shared state has
// a single explicit owner.
type Manager struct {
	groups [][]string
	logger *zap.Logger

	mu         sync.Mutex
	current    int // 1-based group index, 0 when no proxies configured
	switchedAt time.Time
	claimed    map[string]int // proxy -> owning slot
	bad        map[string]struct{}
}

// Config holds manager configuration.
type Config struct {
	// Groups is the configured proxy partition: a list of groups, each an
	// ordered list of proxy URLs. May be empty.
	Groups [][]string

	Logger *zap.Logger
}

// New creates a new proxy group manager.
func New(cfg *Config) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	current := 0
	if len(cfg.Groups) > 0 {
		current = 1
	}

	m := &Manager{
		groups:     cfg.Groups,
		logger:     cfg.Logger,
		current:    current,
		switchedAt: time.Now(),
		claimed:    make(map[string]int),
		bad:        make(map[string]struct{}),
	}

	ActiveGroup.Set(float64(current))

	return m, nil
}

// CurrentGroup returns the 1-based index of the active group, 0 when no
// proxies are configured.
func (m *Manager) CurrentGroup() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// GroupCount returns the number of configured groups.
func (m *Manager) GroupCount() int {
	return len(m.groups)
}

// SlotCount returns the number of worker slots, i.e. the size of the largest
// group. Zero when no proxies are configured.
func (m *Manager) SlotCount() int {
	slots := 0
	for _, g := range m.groups {
		if len(g) > slots {
			slots = len(g)
		}
	}
	return slots
}

// ProxyFor returns the active group's proxy for the given 1-based worker
// slot along with the group index the assignment belongs to. Empty proxy
// with group 0 when no proxies are configured; empty proxy with the current
// group when the slot exceeds the group's size, in which case the worker
// idles until the next rotation rather than contending for a proxy another
// slot already holds.
func (m *Manager) ProxyFor(slot int) (string, int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == 0 {
		return "", 0
	}

	group := m.groups[m.current-1]
	if slot < 1 || slot > len(group) {
		return "", m.current
	}
	return group[slot-1], m.current
}

// SwitchIfDue advances to the next group (wrapping back to 1 after the last)
// once the interval since the previous switch has elapsed. Switching clears
// the claimed set and the bad-proxy set for the outgoing group, letting
// rate-limited IPs cool down. Returns true if a switch happened.
func (m *Manager) SwitchIfDue(interval time.Duration) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.current == 0 || len(m.groups) < 2 {
		return false
	}

	if time.Since(m.switchedAt) < interval {
		return false
	}

	previous := m.current
	m.current = m.current%len(m.groups) + 1
	m.switchedAt = time.Now()
	m.claimed = make(map[string]int)
	m.bad = make(map[string]struct{})

	GroupSwitchesTotal.Inc()
	ActiveGroup.Set(float64(m.current))
	BadProxies.Set(0)

	m.logger.Info("proxy-group-switched",
		zap.Int("from", previous),
		zap.Int("to", m.current))

	return true
}

// Claim registers a proxy as in use by the given slot. It fails when the
// proxy belongs to a stale (already rotated away) group, so a slow worker
// pauses and rechecks instead of hammering a retired group, and when another
// slot already holds the proxy. Reclaiming by the same slot succeeds, which
// is how a replacement worker inherits its predecessor's proxy without a
// window where another worker could take it.
func (m *Manager) Claim(proxy string, group int, slot int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if group != m.current {
		StaleClaimsTotal.Inc()
		return false
	}

	if owner, taken := m.claimed[proxy]; taken && owner != slot {
		return false
	}

	m.claimed[proxy] = slot
	return true
}

// Release drops a slot's claim. A no-op when the slot does not hold the
// proxy, e.g. after the group already rotated.
func (m *Manager) Release(proxy string, slot int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if owner, taken := m.claimed[proxy]; taken && owner == slot {
		delete(m.claimed, proxy)
	}
}

// RecordFailure marks a proxy bad after a fail-status response.
func (m *Manager) RecordFailure(proxy string, status int) {
	if proxy == "" {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, already := m.bad[proxy]; !already {
		m.bad[proxy] = struct{}{}
		BadProxies.Set(float64(len(m.bad)))
		m.logger.Warn("proxy-marked-bad",
			zap.String("proxy", proxy),
			zap.Int("status", status))
	}
}

// RecordSuccess evicts a proxy from the bad set on a 200.
func (m *Manager) RecordSuccess(proxy string, status int) {
	if proxy == "" || status != 200 {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, present := m.bad[proxy]; present {
		delete(m.bad, proxy)
		BadProxies.Set(float64(len(m.bad)))
	}
}

// IsBad reports whether a proxy is currently marked bad.
func (m *Manager) IsBad(proxy string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, bad := m.bad[proxy]
	return bad
}

// Status is a point-in-time snapshot for the status endpoint.
type Status struct {
	CurrentGroup int       `json:"current_group"`
	GroupCount   int       `json:"group_count"`
	SwitchedAt   time.Time `json:"switched_at"`
	ClaimedCount int       `json:"claimed_count"`
	BadCount     int       `json:"bad_count"`
}

// GetStatus returns the current group state.
func (m *Manager) GetStatus() Status {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Status{
		CurrentGroup: m.current,
		GroupCount:   len(m.groups),
		SwitchedAt:   m.switchedAt,
		ClaimedCount: len(m.claimed),
		BadCount:     len(m.bad),
	}
}
