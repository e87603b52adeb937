package proxypool

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// GroupSwitchesTotal tracks proxy group rotations.
	GroupSwitchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_proxy_group_switches_total",
		Help: "Total number of proxy group rotations",
	})

	// ActiveGroup is the 1-based index of the active proxy group.
	ActiveGroup = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "restock_sniper_proxy_active_group",
		Help: "Index of the currently active proxy group",
	})

	// BadProxies tracks proxies currently marked bad in the active group.
	BadProxies = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "restock_sniper_proxy_bad_count",
		Help: "Number of proxies currently marked bad",
	})

	// StaleClaimsTotal tracks claim attempts against rotated-away groups.
	StaleClaimsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_proxy_stale_claims_total",
		Help: "Total number of proxy claims rejected because the group had rotated",
	})
)
