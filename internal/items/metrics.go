package items

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ItemsDispatchedTotal tracks round-robin dispatches to workers.
	ItemsDispatchedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_items_dispatched_total",
		Help: "Total number of items handed to monitor workers",
	})

	// PoolSize tracks the number of items still monitored.
	PoolSize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "restock_sniper_item_pool_size",
		Help: "Number of items currently in the monitoring pool",
	})
)
