package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// FailuresRecordedTotal tracks failing responses fed into counters.
	FailuresRecordedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_failures_recorded_total",
		Help: "Total number of failing responses recorded across all workers",
	})

	// CountersTrippedTotal tracks counters reaching their threshold.
	CountersTrippedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_failure_counters_tripped_total",
		Help: "Total number of failure counters that reached their threshold",
	})
)
