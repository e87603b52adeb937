package supervisor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// ActiveWorkers tracks currently running monitor workers.
	ActiveWorkers = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "restock_sniper_supervisor_active_workers",
		Help: "Number of monitor workers currently running",
	})

	// RespawnsTotal tracks replacement workers spawned after failures.
	RespawnsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_supervisor_respawns_total",
		Help: "Total number of monitor workers replaced after failure",
	})
)
