package captcha

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// SolvesTotal tracks successfully solved challenges.
	SolvesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_captcha_solves_total",
		Help: "Total number of CAPTCHA challenges solved",
	})

	// SolvesUnsolvedTotal tracks challenges the solver gave up on.
	SolvesUnsolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_captcha_unsolved_total",
		Help: "Total number of CAPTCHA challenges reported as not solved",
	})

	// SolveErrorsTotal tracks solver transport and protocol errors.
	SolveErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_captcha_solve_errors_total",
		Help: "Total number of CAPTCHA solver errors",
	})

	// SolveDurationSeconds tracks solve latency.
	SolveDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "restock_sniper_captcha_solve_duration_seconds",
		Help:    "Duration of CAPTCHA solve requests",
		Buckets: prometheus.DefBuckets,
	})
)
