package checkout

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AttemptsTotal tracks purchase attempts started.
	AttemptsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_checkout_attempts_total",
		Help: "Total number of purchase attempts started",
	})

	// PurchasesTotal tracks finished attempts by outcome.
	PurchasesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restock_sniper_checkout_purchases_total",
			Help: "Total number of finished purchase attempts",
		},
		[]string{"outcome"},
	)

	// CaptchaChallengesTotal tracks challenges hit during the reserve phase.
	CaptchaChallengesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_checkout_captcha_challenges_total",
		Help: "Total number of CAPTCHA challenges during reservation",
	})

	// PhaseDurationSeconds tracks reserve-plus-commit latency.
	PhaseDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "restock_sniper_checkout_duration_seconds",
		Help:    "Duration of a full reserve and commit cycle",
		Buckets: prometheus.DefBuckets,
	})
)
