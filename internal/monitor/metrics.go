package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// CyclesTotal tracks completed monitor cycles across all workers.
	CyclesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_monitor_cycles_total",
		Help: "Total number of monitor cycles started",
	})

	// StockChecksTotal tracks stock-check requests by endpoint.
	StockChecksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restock_sniper_monitor_stock_checks_total",
			Help: "Total number of stock-check requests issued",
		},
		[]string{"endpoint"},
	)

	// SessionValidationsTotal tracks session validation attempts.
	SessionValidationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_monitor_session_validations_total",
		Help: "Total number of session validation attempts",
	})

	// CaptchaChallengesTotal tracks challenge pages served to monitors.
	CaptchaChallengesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_monitor_captcha_challenges_total",
		Help: "Total number of CAPTCHA challenge pages encountered",
	})

	// CaptchasSolvedTotal tracks challenges cleared and resubmitted.
	CaptchasSolvedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_monitor_captchas_solved_total",
		Help: "Total number of CAPTCHA challenges solved and resubmitted",
	})

	// StalePagesTotal tracks pages skipped for carrying the wrong product.
	StalePagesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_monitor_stale_pages_total",
		Help: "Total number of pages skipped due to product identifier mismatch",
	})

	// OffersQueuedTotal tracks qualified offers handed to checkout.
	OffersQueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_monitor_offers_queued_total",
		Help: "Total number of qualified offers handed to the checkout queue",
	})
)
