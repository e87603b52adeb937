package qualify

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// OffersEvaluatedTotal tracks offers run through the filter pipeline.
	OffersEvaluatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_offers_evaluated_total",
		Help: "Total number of seller offers evaluated",
	})

	// OffersQualifiedTotal tracks offers that cleared every stage.
	OffersQualifiedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_offers_qualified_total",
		Help: "Total number of seller offers that qualified",
	})

	// OffersRejectedTotal tracks rejected offers by failing stage.
	OffersRejectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "restock_sniper_offers_rejected_total",
			Help: "Total number of seller offers rejected",
		},
		[]string{"reason"},
	)
)
