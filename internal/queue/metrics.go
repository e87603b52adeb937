package queue

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	// OffersEnqueuedTotal tracks offers handed to the checkout consumer.
	OffersEnqueuedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_checkout_queue_enqueued_total",
		Help: "Total number of qualified offers enqueued for checkout",
	})

	// OffersDroppedTotal tracks offers dropped because the buffer was full.
	OffersDroppedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "restock_sniper_checkout_queue_dropped_total",
		Help: "Total number of qualified offers dropped on a full queue",
	})

	// QueueDepth tracks the buffered offer count.
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "restock_sniper_checkout_queue_depth",
		Help: "Number of qualified offers currently buffered",
	})
)
