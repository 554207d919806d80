package reconciler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	reconciliationDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_catalog_reconciliation_duration",
		Help: "The amount of time it took to run a catalog reconciliation pass",
	})

	storesProcessedCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reporting_gateway_catalog_stores_processed_counter",
		Help: "The number of stores processed by catalog reconciliation passes",
	})
)
