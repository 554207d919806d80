package sync

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	rosterSyncDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_roster_sync_duration",
		Help: "The amount of time it took to run a roster synchronization pass",
	})

	rosterRecordsCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reporting_gateway_roster_records_counter",
		Help: "The number of roster records upserted",
	}, []string{"role"})

	settlementAnalysisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name: "reporting_gateway_settlement_analysis_duration",
		Help: "The amount of time it took to run a settlement analysis pass",
	})

	paidCartsCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reporting_gateway_settlement_paid_carts_counter",
		Help: "The number of paid carts folded into settlement reports",
	})

	syncEventWriteFailureCounter = promauto.NewCounter(prometheus.CounterOpts{
		Name: "reporting_gateway_sync_event_write_failure_counter",
		Help: "The number of sync lifecycle events that could not be written to kafka",
	})
)
