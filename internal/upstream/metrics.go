package upstream

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	upstreamRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name: "reporting_gateway_upstream_request_duration",
		Help: "The amount of time it took to perform an upstream service request",
	}, []string{"service"})

	upstreamRequestFailureCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reporting_gateway_upstream_request_failure_counter",
		Help: "The number of failed upstream service requests",
	}, []string{"service"})
)
