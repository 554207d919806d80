package connection

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionAttemptCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reporting_gateway_connection_attempt_counter",
		Help: "The number of connection attempts made per upstream connection",
	}, []string{"connection"})

	connectionExhaustedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reporting_gateway_connection_retries_exhausted_counter",
		Help: "The number of times the bounded retry budget was exhausted per upstream connection",
	}, []string{"connection"})
)
