package scheduler

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	jobRunCounter = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reporting_gateway_job_run_counter",
		Help: "The number of scheduled job passes by outcome",
	}, []string{"job", "outcome"})
)
