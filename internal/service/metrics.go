package service

import "github.com/prometheus/client_golang/prometheus"

var (
	settlementsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "settlements_total",
			Help: "Settlement outcomes by result: success, pending_action, or error type.",
		},
		[]string{"result"},
	)

	// Compensating cancels that failed leave a captured-nothing,
	// minted-nothing intent dangling on the processor; alert on this.
	compensationFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "settlement_compensation_failures_total",
			Help: "Compensating intent cancellations that failed.",
		},
	)
)

func init() {
	prometheus.MustRegister(settlementsTotal, compensationFailures)
}
