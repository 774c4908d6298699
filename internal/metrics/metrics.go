package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// Ledger operation counters
	PaymentsRecorded = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_payments_recorded_total",
			Help: "Total payments recorded against customer balances",
		},
	)
	PaymentsReversed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_payments_reversed_total",
			Help: "Total payments reversed",
		},
	)
	RolloversTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_rollovers_total",
			Help: "Total billing cycle rollovers by strategy",
		},
		[]string{"strategy"},
	)
	LedgerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_errors_total",
			Help: "Total ledger operation failures by kind",
		},
		[]string{"kind"},
	)
)

func Init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(PaymentsRecorded)
	prometheus.MustRegister(PaymentsReversed)
	prometheus.MustRegister(RolloversTotal)
	prometheus.MustRegister(LedgerErrors)
}
