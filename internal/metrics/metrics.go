package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts HTTP requests by method, path and status
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockledger_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration observes request latency by method and path
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stockledger_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// StockMovementsTotal counts committed stock movements by type
	StockMovementsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stockledger_movements_total",
			Help: "Total number of committed stock movements",
		},
		[]string{"movement_type"},
	)

	// LedgerEntriesTotal counts ledger entries appended
	LedgerEntriesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "stockledger_ledger_entries_total",
			Help: "Total number of stock ledger entries appended",
		},
	)
)
