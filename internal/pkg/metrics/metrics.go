// Package metrics holds the Prometheus collectors shared by the HTTP layer
// and the order services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequestsTotal counts requests by method, route pattern and status.
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greengrocer_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// HTTPRequestDuration tracks request latency by method, route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "greengrocer_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path", "status"},
	)

	orderOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "greengrocer_order_operations_total",
			Help: "Total number of order operations",
		},
		[]string{"operation", "status"},
	)

	// StockConflicts counts checkouts that lost the stock race at commit time.
	StockConflicts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greengrocer_checkout_stock_conflicts_total",
			Help: "Checkouts rejected because stock ran out between cart and commit",
		},
	)

	// CarrierRaceLosses counts carrier claims that lost to another carrier.
	CarrierRaceLosses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "greengrocer_carrier_assign_conflicts_total",
			Help: "Carrier claims on orders that were already taken",
		},
	)
)

// RecordOrderOperation records the outcome of an order-level operation such
// as checkout, claim, deliver or cancel.
func RecordOrderOperation(operation string, success bool) {
	status := "success"
	if !success {
		status = "error"
	}
	orderOperations.WithLabelValues(operation, status).Inc()
}
