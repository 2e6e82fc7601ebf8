// Package metrics exposes prometheus counters for the checkout API.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type ServerMetrics struct {
	Requests     *prometheus.CounterVec
	LatencyMS    *prometheus.HistogramVec
	OrdersTotal  *prometheus.CounterVec
	UploadsTotal *prometheus.CounterVec
}

func NewServerMetrics(service string) *ServerMetrics {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: service,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests.",
	}, []string{"handler", "status"})
	latency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "checkout",
		Subsystem: service,
		Name:      "http_request_duration_ms",
		Help:      "HTTP request latency in milliseconds.",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
	}, []string{"handler"})
	orders := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: service,
		Name:      "orders_total",
		Help:      "Orders written, by status.",
	}, []string{"status"})
	uploadsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkout",
		Subsystem: service,
		Name:      "uploads_total",
		Help:      "Files stored, by kind.",
	}, []string{"kind"})

	prometheus.MustRegister(requests, latency, orders, uploadsTotal)
	return &ServerMetrics{
		Requests:     requests,
		LatencyMS:    latency,
		OrdersTotal:  orders,
		UploadsTotal: uploadsTotal,
	}
}

func Handler() http.Handler {
	return promhttp.Handler()
}
