// Package metrics registers the Prometheus collectors for the book service.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	OrdersAcceptedTotal  = prometheus.NewCounter(prometheus.CounterOpts{Name: "book_orders_accepted_total", Help: "Orders accepted into a book"})
	OrdersCancelledTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "book_orders_cancelled_total", Help: "Orders removed by cancel"})
	OrdersModifiedTotal  = prometheus.NewCounter(prometheus.CounterOpts{Name: "book_orders_modified_total", Help: "In-place quantity reductions"})
	OrderRejectsTotal    = prometheus.NewCounterVec(prometheus.CounterOpts{Name: "book_order_rejects_total", Help: "Rejected operations by reason"}, []string{"reason"})
	ApplyLatency         = prometheus.NewHistogram(prometheus.HistogramOpts{Name: "book_apply_latency_seconds", Help: "Wall time of one mutating operation including WAL append", Buckets: prometheus.ExponentialBuckets(1e-6, 4, 12)})
	RestingOrders        = prometheus.NewGaugeVec(prometheus.GaugeOpts{Name: "book_resting_orders", Help: "Resting orders per symbol"}, []string{"symbol"})
	EventsPublishedTotal = prometheus.NewCounter(prometheus.CounterOpts{Name: "book_events_published_total", Help: "Events acknowledged by the broker"})
	EventsPendingScan    = prometheus.NewGauge(prometheus.GaugeOpts{Name: "book_events_pending", Help: "Outbox records awaiting broker acknowledgement at last scan"})
)

func Init(logger zerolog.Logger) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	toRegister := []prometheus.Collector{
		OrdersAcceptedTotal, OrdersCancelledTotal, OrdersModifiedTotal,
		OrderRejectsTotal, ApplyLatency, RestingOrders,
		EventsPublishedTotal, EventsPendingScan,
		collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	}
	for _, c := range toRegister {
		_ = reg.Register(c)
	}
	logger.Info().Msg("prometheus metrics initialized")
	return reg
}

func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
}
