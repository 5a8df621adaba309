package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups the service collectors. Labels never carry tenant ids.
type Metrics struct {
	OrdersCreated      prometheus.Counter
	OrdersCancelled    prometheus.Counter
	OrderTransitions   *prometheus.CounterVec
	StockRejections    prometheus.Counter
	PayrollsCreated    prometheus.Counter
	PayrollsProcessed  prometheus.Counter
	PayrollGeneration  prometheus.Histogram
	HTTPRequestsTotal  *prometheus.CounterVec
	HTTPRequestLatency *prometheus.HistogramVec
}

// NewMetrics registers collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		OrdersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "erp_orders_created_total",
			Help: "Total number of orders created",
		}),
		OrdersCancelled: factory.NewCounter(prometheus.CounterOpts{
			Name: "erp_orders_cancelled_total",
			Help: "Total number of orders cancelled",
		}),
		OrderTransitions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_order_status_transitions_total",
			Help: "Order status transitions by source and target status",
		}, []string{"from", "to"}),
		StockRejections: factory.NewCounter(prometheus.CounterOpts{
			Name: "erp_order_stock_rejections_total",
			Help: "Orders rejected because of stock validation",
		}),
		PayrollsCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "erp_payrolls_created_total",
			Help: "Total number of payrolls created",
		}),
		PayrollsProcessed: factory.NewCounter(prometheus.CounterOpts{
			Name: "erp_payrolls_processed_total",
			Help: "Total number of payrolls processed",
		}),
		PayrollGeneration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "erp_payroll_generation_seconds",
			Help:    "Latency of batch payroll generation",
			Buckets: prometheus.DefBuckets,
		}),
		HTTPRequestsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "erp_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "path", "status"}),
		HTTPRequestLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "erp_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
	}
}
