// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"memecoin-creator/internal/domain"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Validation metrics
	ValidationsTotal   *prometheus.CounterVec
	FieldErrorsTotal   *prometheus.CounterVec
	ValidationDuration *prometheus.HistogramVec
	DecimalsActions    *prometheus.CounterVec

	// Request metrics
	TokenRequestsStored prometheus.Counter
	HTTPRequestDuration *prometheus.HistogramVec
	WSConnections       prometheus.Gauge

	// Event recorder metrics
	EventsQueued     prometheus.Counter
	EventsDropped    prometheus.Counter
	EventsFlushed    prometheus.Counter
	EventFlushErrors prometheus.Counter
	EventQueueDepth  prometheus.Gauge

	// Network metrics
	RPCCallLatency *prometheus.HistogramVec
	RPCCallErrors  *prometheus.CounterVec

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance registered with the default registry.
func NewMetrics(namespace string) *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer, namespace)
}

// NewMetricsWith creates a new Metrics instance registered with reg.
func NewMetricsWith(reg prometheus.Registerer, namespace string) *Metrics {
	if namespace == "" {
		namespace = "memecoin_creator"
	}
	f := promauto.With(reg)

	return &Metrics{
		ValidationsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "runs_total",
			Help:      "Total number of token config validations by source and outcome",
		}, []string{"source", "outcome"}),
		FieldErrorsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "field_errors_total",
			Help:      "Total number of field errors by field and kind",
		}, []string{"field", "kind"}),
		ValidationDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "duration_seconds",
			Help:      "Token config validation duration in seconds",
			Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
		}, []string{"source"}),
		DecimalsActions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "validation",
			Name:      "decimals_actions_total",
			Help:      "Total number of decimals control actions by action and outcome",
		}, []string{"action", "outcome"}),

		TokenRequestsStored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "token_requests_stored_total",
			Help:      "Total number of accepted token requests stored",
		}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
		WSConnections: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "api",
			Name:      "ws_connections",
			Help:      "Number of open live-validation websocket connections",
		}),

		EventsQueued: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "events_queued_total",
			Help:      "Total number of validation events queued for storage",
		}),
		EventsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "events_dropped_total",
			Help:      "Total number of validation events dropped because the queue was full",
		}),
		EventsFlushed: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "events_flushed_total",
			Help:      "Total number of validation events written to storage",
		}),
		EventFlushErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "flush_errors_total",
			Help:      "Total number of failed validation event batch writes",
		}),
		EventQueueDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "recorder",
			Name:      "queue_depth",
			Help:      "Current number of validation events waiting to be flushed",
		}),

		RPCCallLatency: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "rpc_call_latency_seconds",
			Help:      "JSON-RPC call latency in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"chain_id", "method"}),
		RPCCallErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "network",
			Name:      "rpc_call_errors_total",
			Help:      "Total number of failed JSON-RPC calls",
		}, []string{"chain_id", "method"}),

		DBQueryDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// HandlerFor returns an HTTP handler exposing the metrics gathered by g.
func HandlerFor(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("")

// RecordValidation records one validation outcome and its field errors.
func (m *Metrics) RecordValidation(source domain.ValidationSource, errs domain.FieldErrors, elapsed time.Duration) {
	outcome := "valid"
	if len(errs) > 0 {
		outcome = "invalid"
	}
	m.ValidationsTotal.WithLabelValues(source.String(), outcome).Inc()
	m.ValidationDuration.WithLabelValues(source.String()).Observe(elapsed.Seconds())
	for field, kind := range errs {
		m.FieldErrorsTotal.WithLabelValues(string(field), string(kind)).Inc()
	}
}

// RecordDecimalsAction records a decimals control action.
func (m *Metrics) RecordDecimalsAction(action string, err error) {
	outcome := "applied"
	if err != nil {
		outcome = "rejected"
	}
	m.DecimalsActions.WithLabelValues(action, outcome).Inc()
}

// RecordRPCCall records a JSON-RPC call.
func (m *Metrics) RecordRPCCall(chainID, method string, elapsed time.Duration, err error) {
	m.RPCCallLatency.WithLabelValues(chainID, method).Observe(elapsed.Seconds())
	if err != nil {
		m.RPCCallErrors.WithLabelValues(chainID, method).Inc()
	}
}

// RecordDBQuery records database query metrics.
func (m *Metrics) RecordDBQuery(database, operation string, elapsed time.Duration, err error) {
	m.DBQueryDuration.WithLabelValues(database, operation).Observe(elapsed.Seconds())
	if err != nil {
		m.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}
