package rest

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the PDF editor service.
// Pass to components that need to record metrics.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ActiveSessions  prometheus.GaugeFunc
	EditorOpsTotal  *prometheus.CounterVec
	SessionsReaped  prometheus.Counter
	UploadBytes     prometheus.Histogram
}

// NewMetrics creates and registers all metrics with the given registry.
// sessionCount is sampled on every scrape for the active session gauge.
func NewMetrics(reg prometheus.Registerer, sessionCount func() int) *Metrics {
	return &Metrics{
		RequestsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pdfeditor",
				Name:      "requests_total",
				Help:      "Total number of HTTP requests processed",
			},
			[]string{"method", "status"}, // status=ok/error
		),
		RequestDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "pdfeditor",
				Name:      "request_duration_seconds",
				Help:      "Request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method"},
		),
		ActiveSessions: promauto.With(reg).NewGaugeFunc(
			prometheus.GaugeOpts{
				Namespace: "pdfeditor",
				Name:      "active_sessions",
				Help:      "Number of live document sessions",
			},
			func() float64 { return float64(sessionCount()) },
		),
		EditorOpsTotal: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "pdfeditor",
				Name:      "editor_operations_total",
				Help:      "Total editor operations by name and outcome",
			},
			[]string{"op", "status"}, // status=ok/error
		),
		SessionsReaped: promauto.With(reg).NewCounter(
			prometheus.CounterOpts{
				Namespace: "pdfeditor",
				Name:      "sessions_reaped_total",
				Help:      "Total sessions destroyed by the idle reaper",
			},
		),
		UploadBytes: promauto.With(reg).NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "pdfeditor",
				Name:      "upload_bytes",
				Help:      "Size distribution of accepted uploads",
				Buckets:   prometheus.ExponentialBuckets(64*1024, 4, 8),
			},
		),
	}
}

// recordOp counts one editor operation outcome, if metrics are wired.
func (h *Handler) recordOp(op string, err error) {
	if h.metrics == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	h.metrics.EditorOpsTotal.WithLabelValues(op, status).Inc()
}
