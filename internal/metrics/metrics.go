package metrics

import (
	"net/http"

	"katalog/internal/models"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors for reconciliation runs.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler
	runs     *prometheus.CounterVec
	rows     *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics builds a private registry with the reconciliation collectors and
// the Go runtime collectors.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()
	runs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "katalog_reconciliation_runs_total",
		Help: "Reconciliation runs by mode and status.",
	}, []string{"mode", "status"})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "katalog_reconciliation_rows_total",
		Help: "Row and product outcomes by mode and action.",
	}, []string{"mode", "action"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "katalog_reconciliation_duration_seconds",
		Help:    "Duration of reconciliation runs.",
		Buckets: prometheus.DefBuckets,
	}, []string{"mode"})
	registry.MustRegister(runs, rows, duration, collectors.NewGoCollector())
	return &Metrics{
		registry: registry,
		handler:  promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		runs:     runs,
		rows:     rows,
		duration: duration,
	}
}

// Handler returns the http.Handler for the /metrics endpoint.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, http.StatusText(http.StatusServiceUnavailable), http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveRun records a finished or aborted run. report may be nil when the
// batch was rejected before any work.
func (m *Metrics) ObserveRun(mode models.ReconcileMode, report *models.ReconciliationReport, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	m.runs.WithLabelValues(string(mode), status).Inc()
	if report == nil {
		return
	}
	for _, o := range report.Outcomes {
		m.rows.WithLabelValues(string(mode), string(o.Action)).Inc()
	}
	if !report.FinishedAt.IsZero() {
		m.duration.WithLabelValues(string(mode)).Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
}
