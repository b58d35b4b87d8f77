// Package metrics exposes the Prometheus instrumentation for the monitor
// service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/msticdev/msmonitor/internal/model"
)

// Metrics holds all Prometheus collectors for the monitor service.
type Metrics struct {
	RefreshTotal      *prometheus.CounterVec
	RefreshFailures   *prometheus.CounterVec
	QueriesTotal      prometheus.Counter
	AlertsPublished   prometheus.Counter
	PipelinesByStatus *prometheus.GaugeVec
	ActiveAlerts      prometheus.Gauge
	PredictionsBySev  *prometheus.GaugeVec
	LastRefreshUnix   *prometheus.GaugeVec
	GenerationSeconds *prometheus.HistogramVec
}

// NewMetrics registers and returns all collectors.
func NewMetrics() *Metrics {
	return &Metrics{
		RefreshTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_refresh_total",
			Help: "Total refresh cycles, by kind (catalog, predictions)",
		}, []string{"kind"}),
		RefreshFailures: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "monitor_refresh_failures_total",
			Help: "Refresh cycles that failed and kept the previous snapshot",
		}, []string{"kind"}),
		QueriesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monitor_queries_total",
			Help: "Total mock data-explorer queries executed",
		}),
		AlertsPublished: promauto.NewCounter(prometheus.CounterOpts{
			Name: "monitor_alerts_published_total",
			Help: "Alerts published to the event bus",
		}),
		PipelinesByStatus: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_pipelines",
			Help: "Pipelines in the current catalog, by status",
		}, []string{"status"}),
		ActiveAlerts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "monitor_active_alerts",
			Help: "Unresolved alerts in the current catalog",
		}),
		PredictionsBySev: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_predictions",
			Help: "Threat predictions in the current snapshot, by severity",
		}, []string{"severity"}),
		LastRefreshUnix: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "monitor_last_refresh_timestamp_seconds",
			Help: "Unix time of the last successful refresh, by kind",
		}, []string{"kind"}),
		GenerationSeconds: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "monitor_generation_duration_seconds",
			Help:    "Time spent generating a snapshot",
			Buckets: prometheus.DefBuckets,
		}, []string{"kind"}),
	}
}

// ObserveCatalog updates the catalog gauges after a successful refresh.
func (m *Metrics) ObserveCatalog(pipelines []model.Pipeline, alerts []model.Alert) {
	counts := map[model.PipelineStatus]int{}
	for _, p := range pipelines {
		counts[p.Status]++
	}
	for _, status := range []model.PipelineStatus{
		model.StatusHealthy, model.StatusWarning, model.StatusFailed, model.StatusProcessing,
	} {
		m.PipelinesByStatus.WithLabelValues(string(status)).Set(float64(counts[status]))
	}

	active := 0
	for _, a := range alerts {
		if !a.Resolved {
			active++
		}
	}
	m.ActiveAlerts.Set(float64(active))
}

// ObservePredictions updates the prediction gauges after a successful
// refresh.
func (m *Metrics) ObservePredictions(preds []model.ThreatPrediction) {
	counts := map[model.Severity]int{}
	for _, p := range preds {
		counts[p.Severity]++
	}
	for _, sev := range []model.Severity{
		model.SeverityLow, model.SeverityMedium, model.SeverityHigh, model.SeverityCritical,
	} {
		m.PredictionsBySev.WithLabelValues(string(sev)).Set(float64(counts[sev]))
	}
}
