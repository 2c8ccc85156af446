// Package metrics provides custom Prometheus metrics for the analysis service.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// AnalyzerMetrics contains all Prometheus metrics related to audio analysis.
type AnalyzerMetrics struct {
	AnalysisTotal    *prometheus.CounterVec
	AnalysisDuration *prometheus.HistogramVec

	EnvironmentDetections *prometheus.CounterVec

	ActiveAnalysesGauge prometheus.Gauge
	ModelLoadedGauge    prometheus.Gauge

	registry *prometheus.Registry
}

// NewAnalyzerMetrics creates a new instance of AnalyzerMetrics.
// It requires a Prometheus registry to register the metrics.
// It returns an error if metric registration fails.
func NewAnalyzerMetrics(registry *prometheus.Registry) (*AnalyzerMetrics, error) {
	m := &AnalyzerMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register analyzer metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for AnalyzerMetrics.
func (m *AnalyzerMetrics) initMetrics() {
	m.AnalysisTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundscape_analyses_total",
			Help: "Total number of audio analyses partitioned by source and status.",
		},
		[]string{"source", "status"},
	)

	m.AnalysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "soundscape_analysis_duration_seconds",
			Help:    "Time taken per analysis stage",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		},
		[]string{"stage"},
	)

	m.EnvironmentDetections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "soundscape_environment_detections_total",
			Help: "Total number of analyses partitioned by detected primary environment type.",
		},
		[]string{"environment"},
	)

	m.ActiveAnalysesGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "soundscape_active_analyses",
			Help: "Number of analyses currently in flight.",
		},
	)

	m.ModelLoadedGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "soundscape_model_loaded",
			Help: "Whether the classifier model is loaded (1) or not (0).",
		},
	)
}

// Describe implements the prometheus.Collector interface.
func (m *AnalyzerMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.AnalysisTotal.Describe(ch)
	m.AnalysisDuration.Describe(ch)
	m.EnvironmentDetections.Describe(ch)
	ch <- m.ActiveAnalysesGauge.Desc()
	ch <- m.ModelLoadedGauge.Desc()
}

// Collect implements the prometheus.Collector interface.
func (m *AnalyzerMetrics) Collect(ch chan<- prometheus.Metric) {
	m.AnalysisTotal.Collect(ch)
	m.AnalysisDuration.Collect(ch)
	m.EnvironmentDetections.Collect(ch)
	ch <- m.ActiveAnalysesGauge
	ch <- m.ModelLoadedGauge
}

// RecordAnalysis increments the analysis counter for a source and status.
func (m *AnalyzerMetrics) RecordAnalysis(source, status string) {
	m.AnalysisTotal.WithLabelValues(source, status).Inc()
}

// RecordDuration observes the duration of one pipeline stage in seconds.
func (m *AnalyzerMetrics) RecordDuration(stage string, seconds float64) {
	m.AnalysisDuration.WithLabelValues(stage).Observe(seconds)
}

// RecordEnvironment increments the detection counter for an environment type.
func (m *AnalyzerMetrics) RecordEnvironment(envType string) {
	m.EnvironmentDetections.WithLabelValues(envType).Inc()
}

// SetModelLoaded records whether the classifier model is loaded.
func (m *AnalyzerMetrics) SetModelLoaded(loaded bool) {
	if loaded {
		m.ModelLoadedGauge.Set(1)
	} else {
		m.ModelLoadedGauge.Set(0)
	}
}
