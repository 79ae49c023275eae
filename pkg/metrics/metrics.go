// Package metrics defines the Prometheus collectors recorded while building
// indexes, exposes them for scraping and can dump them to a node-exporter
// textfile when a batch build ends.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for a build.
type Metrics struct {
	registry *prometheus.Registry

	DocsIngestedTotal prometheus.Counter
	DocsSkippedTotal  *prometheus.CounterVec
	BuildsTotal       *prometheus.CounterVec
	StageDuration     *prometheus.HistogramVec
	DictionaryTerms   *prometheus.GaugeVec
	ArtifactBytes     *prometheus.GaugeVec
	PublishTotal      *prometheus.CounterVec
}

// New creates the collectors and registers them on a fresh registry so
// several builds in one process do not collide.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		DocsIngestedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "cranfield_docs_ingested_total",
				Help: "Documents accepted into the accumulators.",
			},
		),
		DocsSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cranfield_docs_skipped_total",
				Help: "Documents skipped by reason (empty, invalid).",
			},
			[]string{"reason"},
		),
		BuildsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cranfield_variant_builds_total",
				Help: "Variant builds by outcome.",
			},
			[]string{"variant", "status"},
		),
		StageDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "cranfield_stage_duration_seconds",
				Help:    "Elapsed time of each build stage.",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"variant", "stage"},
		),
		DictionaryTerms: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cranfield_dictionary_terms",
				Help: "Number of dictionary terms per variant.",
			},
			[]string{"variant"},
		),
		ArtifactBytes: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "cranfield_artifact_bytes",
				Help: "Size of the committed artifacts by variant and form (uncompressed, compressed).",
			},
			[]string{"variant", "form"},
		),
		PublishTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cranfield_publish_total",
				Help: "Artifact publications by sink and status.",
			},
			[]string{"sink", "status"},
		),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		m.DocsIngestedTotal,
		m.DocsSkippedTotal,
		m.BuildsTotal,
		m.StageDuration,
		m.DictionaryTerms,
		m.ArtifactBytes,
		m.PublishTotal,
	)
	return m
}

// ObserveStage records the duration of stage for variant.
func (m *Metrics) ObserveStage(variant, stage string, d time.Duration) {
	m.StageDuration.WithLabelValues(variant, stage).Observe(d.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus scrape HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the current values in the text exposition format,
// atomically, for the node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
