// Package metrics records ingestion metrics with Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/custodia-labs/pagecluster/internal/core/ports/driven"
)

// Ensure Metrics implements the interface.
var _ driven.IngestMetrics = (*Metrics)(nil)

const namespace = "pagecluster"

// Metrics holds the Prometheus collectors for ingestion.
type Metrics struct {
	registry *prometheus.Registry

	EventsTotal       *prometheus.CounterVec
	PagesSkipped      prometheus.Counter
	AssignmentsTotal  *prometheus.CounterVec
	Similarity        *prometheus.HistogramVec
	PipelineFailures  *prometheus.CounterVec
	PipelineDurations *prometheus.HistogramVec
}

// New creates the collectors on a dedicated registry, so several
// instances can coexist in one process.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_total",
				Help:      "Browse events received, by whether they were ignored",
			},
			[]string{"ignored"},
		),
		PagesSkipped: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pages_skipped_total",
				Help:      "Events whose page already had content",
			},
		),
		AssignmentsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "assignments_total",
				Help:      "Cluster assignments, by run and outcome",
			},
			[]string{"run", "outcome"},
		),
		Similarity: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "neighbour_similarity",
				Help:      "Cosine similarity to the nearest neighbour at assignment",
				Buckets:   []float64{0, .2, .4, .6, .7, .75, .8, .85, .9, .95, 1},
			},
			[]string{"run"},
		),
		PipelineFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "pipeline_failures_total",
				Help:      "Failed pipeline runs, by run and step",
			},
			[]string{"run", "step"},
		),
		PipelineDurations: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "pipeline_duration_seconds",
				Help:      "Wall time of one pipeline run",
				Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"run"},
		),
	}
}

// EventRecorded counts a browse event.
func (m *Metrics) EventRecorded(ignored bool) {
	label := "false"
	if ignored {
		label = "true"
	}
	m.EventsTotal.WithLabelValues(label).Inc()
}

// PageSkipped counts a page that was not re-clustered.
func (m *Metrics) PageSkipped() {
	m.PagesSkipped.Inc()
}

// Assigned counts an assignment. Similarity is only observed when the
// run had a neighbour to compare against.
func (m *Metrics) Assigned(runID, outcome string, similarity float64) {
	m.AssignmentsTotal.WithLabelValues(runID, outcome).Inc()
	if similarity != 0 {
		m.Similarity.WithLabelValues(runID).Observe(similarity)
	}
}

// PipelineFailed counts a failed pipeline run.
func (m *Metrics) PipelineFailed(runID, step string) {
	m.PipelineFailures.WithLabelValues(runID, step).Inc()
}

// PipelineDuration observes a pipeline run.
func (m *Metrics) PipelineDuration(runID string, d time.Duration) {
	m.PipelineDurations.WithLabelValues(runID).Observe(d.Seconds())
}

// Registry returns the registry the collectors live on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the collectors in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
