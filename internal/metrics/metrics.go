// Package metrics holds the Prometheus collectors of the dashboard service.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// Collector groups the service metrics. A nil *Collector is a valid no-op.
type Collector struct {
	registry *prometheus.Registry

	SourceFetches   *prometheus.CounterVec
	SourceFetchTime *prometheus.HistogramVec
	ATSScorings     *prometheus.CounterVec
	GraphAdds       *prometheus.CounterVec
	QueuedCommands  *prometheus.GaugeVec
}

// New registers the collectors on a fresh registry.
func New() *Collector {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Collector{
		registry: reg,
		SourceFetches: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerlift_source_fetch_total",
				Help: "Job source fetches by source, operation and outcome",
			},
			[]string{"source", "op", "outcome"},
		),
		SourceFetchTime: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "careerlift_source_fetch_duration_seconds",
				Help:    "Duration of job source fetches",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"source"},
		),
		ATSScorings: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerlift_ats_scoring_total",
				Help: "ATS scoring calls by source and outcome",
			},
			[]string{"source", "outcome"},
		),
		GraphAdds: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "careerlift_graph_add_total",
				Help: "Add-to-graph attempts by outcome",
			},
			[]string{"outcome"},
		),
		QueuedCommands: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "careerlift_source_queue_depth",
				Help: "Commands waiting in each source lane",
			},
			[]string{"source"},
		),
	}
}

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// ObserveFetch records one source fetch.
func (c *Collector) ObserveFetch(source, op string, took time.Duration, err error) {
	if c == nil {
		return
	}
	c.SourceFetches.WithLabelValues(source, op, outcome(err)).Inc()
	c.SourceFetchTime.WithLabelValues(source).Observe(took.Seconds())
}

// ObserveScoring records one ATS scoring call.
func (c *Collector) ObserveScoring(source string, err error) {
	if c == nil {
		return
	}
	c.ATSScorings.WithLabelValues(source, outcome(err)).Inc()
}

// ObserveGraphAdd records one add-to-graph attempt.
func (c *Collector) ObserveGraphAdd(err error) {
	if c == nil {
		return
	}
	c.GraphAdds.WithLabelValues(outcome(err)).Inc()
}

// QueueDelta moves the lane depth gauge of source by d.
func (c *Collector) QueueDelta(source string, d float64) {
	if c == nil {
		return
	}
	c.QueuedCommands.WithLabelValues(source).Add(d)
}

func outcome(err error) string {
	if err != nil {
		return OutcomeError
	}
	return OutcomeOK
}
