// Package metrics exports render pass events as Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements annomap.Hooks. It is safe for concurrent use.
type Collector struct {
	renders         *prometheus.CounterVec
	renderDuration  prometheus.Histogram
	commands        prometheus.Histogram
	simplifications *prometheus.CounterVec
	simplifyRatio   *prometheus.HistogramVec
	iterations      *prometheus.HistogramVec
	merges          prometheus.Counter
	mergedPieces    prometheus.Histogram
	placements      *prometheus.CounterVec
	overlap         prometheus.Histogram
	warnings        *prometheus.CounterVec
}

// NewCollector registers the annomap metrics on reg. A nil reg uses the
// default registerer.
func NewCollector(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Collector{
		renders: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annomap",
			Subsystem: "render",
			Name:      "passes_total",
			Help:      "Total render passes by outcome",
		}, []string{"status"}),

		renderDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "annomap",
			Subsystem: "render",
			Name:      "duration_seconds",
			Help:      "Duration of a render pass",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		commands: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "annomap",
			Subsystem: "render",
			Name:      "commands",
			Help:      "Draw commands produced per pass",
			Buckets:   prometheus.ExponentialBuckets(10, 4, 6),
		}),

		simplifications: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annomap",
			Subsystem: "simplify",
			Name:      "runs_total",
			Help:      "Total adaptive simplifications by geometry kind",
		}, []string{"kind"}),

		simplifyRatio: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "annomap",
			Subsystem: "simplify",
			Name:      "vertex_ratio",
			Help:      "Output vertices divided by input vertices",
			Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
		}, []string{"kind"}),

		iterations: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "annomap",
			Subsystem: "simplify",
			Name:      "iterations",
			Help:      "Tolerance steps per simplification",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		}, []string{"kind"}),

		merges: f.NewCounter(prometheus.CounterOpts{
			Namespace: "annomap",
			Subsystem: "merge",
			Name:      "roads_total",
			Help:      "Total named roads merged",
		}),

		mergedPieces: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "annomap",
			Subsystem: "merge",
			Name:      "pieces",
			Help:      "Merged pieces per named road",
			Buckets:   []float64{1, 2, 3, 5, 10, 20},
		}),

		placements: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annomap",
			Subsystem: "placement",
			Name:      "labels_total",
			Help:      "Total labels placed by accepting state",
		}, []string{"state"}),

		overlap: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: "annomap",
			Subsystem: "placement",
			Name:      "overlap_pixels",
			Help:      "Overlap area of labels placed by the fallback",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		}),

		warnings: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "annomap",
			Subsystem: "render",
			Name:      "warnings_total",
			Help:      "Total recovered conditions by kind",
		}, []string{"kind"}),
	}
}

func (c *Collector) OnSimplify(kind string, before, after, iterations int) {
	c.simplifications.WithLabelValues(kind).Inc()
	if before > 0 {
		c.simplifyRatio.WithLabelValues(kind).Observe(float64(after) / float64(before))
	}
	c.iterations.WithLabelValues(kind).Observe(float64(iterations))
}

func (c *Collector) OnMerge(_ string, _, pieces int) {
	c.merges.Inc()
	c.mergedPieces.Observe(float64(pieces))
}

func (c *Collector) OnPlacement(state string, overlap float64) {
	c.placements.WithLabelValues(state).Inc()
	if overlap > 0 {
		c.overlap.Observe(overlap)
	}
}

func (c *Collector) OnWarning(kind string, _ error) {
	c.warnings.WithLabelValues(kind).Inc()
}

func (c *Collector) OnRender(d time.Duration, commands int, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.renders.WithLabelValues(status).Inc()
	if err == nil {
		c.renderDuration.Observe(d.Seconds())
		c.commands.Observe(float64(commands))
	}
}

// Handler serves the metrics gathered by g.
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
