// Package metrics exposes prometheus collectors for pipeline runs, media
// ingests and the upload rate limiter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/goliatone/go-folio/internal/pipeline"
)

const Namespace = "folio"

// Limiter label values.
const (
	LimiterMemory = "memory"
)

// Collectors groups every folio collector. It satisfies pipeline.Observer
// and media.Observer so it can be handed straight to the runner and the
// gateway.
type Collectors struct {
	PipelineRuns      *prometheus.CounterVec
	PipelineDuration  prometheus.Histogram
	PipelineDocuments *prometheus.GaugeVec
	PipelineWarnings  *prometheus.CounterVec

	MediaIngests        *prometheus.CounterVec
	MediaIngestDuration *prometheus.HistogramVec

	RateLimitAllowed  *prometheus.CounterVec
	RateLimitRejected *prometheus.CounterVec
}

// New builds unregistered collectors.
func New() *Collectors {
	return &Collectors{
		PipelineRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "pipeline_runs_total", Help: "Pipeline runs by result."},
			[]string{"result"},
		),
		PipelineDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{Namespace: Namespace, Name: "pipeline_run_duration_seconds", Help: "Wall time of pipeline runs.", Buckets: prometheus.DefBuckets},
		),
		PipelineDocuments: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{Namespace: Namespace, Name: "collection_documents", Help: "Documents in the last built collection."},
			[]string{"state"},
		),
		PipelineWarnings: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "pipeline_warnings_total", Help: "Non-fatal pipeline findings by kind."},
			[]string{"kind"},
		),
		MediaIngests: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "media_ingests_total", Help: "Media ingests by outcome."},
			[]string{"outcome"},
		),
		MediaIngestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{Namespace: Namespace, Name: "media_ingest_duration_seconds", Help: "Media ingest latency by outcome.", Buckets: prometheus.DefBuckets},
			[]string{"outcome"},
		),
		RateLimitAllowed: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
			[]string{"limiter"},
		),
		RateLimitRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{Namespace: Namespace, Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
			[]string{"limiter"},
		),
	}
}

// Register adds every collector to reg.
func (c *Collectors) Register(reg prometheus.Registerer) {
	reg.MustRegister(
		c.PipelineRuns,
		c.PipelineDuration,
		c.PipelineDocuments,
		c.PipelineWarnings,
		c.MediaIngests,
		c.MediaIngestDuration,
		c.RateLimitAllowed,
		c.RateLimitRejected,
	)
}

// RunCompleted records a finished pipeline run.
func (c *Collectors) RunCompleted(report pipeline.Report) {
	result := "success"
	if report.Failed {
		result = "failed"
	}
	c.PipelineRuns.WithLabelValues(result).Inc()
	c.PipelineDuration.Observe(report.Duration().Seconds())

	c.PipelineWarnings.WithLabelValues("excluded").Add(float64(len(report.Excluded)))
	c.PipelineWarnings.WithLabelValues("render_failure").Add(float64(len(report.RenderFailures)))
	c.PipelineWarnings.WithLabelValues("duplicate_slug").Add(float64(len(report.DuplicateSlugs)))
	c.PipelineWarnings.WithLabelValues("replaced").Add(float64(len(report.Replaced)))

	if report.Failed {
		return
	}
	c.PipelineDocuments.WithLabelValues("all").Set(float64(report.Documents))
	c.PipelineDocuments.WithLabelValues("published").Set(float64(report.Published))
}

// IngestCompleted records one media ingest.
func (c *Collectors) IngestCompleted(outcome string, elapsed time.Duration) {
	c.MediaIngests.WithLabelValues(outcome).Inc()
	c.MediaIngestDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

// RateLimited records a limiter decision.
func (c *Collectors) RateLimited(limiter string, allowed bool) {
	if allowed {
		c.RateLimitAllowed.WithLabelValues(limiter).Inc()
		return
	}
	c.RateLimitRejected.WithLabelValues(limiter).Inc()
}
