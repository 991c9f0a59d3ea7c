package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector groups the quiz service metrics on a dedicated registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	sessionsStarted   prometheus.Counter
	sessionsCompleted *prometheus.CounterVec
	contentFallbacks  prometheus.Counter
	persistOutcomes   *prometheus.CounterVec
	scores            prometheus.Histogram
}

func New() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		sessionsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_sessions_started_total",
			Help: "Total number of quiz sessions started",
		}),
		sessionsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_sessions_completed_total",
				Help: "Total number of quiz sessions completed, by how they ended",
			},
			[]string{"reason"},
		),
		contentFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quiz_content_fallbacks_total",
			Help: "Sessions started on the built-in default question set",
		}),
		persistOutcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "quiz_result_persist_total",
				Help: "Result persistence outcomes by status",
			},
			[]string{"status"},
		),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "quiz_result_percentage",
			Help:    "Distribution of percentage scores",
			Buckets: []float64{20, 40, 60, 80, 100},
		}),
	}
	c.registry.MustRegister(c.sessionsStarted, c.sessionsCompleted, c.contentFallbacks, c.persistOutcomes, c.scores)
	return c
}

func (c *Collector) SessionStarted(fallback bool) {
	if c == nil {
		return
	}
	c.sessionsStarted.Inc()
	if fallback {
		c.contentFallbacks.Inc()
	}
}

func (c *Collector) SessionCompleted(timedOut bool, percentage int) {
	if c == nil {
		return
	}
	reason := "finished"
	if timedOut {
		reason = "timeout"
	}
	c.sessionsCompleted.WithLabelValues(reason).Inc()
	c.scores.Observe(float64(percentage))
}

func (c *Collector) Persisted(status string) {
	if c == nil {
		return
	}
	c.persistOutcomes.WithLabelValues(status).Inc()
}

// Registry exposes the underlying registry, mainly for tests.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
