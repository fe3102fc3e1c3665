package prom

import (
	"net/http"
	"time"

	"autoupgrader/internal/app/ports"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "autoupgrader"

// Recorder exports attempt outcomes as Prometheus series.
type Recorder struct {
	registry *prometheus.Registry
	attempts *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

func NewRecorder() (*Recorder, error) {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upgrade_attempts_total",
			Help:      "Upgrade attempts by outcome.",
		}, []string{"outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upgrade_attempt_duration_seconds",
			Help:      "Wall time of upgrade attempts by outcome.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16},
		}, []string{"outcome"}),
	}
	for _, c := range []prometheus.Collector{r.attempts, r.duration} {
		if err := r.registry.Register(c); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Recorder) RecordOutcome(outcome ports.Outcome, elapsed time.Duration) {
	r.attempts.WithLabelValues(string(outcome)).Inc()
	r.duration.WithLabelValues(string(outcome)).Observe(elapsed.Seconds())
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

func (r *Recorder) Gatherer() prometheus.Gatherer {
	return r.registry
}
