// Package prometheus exports session metrics on a dedicated registry.
package prometheus

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bnema/gccpr/internal/domain"
	"github.com/bnema/gccpr/internal/ports"
)

const namespace = "gccpr"

type Recorder struct {
	registry      *prometheus.Registry
	actions       *prometheus.CounterVec
	builds        *prometheus.CounterVec
	buildDuration *prometheus.HistogramVec
	measurements  *prometheus.CounterVec
}

var _ ports.Recorder = (*Recorder)(nil)

func NewRecorder() *Recorder {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Recorder{
		registry: registry,
		actions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "actions_total",
			Help:      "Actions applied to sessions by result",
		}, []string{"result"}),
		builds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "builds_total",
			Help:      "Benchmark builds by kind and result",
		}, []string{"kind", "result"}),
		buildDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "build_duration_seconds",
			Help:      "Benchmark build duration",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"kind"}),
		measurements: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "measurements_total",
			Help:      "Size and runtime measurements taken by observation kind",
		}, []string{"kind"}),
	}
}

func (r *Recorder) ActionApplied(result string) {
	r.actions.WithLabelValues(result).Inc()
}

func (r *Recorder) BuildFinished(kind ports.BuildKind, elapsed time.Duration, err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}

	r.builds.WithLabelValues(string(kind), result).Inc()
	r.buildDuration.WithLabelValues(string(kind)).Observe(elapsed.Seconds())
}

func (r *Recorder) MeasurementTaken(kind domain.ObservationKind) {
	r.measurements.WithLabelValues(kind.String()).Inc()
}

func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
