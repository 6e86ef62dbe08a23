package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome classifies a completed parse for the parse_total counter.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeError   Outcome = "error"
	OutcomeMessage Outcome = "message"
)

// Recorder is the instrumentation surface [forgecli.dev/argspec/parse],
// [forgecli.dev/argspec/validate], and [forgecli.dev/argspec/profile] call
// into. It is satisfied by [Collector]; callers that don't want Prometheus
// simply leave it nil.
type Recorder interface {
	ObserveParse(outcome Outcome, duration time.Duration)
	ObserveValidateWarnings(count int)
	ObserveProfileDuration(duration time.Duration)
}

// Collector is a self-contained Prometheus registry backing [Recorder]. It
// does not touch the global default registry, so multiple Collectors (e.g.
// one per test) never collide.
type Collector struct {
	registry *prometheus.Registry

	parseTotal       *prometheus.CounterVec
	parseDuration    prometheus.Histogram
	validateWarnings prometheus.Counter
	profileDuration  prometheus.Histogram
}

// NewCollector builds a Collector and registers its metrics on a private
// Prometheus registry.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	parseTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "argspec",
		Name:      "parse_total",
		Help:      "Total Parse invocations by outcome.",
	}, []string{"outcome"})

	parseDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "argspec",
		Name:      "parse_duration_seconds",
		Help:      "Duration of Parse invocations.",
		Buckets:   prometheus.DefBuckets,
	})

	validateWarnings := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "argspec",
		Name:      "validate_warnings_total",
		Help:      "Total warnings accumulated across Validate calls.",
	})

	profileDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "argspec",
		Name:      "profile_session_duration_seconds",
		Help:      "Duration of profiling sessions started via package profile.",
		Buckets:   prometheus.DefBuckets,
	})

	registry.MustRegister(parseTotal, parseDuration, validateWarnings, profileDuration)

	return &Collector{
		registry:         registry,
		parseTotal:       parseTotal,
		parseDuration:    parseDuration,
		validateWarnings: validateWarnings,
		profileDuration:  profileDuration,
	}
}

// ObserveParse records one completed Parse call.
func (c *Collector) ObserveParse(outcome Outcome, duration time.Duration) {
	c.parseTotal.WithLabelValues(string(outcome)).Inc()
	c.parseDuration.Observe(duration.Seconds())
}

// ObserveValidateWarnings records the number of warnings a single Validate
// call accumulated.
func (c *Collector) ObserveValidateWarnings(count int) {
	c.validateWarnings.Add(float64(count))
}

// ObserveProfileDuration records the wall-clock duration of one
// Profiler.Start/Stop session.
func (c *Collector) ObserveProfileDuration(duration time.Duration) {
	c.profileDuration.Observe(duration.Seconds())
}

// Handler exposes the collector's registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
