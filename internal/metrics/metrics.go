// Package metrics exposes archcheck run outcomes as Prometheus metrics.
//
// Runs are short-lived, so metrics are collected into a private registry and
// written in the node-exporter textfile format for CI hosts to pick up.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/roach88/archcheck/internal/harness"
)

// Check outcomes used as the "outcome" label.
const (
	OutcomePass  = "pass"
	OutcomeFail  = "fail"
	OutcomeError = "error"
)

// Recorder collects the metrics of one or more runs.
//
// Thread Safety: Safe for concurrent use.
type Recorder struct {
	registry *prometheus.Registry

	checksTotal     *prometheus.CounterVec
	violationsTotal *prometheus.CounterVec
	checkDuration   *prometheus.HistogramVec
	runDuration     prometheus.Gauge
	lastRunSuccess  prometheus.Gauge
}

// New creates a recorder with its own registry.
func New() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,

		// checksTotal counts evaluated checks by provider and outcome
		checksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "archcheck_checks_total",
			Help: "Total architecture checks evaluated by provider and outcome",
		}, []string{"provider", "outcome"}),

		// violationsTotal counts violations by provider
		violationsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "archcheck_violations_total",
			Help: "Total architecture violations by provider",
		}, []string{"provider"}),

		// checkDuration tracks evaluation latency per check
		checkDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "archcheck_check_duration_seconds",
			Help:    "Check evaluation duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~2s
		}, []string{"provider"}),

		runDuration: factory.NewGauge(prometheus.GaugeOpts{
			Name: "archcheck_run_duration_seconds",
			Help: "Wall time of the last run in seconds",
		}),

		lastRunSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "archcheck_last_run_success",
			Help: "1 if the last run passed, 0 otherwise",
		}),
	}
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry { return r.registry }

// ObserveCheck records one check outcome.
func (r *Recorder) ObserveCheck(provider, outcome string, violations int, d time.Duration) {
	r.checksTotal.WithLabelValues(provider, outcome).Inc()
	r.violationsTotal.WithLabelValues(provider).Add(float64(violations))
	r.checkDuration.WithLabelValues(provider).Observe(d.Seconds())
}

// ObserveRun records the overall outcome of a run.
func (r *Recorder) ObserveRun(pass bool, d time.Duration) {
	r.runDuration.Set(d.Seconds())
	if pass {
		r.lastRunSuccess.Set(1)
	} else {
		r.lastRunSuccess.Set(0)
	}
}

// Record observes every check of a harness result and the run itself.
func (r *Recorder) Record(result *harness.Result) {
	for _, c := range result.Checks {
		r.ObserveCheck(c.Provider, Outcome(c), len(c.Violations), c.Duration)
	}
	r.ObserveRun(result.Pass, result.Duration)
}

// Outcome classifies a check result.
func Outcome(c harness.CheckResult) string {
	switch {
	case c.Error != "":
		return OutcomeError
	case !c.Pass:
		return OutcomeFail
	default:
		return OutcomePass
	}
}

// WriteTextfile writes the metrics atomically in the textfile collector
// format.
func (r *Recorder) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, r.registry)
}
