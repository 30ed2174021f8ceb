package effects

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	effectmodel "github.com/on-the-ground/effect_ive_engine/effects/model"
)

// Label values for the outcome of an effect or a program.
const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeAbandoned = "abandoned"
)

// Metrics holds the engine's Prometheus collectors.
type Metrics struct {
	effectsTotal   *prometheus.CounterVec
	effectDuration *prometheus.HistogramVec
	programsTotal  *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		effectsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "effect_engine_effects_total",
				Help: "Total number of executed effect descriptions.",
			},
			[]string{"tag", "outcome"},
		),
		effectDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "effect_engine_effect_duration_seconds",
				Help:    "Effect execution duration in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"family"},
		),
		programsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "effect_engine_programs_total",
				Help: "Total number of finished program runs.",
			},
			[]string{"outcome"},
		),
	}
	for _, c := range []prometheus.Collector{m.effectsTotal, m.effectDuration, m.programsTotal} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	// Pre-initialize so the series appear with value 0 from startup.
	for _, outcome := range []string{outcomeSuccess, outcomeFailure, outcomeAbandoned} {
		m.programsTotal.WithLabelValues(outcome)
	}
	return m, nil
}

func (m *Metrics) observeEffect(d effectmodel.Description, o effectmodel.Outcome, elapsed time.Duration) {
	outcome := outcomeSuccess
	if o.IsFailure() {
		outcome = outcomeFailure
	}
	tag := tagOf(d)
	m.effectsTotal.WithLabelValues(string(tag), outcome).Inc()
	m.effectDuration.WithLabelValues(string(tag.Family())).Observe(elapsed.Seconds())
}

func (m *Metrics) observeProgram(outcome string) {
	m.programsTotal.WithLabelValues(outcome).Inc()
}

// Instrument counts and times every description exec runs.
func Instrument(exec effectmodel.Executor, m *Metrics) effectmodel.Executor {
	return effectmodel.ExecutorFunc(func(ctx context.Context, d effectmodel.Description) effectmodel.Outcome {
		start := time.Now()
		o := exec.Execute(ctx, d)
		m.observeEffect(d, o, time.Since(start))
		return o
	})
}
