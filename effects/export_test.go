package effects

import "github.com/prometheus/client_golang/prometheus"

func (m *Metrics) EffectsTotal() *prometheus.CounterVec  { return m.effectsTotal }
func (m *Metrics) ProgramsTotal() *prometheus.CounterVec { return m.programsTotal }
