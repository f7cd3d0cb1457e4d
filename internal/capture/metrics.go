package capture

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics counts captures. A nil registerer leaves the collectors
// unregistered.
type Metrics struct {
	Captures       *prometheus.CounterVec
	Products       *prometheus.CounterVec
	RecoilsOmitted prometheus.Counter
	Violations     prometheus.Counter
}

func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		Captures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "capsim",
			Name:      "captures_total",
			Help:      "Neutron captures by handler and element.",
		}, []string{"handler", "element"}),
		Products: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: "capsim",
			Name:      "secondaries_total",
			Help:      "Emitted secondaries by particle.",
		}, []string{"particle"}),
		RecoilsOmitted: f.NewCounter(prometheus.CounterOpts{
			Namespace: "capsim",
			Name:      "recoils_omitted_total",
			Help:      "Captures whose recoil nucleus was kinematically invalid.",
		}),
		Violations: f.NewCounter(prometheus.CounterOpts{
			Namespace: "capsim",
			Name:      "energy_violations_total",
			Help:      "Final states failing the fatal energy check.",
		}),
	}
}
