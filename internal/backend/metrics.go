package backend

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	recordsTracked   *prometheus.CounterVec
	deliveryFailures prometheus.Counter
)

func init() {
	RegisterMetrics(prometheus.DefaultRegisterer)
}

// RegisterMetrics creates the delivery counters on reg. They live on the
// default registry until an embedding host passes its own registry; call this
// before any tracking starts, and at most once per registry.
func RegisterMetrics(reg prometheus.Registerer) {
	factory := promauto.With(reg)
	recordsTracked = factory.NewCounterVec(prometheus.CounterOpts{
		Name: "nbpulse_records_tracked_total",
		Help: "Event records successfully handed to the backend, by event name.",
	}, []string{"event"})
	deliveryFailures = factory.NewCounter(prometheus.CounterOpts{
		Name: "nbpulse_delivery_failures_total",
		Help: "Event records whose delivery failed or panicked.",
	})
}
