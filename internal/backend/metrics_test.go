package backend

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"nbpulse/internal/event"
)

func TestRegisterMetrics_CustomRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	RegisterMetrics(reg)

	m := &Memory{}
	TrackAsync(m, &event.Record{Name: event.KindPreExecute}, nil)
	waitFor(t, func() bool { return len(m.Records()) == 1 })
	waitFor(t, func() bool {
		return testutil.ToFloat64(recordsTracked.WithLabelValues(string(event.KindPreExecute))) == 1
	})

	failing := &Memory{TrackErr: errors.New("endpoint down")}
	recorder := newErrorRecorder()
	TrackAsync(failing, &event.Record{Name: event.KindPostExecute}, recorder.fn)
	recorder.wait(t)
	waitFor(t, func() bool { return testutil.ToFloat64(deliveryFailures) == 1 })

	// Both counters landed on the custom registry, not the default one.
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	found := map[string]bool{}
	for _, mf := range families {
		found[mf.GetName()] = true
	}
	for _, name := range []string{"nbpulse_records_tracked_total", "nbpulse_delivery_failures_total"} {
		if !found[name] {
			t.Errorf("registry is missing %s", name)
		}
	}
}
