// Package backend defines the delivery surface for event records and the
// fire-and-forget dispatch used by the extension callbacks. Concrete remote
// adapters live in subpackages; this package holds the interface, the
// delivery-error side channel, and the in-process sinks.
package backend

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"nbpulse/internal/event"
)

// Backend enqueues event records for delivery to an analytics endpoint.
// Implementations own their batching and background flushing; Track should
// return quickly. Close flushes anything buffered.
type Backend interface {
	Track(ctx context.Context, rec *event.Record) error
	Close() error
}

// ErrorFunc is the side channel for delivery failures. records holds the
// records the failure applies to, when known. Delivery faults are reported
// here and nowhere else; they must never reach the host event bus.
type ErrorFunc func(err error, records []*event.Record)

// LogErrors returns an ErrorFunc that logs failures and continues.
func LogErrors(logger *zap.Logger) ErrorFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(err error, records []*event.Record) {
		logger.Warn("event delivery failed",
			zap.Error(err),
			zap.Int("records", len(records)))
	}
}

// trackTimeout bounds a single async delivery attempt.
const trackTimeout = 5 * time.Second

// TrackAsync hands rec to b on a fresh goroutine so the invoking host
// callback never blocks on delivery. Failures (including panics inside b) are
// reported through onErr only. A nil backend or record is a no-op.
//
// The goroutine uses context.Background with trackTimeout: the record must
// not be dropped just because the triggering callback already returned.
func TrackAsync(b Backend, rec *event.Record, onErr ErrorFunc) {
	if b == nil || rec == nil {
		return
	}
	go func() {
		defer func() {
			if p := recover(); p != nil {
				deliveryFailures.Inc()
				if onErr != nil {
					onErr(fmt.Errorf("backend panic: %v", p), []*event.Record{rec})
				}
			}
		}()
		ctx, cancel := context.WithTimeout(context.Background(), trackTimeout)
		defer cancel()
		if err := b.Track(ctx, rec); err != nil {
			deliveryFailures.Inc()
			if onErr != nil {
				onErr(err, []*event.Record{rec})
			}
			return
		}
		recordsTracked.WithLabelValues(string(rec.Name)).Inc()
	}()
}
