// Package posthog delivers event records to PostHog. The PostHog client owns
// batching and background flushing; its error log is bridged onto the
// delivery-error side channel.
package posthog

import (
	"context"
	"fmt"
	"time"

	ph "github.com/posthog/posthog-go"

	"nbpulse/internal/backend"
	"nbpulse/internal/event"
)

// Sink is a backend.Backend writing to PostHog.
type Sink struct {
	client ph.Client
}

// New returns a PostHog sink. apiKey is the project write key; endpoint is
// optional (defaults to PostHog cloud). onErr receives delivery failures
// surfaced by the client's internal flusher.
func New(apiKey, endpoint string, interval time.Duration, batchSize int, onErr backend.ErrorFunc) (*Sink, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("posthog: write key is required")
	}
	cfg := ph.Config{
		Interval:  interval,
		BatchSize: batchSize,
		Logger:    errLogger{onErr: onErr},
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	client, err := ph.NewWithConfig(apiKey, cfg)
	if err != nil {
		return nil, fmt.Errorf("posthog: %w", err)
	}
	return &Sink{client: client}, nil
}

// Track enqueues the record as a capture. The context is unused: the client
// buffers in memory and flushes on its own schedule.
func (s *Sink) Track(_ context.Context, rec *event.Record) error {
	return s.client.Enqueue(ph.Capture{
		DistinctId: rec.Identity,
		Event:      string(rec.Name),
		Timestamp:  rec.CreatedAt,
		Properties: captureProperties(rec),
	})
}

// Close flushes buffered captures and shuts the client down.
func (s *Sink) Close() error { return s.client.Close() }

func captureProperties(rec *event.Record) ph.Properties {
	props := ph.NewProperties()
	for k, v := range rec.Properties {
		props.Set(k, v)
	}
	if rec.Context != nil {
		props.Set("context", rec.Context)
	}
	return props
}

// errLogger adapts the PostHog client's Logger to the error side channel.
// The batching happens inside the client, so the failing records are not
// known here; only the error is forwarded.
type errLogger struct {
	onErr backend.ErrorFunc
}

func (errLogger) Logf(string, ...interface{}) {}

func (l errLogger) Errorf(format string, args ...interface{}) {
	if l.onErr != nil {
		l.onErr(fmt.Errorf(format, args...), nil)
	}
}
