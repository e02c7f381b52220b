// Package segment delivers event records to Segment. Failed batches are
// reported through the client's Callback hook onto the delivery-error side
// channel.
package segment

import (
	"context"
	"fmt"
	"time"

	analytics "gopkg.in/segmentio/analytics-go.v3"

	"nbpulse/internal/backend"
	"nbpulse/internal/event"
)

// Sink is a backend.Backend writing to Segment.
type Sink struct {
	client analytics.Client
}

// New returns a Segment sink. writeKey is required; endpoint is optional and
// overrides the Segment API host (useful for self-hosted collectors and
// tests). onErr receives batch delivery failures.
func New(writeKey, endpoint string, interval time.Duration, batchSize int, onErr backend.ErrorFunc) (*Sink, error) {
	if writeKey == "" {
		return nil, fmt.Errorf("segment: write key is required")
	}
	cfg := analytics.Config{
		Interval:  interval,
		BatchSize: batchSize,
		Callback:  callback{onErr: onErr},
	}
	if endpoint != "" {
		cfg.Endpoint = endpoint
	}
	client, err := analytics.NewWithConfig(writeKey, cfg)
	if err != nil {
		return nil, fmt.Errorf("segment: %w", err)
	}
	return &Sink{client: client}, nil
}

// Track enqueues the record as an anonymous track call. The context is
// unused: the client buffers in memory and flushes on its own schedule.
func (s *Sink) Track(_ context.Context, rec *event.Record) error {
	return s.client.Enqueue(analytics.Track{
		AnonymousId: rec.Identity,
		Event:       string(rec.Name),
		Timestamp:   rec.CreatedAt,
		Properties:  trackProperties(rec),
		Context:     trackContext(rec),
	})
}

// Close flushes buffered messages and shuts the client down.
func (s *Sink) Close() error { return s.client.Close() }

func trackProperties(rec *event.Record) analytics.Properties {
	props := analytics.NewProperties()
	for k, v := range rec.Properties {
		props.Set(k, v)
	}
	return props
}

// trackContext maps the host snapshot onto Segment's standard context shape,
// with the non-standard pieces under Extra.
func trackContext(rec *event.Record) *analytics.Context {
	snap := rec.Context
	if snap == nil {
		return nil
	}
	ctx := &analytics.Context{
		App: analytics.AppInfo{
			Name:    snap.Library.Name,
			Version: snap.Library.Version,
			Build:   snap.Library.Build,
		},
		OS: analytics.OSInfo{
			Name:    snap.OS,
			Version: snap.KernelVersion,
		},
		Extra: map[string]interface{}{},
	}
	if snap.Platform != "" {
		ctx.Extra["platform"] = snap.Platform
	}
	if snap.CPUCount > 0 {
		ctx.Extra["cpu_count"] = snap.CPUCount
	}
	if snap.Memory != nil {
		ctx.Extra["memory"] = snap.Memory
	}
	if snap.Disk != nil {
		ctx.Extra["disk"] = snap.Disk
	}
	if snap.NotebookName != "" {
		ctx.Extra["notebook_name"] = snap.NotebookName
	}
	return ctx
}

// callback bridges Segment's per-message delivery hooks to ErrorFunc.
type callback struct {
	onErr backend.ErrorFunc
}

func (callback) Success(analytics.Message) {}

func (c callback) Failure(msg analytics.Message, err error) {
	if c.onErr != nil {
		c.onErr(err, nil)
	}
}
