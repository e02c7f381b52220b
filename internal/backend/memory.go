package backend

import (
	"context"
	"sync"

	"nbpulse/internal/event"
)

// Memory is an in-memory Backend for tests and dry runs.
type Memory struct {
	// TrackErr, when set, is returned by every Track call.
	TrackErr error

	mu      sync.Mutex
	records []*event.Record
	closed  bool
}

// Track stores the record. It honors ctx cancellation like a real adapter.
func (m *Memory) Track(ctx context.Context, rec *event.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if m.TrackErr != nil {
		return m.TrackErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = append(m.records, rec)
	return nil
}

// Records returns a copy of everything tracked so far.
func (m *Memory) Records() []*event.Record {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*event.Record, len(m.records))
	copy(out, m.records)
	return out
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *Memory) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}
