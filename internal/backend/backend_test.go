package backend

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"nbpulse/internal/event"
)

// errorRecorder collects ErrorFunc invocations for assertions.
type errorRecorder struct {
	mu     sync.Mutex
	errs   []error
	called chan struct{}
}

func newErrorRecorder() *errorRecorder {
	return &errorRecorder{called: make(chan struct{}, 8)}
}

func (r *errorRecorder) fn(err error, _ []*event.Record) {
	r.mu.Lock()
	r.errs = append(r.errs, err)
	r.mu.Unlock()
	r.called <- struct{}{}
}

func (r *errorRecorder) wait(t *testing.T) error {
	t.Helper()
	select {
	case <-r.called:
	case <-time.After(2 * time.Second):
		t.Fatal("error channel never fired")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.errs[len(r.errs)-1]
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("condition never satisfied")
}

func TestTrackAsync_NilBackend(t *testing.T) {
	// Should not panic.
	TrackAsync(nil, &event.Record{Name: event.KindPreExecute}, nil)
}

func TestTrackAsync_NilRecord(t *testing.T) {
	// Should not panic and not deliver.
	m := &Memory{}
	TrackAsync(m, nil, nil)
	time.Sleep(50 * time.Millisecond)
	if n := len(m.Records()); n != 0 {
		t.Errorf("delivered %d records for nil input", n)
	}
}

func TestTrackAsync_Delivers(t *testing.T) {
	m := &Memory{}
	rec := &event.Record{Identity: "id-1", Name: event.KindPostRunCell}

	TrackAsync(m, rec, nil)

	waitFor(t, func() bool { return len(m.Records()) == 1 })
	if got := m.Records()[0]; got != rec {
		t.Errorf("delivered record = %+v, want the original", got)
	}
}

func TestTrackAsync_ErrorsOnSideChannelOnly(t *testing.T) {
	trackErr := errors.New("endpoint down")
	m := &Memory{TrackErr: trackErr}
	rec := &event.Record{Name: event.KindPreRunCell}
	recorder := newErrorRecorder()

	// Must not panic or block, regardless of the failing backend.
	TrackAsync(m, rec, recorder.fn)

	if err := recorder.wait(t); !errors.Is(err, trackErr) {
		t.Errorf("side channel err = %v, want %v", err, trackErr)
	}
	if n := len(m.Records()); n != 0 {
		t.Errorf("failed delivery stored %d records", n)
	}
}

type panicBackend struct{}

func (panicBackend) Track(context.Context, *event.Record) error { panic("adapter bug") }
func (panicBackend) Close() error                               { return nil }

func TestTrackAsync_PanicContained(t *testing.T) {
	recorder := newErrorRecorder()

	TrackAsync(panicBackend{}, &event.Record{Name: event.KindPostExecute}, recorder.fn)

	if err := recorder.wait(t); err == nil {
		t.Error("panic should surface as an error on the side channel")
	}
}
