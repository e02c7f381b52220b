package posthog

import (
	"errors"
	"testing"
	"time"

	"nbpulse/internal/event"
	"nbpulse/internal/hostinfo"
)

func TestCaptureProperties(t *testing.T) {
	rec := &event.Record{
		Properties: map[string]string{"notebook_name": "a.ipynb"},
		Context:    &hostinfo.Snapshot{CPUCount: 4},
	}
	props := captureProperties(rec)
	if props["notebook_name"] != "a.ipynb" {
		t.Errorf("properties = %v", props)
	}
	snap, ok := props["context"].(*hostinfo.Snapshot)
	if !ok || snap.CPUCount != 4 {
		t.Errorf("context = %v", props["context"])
	}
}

func TestNew_RequiresWriteKey(t *testing.T) {
	if _, err := New("", "", time.Second, 10, nil); err == nil {
		t.Error("expected error for missing write key")
	}
}

func TestErrLogger(t *testing.T) {
	var got error
	l := errLogger{onErr: func(err error, _ []*event.Record) { got = err }}

	l.Logf("flushed %d messages", 3) // must stay silent
	if got != nil {
		t.Errorf("Logf reported an error: %v", got)
	}
	l.Errorf("flush failed: %v", errors.New("http 500"))
	if got == nil {
		t.Error("Errorf did not reach the side channel")
	}
}
