// Package event defines the record shape forwarded to analytics backends and
// the normalization of host-provided callback payloads into flat properties.
package event

import (
	"time"

	"nbpulse/internal/hostinfo"
)

// Kind names a lifecycle event in the host notebook runtime.
type Kind string

const (
	// KindNotebookStarted is synthetic: fired once when the extension loads,
	// not tied to any host callback.
	KindNotebookStarted Kind = "notebook_started"

	KindShellInitialized Kind = "shell_initialized"
	KindPreRunCell       Kind = "pre_run_cell"
	KindPostRunCell      Kind = "post_run_cell"
	KindPreExecute       Kind = "pre_execute"
	KindPostExecute      Kind = "post_execute"
)

// Lifecycle returns the host callback events the client subscribes to, in
// registration order. KindNotebookStarted is not included.
func Lifecycle() []Kind {
	return []Kind{
		KindShellInitialized,
		KindPreRunCell,
		KindPostRunCell,
		KindPreExecute,
		KindPostExecute,
	}
}

// Record is the unit handed to a backend: one lifecycle occurrence with the
// resolved identity and normalized properties. Records are single-use; the
// client constructs one inside a callback, hands it off, and never retains it.
type Record struct {
	Identity   string             `json:"identity"`
	Name       Kind               `json:"event_name"`
	Properties map[string]string  `json:"properties"`
	Context    *hostinfo.Snapshot `json:"context,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}
