// Package extension wires the instrumentation client into a host notebook
// runtime: it resolves the anonymous identity, registers callbacks for the
// lifecycle events, and forwards normalized records to a backend adapter.
//
// Everything here is best-effort and silent by default. No fault in identity
// resolution, payload normalization, or delivery may ever surface into the
// host session.
package extension

import (
	"time"

	"go.uber.org/zap"

	"nbpulse/internal/backend"
	"nbpulse/internal/event"
	"nbpulse/internal/hostinfo"
	"nbpulse/internal/identity"
)

// Bus is the host's event-registration capability: the extension entry point
// receives one at load time and registers a callback per lifecycle event.
type Bus interface {
	RegisterCallback(event string, fn func(args ...any))
}

// Options configures a Client. Zero values get sensible defaults: a nop
// logger, the default identity path, and a log-and-continue error handler.
type Options struct {
	// Backend receives the event records. Required.
	Backend backend.Backend
	// IdentityFile overrides the identity token path.
	IdentityFile string
	// NotebookPath is the current notebook file, if known.
	NotebookPath string
	// OnError receives delivery failures. Defaults to logging via Logger.
	OnError backend.ErrorFunc
	// Logger is used for the client's own diagnostics. Defaults to a nop
	// logger so instrumentation stays invisible unless debugging.
	Logger *zap.Logger

	now func() time.Time // test hook
}

// Client is the instrumentation client. Built once per session; all its state
// (identity, subscription table, collaborators) is fixed after New.
type Client struct {
	identity  string
	backend   backend.Backend
	onErr     backend.ErrorFunc
	norm      event.Normalizer
	collector *hostinfo.Collector
	logger    *zap.Logger
	now       func() time.Time
}

// New builds a Client: resolves (or creates) the identity token and fixes the
// collaborators. A failed identity write is logged and the session continues
// with the in-memory token.
func New(opts Options) (*Client, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	path := opts.IdentityFile
	if path == "" {
		p, err := identity.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	id, err := identity.NewResolver(path).Resolve()
	if err != nil {
		logger.Warn("identity token not persisted", zap.Error(err))
	}
	onErr := opts.OnError
	if onErr == nil {
		onErr = backend.LogErrors(logger)
	}
	norm := event.Normalizer{NotebookPath: opts.NotebookPath}
	now := opts.now
	if now == nil {
		now = time.Now
	}
	return &Client{
		identity:  id,
		backend:   opts.Backend,
		onErr:     onErr,
		norm:      norm,
		collector: hostinfo.NewCollector(norm.NotebookName()),
		logger:    logger,
		now:       now,
	}, nil
}

// Identity returns the resolved anonymous token.
func (c *Client) Identity() string { return c.identity }

// Load registers a callback for each lifecycle event on bus, then emits the
// synthetic notebook_started record carrying the host context snapshot.
//
// Loading the extension twice in one session duplicates subscriptions; that
// matches the host's registration semantics and is intentionally not
// deduplicated here.
func (c *Client) Load(bus Bus) {
	for _, kind := range event.Lifecycle() {
		bus.RegisterCallback(string(kind), c.callback(kind))
	}
	c.track(event.KindNotebookStarted, nil, c.collector.Collect())
}

// callback returns the host-facing callback for kind. Only the first host
// argument carries payload; the rest are ignored.
func (c *Client) callback(kind event.Kind) func(args ...any) {
	return func(args ...any) {
		var arg any
		if len(args) > 0 {
			arg = args[0]
		}
		c.track(kind, arg, nil)
	}
}

func (c *Client) track(kind event.Kind, arg any, snap *hostinfo.Snapshot) {
	rec := &event.Record{
		Identity:   c.identity,
		Name:       kind,
		Properties: c.norm.Normalize(arg),
		Context:    snap,
		CreatedAt:  c.now().UTC(),
	}
	c.logger.Debug("event", zap.String("name", string(kind)))
	backend.TrackAsync(c.backend, rec, c.onErr)
}

// Close flushes and shuts down the backend adapter.
func (c *Client) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}
