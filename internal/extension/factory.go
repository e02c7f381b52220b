package extension

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"nbpulse/internal/backend"
	"nbpulse/internal/backend/kafka"
	"nbpulse/internal/backend/loki"
	"nbpulse/internal/backend/otelsink"
	"nbpulse/internal/backend/posthog"
	"nbpulse/internal/backend/segment"
	"nbpulse/internal/config"
)

// NewFromConfig builds a Client with the backend adapter the config selects.
// When cfg.Disabled is set, records are constructed and dropped: the session
// behaves identically except nothing leaves the process.
func NewFromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Client, error) {
	b, err := newBackend(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	return New(Options{
		Backend:      b,
		IdentityFile: cfg.IdentityFile,
		NotebookPath: cfg.NotebookPath,
		Logger:       logger,
	})
}

func newBackend(ctx context.Context, cfg *config.Config, logger *zap.Logger) (backend.Backend, error) {
	if cfg.Disabled {
		return backend.Noop{}, nil
	}
	onErr := backend.LogErrors(logger)
	switch cfg.Backend {
	case config.BackendLog:
		return backend.NewLogSink(logger), nil
	case config.BackendMemory:
		return &backend.Memory{}, nil
	case config.BackendPostHog:
		return posthog.New(cfg.WriteKey, cfg.Endpoint, cfg.FlushInterval, cfg.BatchSize, onErr)
	case config.BackendSegment:
		return segment.New(cfg.WriteKey, cfg.Endpoint, cfg.FlushInterval, cfg.BatchSize, onErr)
	case config.BackendKafka:
		return kafka.New(cfg.KafkaBrokersList(), cfg.KafkaTopic)
	case config.BackendLoki:
		return loki.New(cfg.LokiURL)
	case config.BackendOTel:
		return otelsink.New(ctx, cfg.OTLPEndpoint, "nbpulse", cfg.OTLPInsecure)
	}
	return nil, fmt.Errorf("extension: unknown backend %q", cfg.Backend)
}
