// Package otelsink emits event records as OpenTelemetry log records,
// exported over OTLP gRPC to a collector.
package otelsink

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	otellog "go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"

	"nbpulse/internal/event"
)

// Sink is a backend.Backend writing records to an OTel LoggerProvider.
type Sink struct {
	provider *sdklog.LoggerProvider
	logger   otellog.Logger
}

// New creates a sink exporting to the OTLP endpoint. endpoint may be a bare
// host:port or a URL; only the host is used for the gRPC dial. https
// endpoints use TLS unless insecureOverride is true.
func New(ctx context.Context, endpoint, serviceName string, insecureOverride bool) (*Sink, error) {
	target, insecure, err := grpcTarget(endpoint, insecureOverride)
	if err != nil {
		return nil, err
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		),
	)
	if err != nil {
		return nil, err
	}

	opts := []otlploggrpc.Option{otlploggrpc.WithEndpoint(target)}
	if insecure {
		opts = append(opts, otlploggrpc.WithInsecure())
	}
	exporter, err := otlploggrpc.New(ctx, opts...)
	if err != nil {
		return nil, err
	}
	provider := sdklog.NewLoggerProvider(
		sdklog.WithProcessor(sdklog.NewBatchProcessor(exporter)),
		sdklog.WithResource(res),
	)
	return &Sink{
		provider: provider,
		logger:   provider.Logger("nbpulse"),
	}, nil
}

// Track converts the record to an OTel log record and emits it. Properties
// become the JSON body; identity and event name become attributes.
func (s *Sink) Track(ctx context.Context, rec *event.Record) error {
	var out otellog.Record
	ts := rec.CreatedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}
	out.SetTimestamp(ts)
	if body, err := json.Marshal(rec.Properties); err == nil {
		out.SetBody(otellog.BytesValue(body))
	}
	out.AddAttributes(
		otellog.String("identity", rec.Identity),
		otellog.String("event_name", string(rec.Name)),
	)
	if rec.Context != nil && rec.Context.NotebookName != "" {
		out.AddAttributes(otellog.String("notebook_name", rec.Context.NotebookName))
	}
	s.logger.Emit(ctx, out)
	return nil
}

// Close flushes and shuts down the provider.
func (s *Sink) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.provider.Shutdown(ctx)
}

// grpcTarget normalizes endpoint to host:port: OTLP gRPC expects no scheme
// or path. https means TLS unless overridden (standard
// OTEL_EXPORTER_OTLP_INSECURE behavior).
func grpcTarget(endpoint string, insecureOverride bool) (string, bool, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", false, fmt.Errorf("otelsink: endpoint is required")
	}
	if !strings.Contains(endpoint, "://") {
		endpoint = "http://" + endpoint
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return "", false, fmt.Errorf("otelsink: invalid endpoint %q: %w", endpoint, err)
	}
	if u.Host == "" {
		return "", false, fmt.Errorf("otelsink: invalid endpoint %q: missing host", endpoint)
	}
	return u.Host, insecureOverride || u.Scheme != "https", nil
}
