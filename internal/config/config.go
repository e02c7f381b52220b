// Package config loads and validates nbpulse configuration from env and an
// optional .env file using Viper.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Backend names accepted in NBPULSE_BACKEND.
const (
	BackendLog     = "log"
	BackendMemory  = "memory"
	BackendPostHog = "posthog"
	BackendSegment = "segment"
	BackendKafka   = "kafka"
	BackendLoki    = "loki"
	BackendOTel    = "otel"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	// Backend selects the analytics adapter (log, memory, posthog, segment, kafka, loki, otel).
	Backend string `mapstructure:"NBPULSE_BACKEND"`
	// WriteKey is the analytics service credential; required for posthog and segment.
	WriteKey string `mapstructure:"NBPULSE_WRITE_KEY"`
	// Endpoint overrides the analytics service URL (e.g. a self-hosted PostHog).
	Endpoint string `mapstructure:"NBPULSE_ENDPOINT"`
	// Disabled turns off delivery entirely: records are constructed and dropped.
	// Polarity is fixed here once: set NBPULSE_DISABLED=true to opt out; unset or false means sending is enabled.
	Disabled bool `mapstructure:"NBPULSE_DISABLED"`
	// Debug enables verbose development logging. The client is silent by default.
	Debug bool `mapstructure:"NBPULSE_DEBUG"`
	// IdentityFile overrides the per-user identity token path (default $HOME/.nbpulse/identity).
	IdentityFile string `mapstructure:"NBPULSE_IDENTITY_FILE"`
	// NotebookPath is the current notebook file, used for the notebook_name and notebook_hash fields.
	NotebookPath string `mapstructure:"NBPULSE_NOTEBOOK_PATH"`
	// FlushInterval is how often buffering adapters flush (e.g. "5s").
	FlushInterval time.Duration `mapstructure:"NBPULSE_FLUSH_INTERVAL"`
	// BatchSize is the max records per flushed batch for buffering adapters.
	BatchSize int `mapstructure:"NBPULSE_BATCH_SIZE"`

	// KafkaBrokers is a comma-separated list of broker addresses (e.g. "localhost:9092").
	KafkaBrokers string `mapstructure:"KAFKA_BROKERS"`
	// KafkaTopic is the topic event records are produced to (default nbpulse-events).
	KafkaTopic string `mapstructure:"KAFKA_TOPIC"`
	// KafkaGroupID is the consumer group ID for the delivery worker.
	KafkaGroupID string `mapstructure:"KAFKA_GROUP_ID"`
	// LokiURL is the Loki base URL for the loki backend and the delivery worker (e.g. http://localhost:3100).
	LokiURL string `mapstructure:"LOKI_URL"`
	// OTLPEndpoint is the OTLP gRPC endpoint for the otel backend.
	OTLPEndpoint string `mapstructure:"OTLP_ENDPOINT"`
	// OTLPInsecure forces plaintext OTLP even for https endpoints.
	OTLPInsecure bool `mapstructure:"OTLP_INSECURE"`

	// DatabaseURL is the Postgres DSN used by logstats; empty means in-memory statistics.
	DatabaseURL string `mapstructure:"DATABASE_URL"`
}

// Load reads .env (if present), then builds and validates Config from the
// environment via Viper. Missing .env is ignored (e.g. in CI). Env vars
// override .env.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigFile(".env")
	v.SetConfigType("env")
	_ = v.ReadInConfig() // ignore ErrConfigFileNotFound

	v.AutomaticEnv()

	v.SetDefault("NBPULSE_BACKEND", BackendLog)
	v.SetDefault("NBPULSE_WRITE_KEY", "")
	v.SetDefault("NBPULSE_ENDPOINT", "")
	v.SetDefault("NBPULSE_DISABLED", false)
	v.SetDefault("NBPULSE_DEBUG", false)
	v.SetDefault("NBPULSE_IDENTITY_FILE", "")
	v.SetDefault("NBPULSE_NOTEBOOK_PATH", "")
	v.SetDefault("NBPULSE_FLUSH_INTERVAL", 5*time.Second)
	v.SetDefault("NBPULSE_BATCH_SIZE", 20)
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_TOPIC", "nbpulse-events")
	v.SetDefault("KAFKA_GROUP_ID", "nbpulse-worker")
	v.SetDefault("LOKI_URL", "")
	v.SetDefault("OTLP_ENDPOINT", "")
	v.SetDefault("OTLP_INSECURE", false)
	v.SetDefault("DATABASE_URL", "")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var errs []error
	switch c.Backend {
	case BackendLog, BackendMemory:
	case BackendPostHog, BackendSegment:
		if c.WriteKey == "" && !c.Disabled {
			errs = append(errs, fmt.Errorf("NBPULSE_WRITE_KEY is required for the %s backend", c.Backend))
		}
	case BackendKafka:
		if len(c.KafkaBrokersList()) == 0 && !c.Disabled {
			errs = append(errs, errors.New("KAFKA_BROKERS is required for the kafka backend"))
		}
	case BackendLoki:
		if c.LokiURL == "" && !c.Disabled {
			errs = append(errs, errors.New("LOKI_URL is required for the loki backend"))
		}
	case BackendOTel:
		if c.OTLPEndpoint == "" && !c.Disabled {
			errs = append(errs, errors.New("OTLP_ENDPOINT is required for the otel backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown NBPULSE_BACKEND %q", c.Backend))
	}
	if c.BatchSize < 1 {
		errs = append(errs, fmt.Errorf("NBPULSE_BATCH_SIZE must be >= 1, got %d", c.BatchSize))
	}
	return errors.Join(errs...)
}

// KafkaBrokersList splits KAFKA_BROKERS into addresses, dropping empties.
func (c *Config) KafkaBrokersList() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// Logger builds the process logger: a development logger at debug level when
// NBPULSE_DEBUG is set, otherwise a production logger.
func (c *Config) Logger() (*zap.Logger, error) {
	if c.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
