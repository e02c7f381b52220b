package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	os.Clearenv()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendLog {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendLog)
	}
	if cfg.Disabled {
		t.Error("Disabled should default to false (sending enabled)")
	}
	if cfg.Debug {
		t.Error("Debug should default to false")
	}
	if cfg.FlushInterval != 5*time.Second {
		t.Errorf("FlushInterval = %v, want 5s", cfg.FlushInterval)
	}
	if cfg.BatchSize != 20 {
		t.Errorf("BatchSize = %d, want 20", cfg.BatchSize)
	}
	if cfg.KafkaTopic != "nbpulse-events" {
		t.Errorf("KafkaTopic = %q, want default", cfg.KafkaTopic)
	}
	if cfg.KafkaGroupID != "nbpulse-worker" {
		t.Errorf("KafkaGroupID = %q, want default", cfg.KafkaGroupID)
	}
}

func TestLoad_EnvVarOverride(t *testing.T) {
	os.Clearenv()
	os.Setenv("NBPULSE_BACKEND", "segment")
	os.Setenv("NBPULSE_WRITE_KEY", "wk-123")
	os.Setenv("NBPULSE_FLUSH_INTERVAL", "10s")
	os.Setenv("NBPULSE_BATCH_SIZE", "50")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Backend != BackendSegment {
		t.Errorf("Backend = %q, want %q", cfg.Backend, BackendSegment)
	}
	if cfg.WriteKey != "wk-123" {
		t.Errorf("WriteKey = %q", cfg.WriteKey)
	}
	if cfg.FlushInterval != 10*time.Second {
		t.Errorf("FlushInterval = %v", cfg.FlushInterval)
	}
	if cfg.BatchSize != 50 {
		t.Errorf("BatchSize = %d", cfg.BatchSize)
	}
}

// Disabled polarity is fixed: NBPULSE_DISABLED=true means records are
// dropped, and it also relaxes validation of the selected backend.
func TestLoad_DisabledPolarity(t *testing.T) {
	os.Clearenv()
	os.Setenv("NBPULSE_BACKEND", "posthog")
	os.Setenv("NBPULSE_DISABLED", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load with NBPULSE_DISABLED should not require a write key: %v", err)
	}
	if !cfg.Disabled {
		t.Error("Disabled = false, want true when NBPULSE_DISABLED=true")
	}
}

func TestLoad_MissingWriteKey(t *testing.T) {
	os.Clearenv()
	os.Setenv("NBPULSE_BACKEND", "posthog")

	if _, err := Load(); err == nil {
		t.Error("posthog backend without write key should fail validation")
	}
}

func TestLoad_UnknownBackend(t *testing.T) {
	os.Clearenv()
	os.Setenv("NBPULSE_BACKEND", "carrier-pigeon")

	if _, err := Load(); err == nil {
		t.Error("unknown backend should fail validation")
	}
}

func TestLoad_KafkaRequiresBrokers(t *testing.T) {
	os.Clearenv()
	os.Setenv("NBPULSE_BACKEND", "kafka")

	if _, err := Load(); err == nil {
		t.Error("kafka backend without brokers should fail validation")
	}

	os.Setenv("KAFKA_BROKERS", "localhost:9092, localhost:9093")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	brokers := cfg.KafkaBrokersList()
	if len(brokers) != 2 || brokers[0] != "localhost:9092" || brokers[1] != "localhost:9093" {
		t.Errorf("KafkaBrokersList = %v", brokers)
	}
}

func TestLogger(t *testing.T) {
	cfg := &Config{Debug: false}
	logger, err := cfg.Logger()
	if err != nil || logger == nil {
		t.Fatalf("Logger: %v", err)
	}
	cfg.Debug = true
	logger, err = cfg.Logger()
	if err != nil || logger == nil {
		t.Fatalf("Logger (debug): %v", err)
	}
}
