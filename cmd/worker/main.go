// Worker consumes event records from Kafka and pushes them to Loki.
// Set KAFKA_BROKERS, KAFKA_TOPIC, KAFKA_GROUP_ID, and LOKI_URL.
package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"nbpulse/internal/backend/loki"
	"nbpulse/internal/config"
	"nbpulse/internal/event"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	brokers := cfg.KafkaBrokersList()
	if len(brokers) == 0 {
		log.Fatal("worker: KAFKA_BROKERS is required")
	}
	sink, err := loki.New(cfg.LokiURL)
	if err != nil {
		log.Fatalf("worker: %v", err)
	}

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:        brokers,
		Topic:          cfg.KafkaTopic,
		GroupID:        cfg.KafkaGroupID,
		MinBytes:       1,
		MaxBytes:       10e6, // 10MB
		MaxWait:        1 * time.Second,
		CommitInterval: time.Second,
	})
	defer reader.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		logger.Info("worker: shutting down")
		cancel()
	}()

	logger.Info("worker: consuming",
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group", cfg.KafkaGroupID),
		zap.String("loki", cfg.LokiURL))

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("worker: stopped")
				return
			}
			logger.Error("worker: kafka read", zap.Error(err))
			continue
		}

		pushCtx, pushCancel := context.WithTimeout(ctx, 10*time.Second)
		if err := push(pushCtx, sink, msg.Value); err != nil {
			logger.Error("worker: loki push", zap.Error(err))
		}
		pushCancel()
	}
}

// push decodes the Kafka message as an event record and pushes it with full
// labels. A message that does not decode is still pushed as a raw line with
// the current time, so malformed records remain visible downstream.
func push(ctx context.Context, sink *loki.Sink, value []byte) error {
	var rec event.Record
	if err := json.Unmarshal(value, &rec); err != nil || rec.Name == "" {
		return sink.Push(ctx, time.Now().UTC(), string(value), nil)
	}
	return sink.Track(ctx, &rec)
}
