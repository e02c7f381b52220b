// logstats loads a newline-delimited JSON event log and prints summary
// statistics. With DATABASE_URL set, the records are first inserted into
// Postgres and the summary is computed there; without it, the summary is
// computed in memory.
//
// Usage: logstats [-file events.ndjson]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"nbpulse/internal/config"
	"nbpulse/internal/event"
	"nbpulse/internal/stats"
	"nbpulse/internal/store"
)

func main() {
	file := flag.String("file", "", "NDJSON event log to load (default stdin)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	in := os.Stdin
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			log.Fatalf("logstats: %v", err)
		}
		defer f.Close()
		in = f
	}
	records, err := event.ReadNDJSON(in)
	if err != nil {
		log.Fatalf("logstats: read: %v", err)
	}

	summary, err := summarize(context.Background(), cfg.DatabaseURL, records)
	if err != nil {
		log.Fatalf("logstats: %v", err)
	}
	fmt.Print(summary.String())
}

func summarize(ctx context.Context, dsn string, records []*event.Record) (stats.Summary, error) {
	if dsn == "" {
		return stats.Compute(records), nil
	}
	db, err := store.Open(dsn)
	if err != nil {
		return stats.Summary{}, err
	}
	defer db.Close()

	st := store.New(db)
	if err := st.CreateSchema(ctx); err != nil {
		return stats.Summary{}, err
	}
	if err := st.SaveBatch(ctx, records); err != nil {
		return stats.Summary{}, err
	}
	sum, err := st.Summary(ctx)
	if err != nil {
		return stats.Summary{}, err
	}
	return *sum, nil
}
