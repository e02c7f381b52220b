// nbsim simulates a notebook host session with the instrumentation extension
// loaded: it builds the configured backend, registers the extension on an
// in-process event bus, and replays a scripted run of cells.
// Useful for exercising a backend end to end (e.g. NBPULSE_BACKEND=loki).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"nbpulse/internal/config"
	"nbpulse/internal/event"
	"nbpulse/internal/extension"
)

func main() {
	cells := flag.Int("cells", 3, "number of cell executions to replay")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := cfg.Logger()
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()

	client, err := extension.NewFromConfig(context.Background(), cfg, logger)
	if err != nil {
		log.Fatalf("nbsim: %v", err)
	}

	bus := newSimBus()
	client.Load(bus)

	bus.fire(string(event.KindShellInitialized))
	for i := 1; i <= *cells; i++ {
		raw := fmt.Sprintf("print(%d * %d)", i, i)
		bus.fire(string(event.KindPreExecute))
		bus.fire(string(event.KindPreRunCell), map[string]any{
			"info": map[string]any{
				"raw_cell":      raw,
				"store_history": true,
				"cell_id":       fmt.Sprintf("cell-%d", i),
			},
		})
		time.Sleep(50 * time.Millisecond)
		bus.fire(string(event.KindPostRunCell), map[string]any{
			"execution_count": i,
			"success":         true,
		})
		bus.fire(string(event.KindPostExecute))
	}

	// Give the async dispatch a moment to hand everything to the adapter,
	// then flush it.
	time.Sleep(500 * time.Millisecond)
	if err := client.Close(); err != nil {
		log.Printf("nbsim: backend close: %v", err)
	}
}

// simBus is an in-process stand-in for the host's event bus. Registration
// appends, so loading the extension twice visibly duplicates callbacks, same
// as the real host.
type simBus struct {
	callbacks map[string][]func(args ...any)
}

func newSimBus() *simBus {
	return &simBus{callbacks: make(map[string][]func(args ...any))}
}

func (b *simBus) RegisterCallback(event string, fn func(args ...any)) {
	b.callbacks[event] = append(b.callbacks[event], fn)
}

func (b *simBus) fire(event string, args ...any) {
	for _, fn := range b.callbacks[event] {
		fn(args...)
	}
}
