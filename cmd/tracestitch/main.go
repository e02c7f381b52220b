// tracestitch runs an external log-filtering binary over an input log, writes
// the filtered output to a temporary file, and hands that file to an external
// trace-exporting binary. The exporter's output goes to stdout.
//
// Usage: tracestitch -filter-bin eslogfilter -export-bin traceexport -input session.log
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/exec"
	"os/signal"
	"syscall"
)

func main() {
	filterBin := flag.String("filter-bin", "", "log-filtering executable (required)")
	exportBin := flag.String("export-bin", "", "trace-exporting executable (required)")
	input := flag.String("input", "", "raw log file to filter (required)")
	flag.Parse()

	if *filterBin == "" || *exportBin == "" || *input == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *filterBin, *exportBin, *input); err != nil {
		log.Fatalf("tracestitch: %v", err)
	}
}

func run(ctx context.Context, filterBin, exportBin, input string) error {
	tmp, err := os.CreateTemp("", "tracestitch-*.log")
	if err != nil {
		return fmt.Errorf("temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	filter := exec.CommandContext(ctx, filterBin, input)
	filter.Stdout = tmp
	filter.Stderr = os.Stderr
	if err := filter.Run(); err != nil {
		tmp.Close()
		return fmt.Errorf("filter %s: %w", filterBin, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	export := exec.CommandContext(ctx, exportBin, tmp.Name())
	export.Stdout = os.Stdout
	export.Stderr = os.Stderr
	if err := export.Run(); err != nil {
		return fmt.Errorf("export %s: %w", exportBin, err)
	}
	return nil
}
