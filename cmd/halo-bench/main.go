package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"time"
)

func main() {
	dimsFlag := flag.String("dims", "1x1,1x2,2x1,2x2,4x1,1x4", "decompositions to time")
	sizesFlag := flag.String("sizes", "256,512,1024", "square board sizes")
	gens := flag.Int("gens", 200, "generations per run")
	repeats := flag.Int("repeats", 5, "timed runs per scenario")
	workers := flag.Int("workers", 1, "scenarios timed concurrently")
	diagonal := flag.Bool("diagonal", false, "exchange corner halo cells")
	seedFlag := flag.Int64("seed", 42, "global seed")
	density := flag.Float64("density", 0.1, "initial live cell probability")
	out := flag.String("out", "", "CSV file, empty writes csv/results-<timestamp>.csv")
	flag.Parse()

	dims, err := parseDimsList(*dimsFlag)
	if err != nil {
		log.Fatalf("dims: %v", err)
	}
	sizes, err := parseSizes(*sizesFlag)
	if err != nil {
		log.Fatalf("sizes: %v", err)
	}
	if *repeats < 1 {
		log.Fatalf("repeats: need at least one timed run, got %d", *repeats)
	}
	scs := scenarios(dims, sizes)
	sw := sweep{gens: *gens, repeats: *repeats, diagonal: *diagonal, seed: *seedFlag, density: *density}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("Timing %d scenarios (%d repeats, %d generations, %d workers)\n", len(scs), *repeats, *gens, *workers)
	start := time.Now()
	results := sw.runAll(ctx, scs, *workers)

	path := *out
	if path == "" {
		path = filepath.Join("csv", "results-"+time.Now().Format("2006-01-02-15-04-05")+".csv")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Fatalf("csv dir: %v", err)
	}
	f, err := os.Create(path)
	if err != nil {
		log.Fatalf("csv: %v", err)
	}
	if err := writeCSV(f, *gens, results); err != nil {
		log.Fatalf("csv: %v", err)
	}
	if err := f.Close(); err != nil {
		log.Fatalf("csv: %v", err)
	}

	report(os.Stdout, results)
	fmt.Printf("Sweep finished in %s, wrote %s\n", time.Since(start).Round(time.Millisecond), path)
	for _, r := range results {
		if r.err != nil {
			os.Exit(1)
		}
	}
}

func report(w io.Writer, results []scenarioResult) {
	for _, r := range fastest(results) {
		if r.err != nil {
			fmt.Fprintf(w, "%-20s failed: %v\n", r.scenario, r.err)
			continue
		}
		fmt.Fprintf(w, "%-20s mean %9.2f ms  stddev %7.2f ms\n", r.scenario, r.mean, r.std)
	}
}
