package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"time"

	"halo-life/internal/app"
	"halo-life/internal/rpcnet"
	"halo-life/internal/vtk"
	"halo-life/pkg/driver"
	"halo-life/pkg/seed"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	run, err := cfg.DriverConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	in, err := seed.New(cfg.Init, cfg.SeedParams())
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	var opts []driver.Option
	if cfg.Snapshots != "" {
		w, err := vtk.NewWriter(cfg.Snapshots, run.Grid)
		if err != nil {
			log.Fatalf("snapshots: %v", err)
		}
		opts = append(opts, driver.WithSnapshots(w))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	log.Printf("%dx%d grid on %dx%d participants, periodic=%v diagonal=%v, %s transport",
		run.Grid.Width, run.Grid.Height, run.Topology.DimX, run.Topology.DimY,
		run.Topology.Periodic, run.Diagonal, cfg.Transport)

	switch cfg.Transport {
	case "tcp":
		err = runTCP(ctx, cfg, run, in, opts)
	default:
		err = runLocal(ctx, run, in, opts)
	}
	if err != nil {
		log.Fatalf("run: %v", err)
	}
}

func runLocal(ctx context.Context, run driver.Config, in seed.Initializer, opts []driver.Option) error {
	opts = append(opts, driver.WithLogger(log.New(os.Stderr, "p0 ", log.LstdFlags)))
	board, results, err := driver.RunLocal(ctx, run, in, opts...)
	if err != nil {
		return err
	}
	res := results[0]
	log.Printf("generations=%d stable=%v live=%d (board %d) elapsed=%s",
		res.Generations, res.Stable, res.LiveCells, board.Count(), res.Elapsed.Round(time.Millisecond))
	return nil
}

func runTCP(ctx context.Context, cfg *app.Config, run driver.Config, in seed.Initializer, opts []driver.Option) error {
	peers := cfg.PeerList()
	node, err := rpcnet.Listen(peers[cfg.Rank])
	if err != nil {
		return err
	}
	if err := node.Join(ctx, cfg.Rank, peers); err != nil {
		node.Close()
		return err
	}
	logger := log.New(os.Stderr, fmt.Sprintf("p%d ", cfg.Rank), log.LstdFlags)
	opts = append(opts, driver.WithLogger(logger))
	d, err := driver.New(run, node, in, opts...)
	if err != nil {
		node.Close()
		return err
	}
	defer d.Close()

	res, err := d.Run(ctx)
	if err != nil {
		return err
	}
	p := d.Partition()
	logger.Printf("owns %dx%d at (%d,%d); generations=%d stable=%v live=%d elapsed=%s",
		p.Width, p.Height, p.OffsetX, p.OffsetY, res.Generations, res.Stable, res.LiveCells,
		res.Elapsed.Round(time.Millisecond))
	sw := d.Stats()
	for _, phase := range sw.Phases() {
		logger.Printf("%-8s total %s mean %s", phase, sw.Total(phase).Round(time.Microsecond), sw.Mean(phase))
	}
	return nil
}
