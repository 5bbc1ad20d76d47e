//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"

	"halo-life/internal/app"
	"halo-life/pkg/core"
	_ "halo-life/pkg/sims/cluster"
	_ "halo-life/pkg/sims/life"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	cfg.Bind(flag.CommandLine)
	flag.Parse()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	factory, ok := core.Sims()[cfg.Sim]
	if !ok {
		log.Fatalf("unknown sim %q (have %v)", cfg.Sim, core.SimNames())
	}

	sim, err := factory(cfg.SimParams())
	if err != nil {
		log.Fatalf("sim %s: %v", cfg.Sim, err)
	}
	sim.Reset(cfg.Seed)
	if c, ok := sim.(interface{ Close() error }); ok {
		defer c.Close()
	}

	game := app.New(sim, cfg.Scale, cfg.HUD, cfg.Seed)
	size := sim.Size()

	ebiten.SetWindowTitle("halo-life: " + sim.Name())
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUD, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
