package app

import (
	"errors"
	"flag"
	"io"
	"slices"
	"testing"

	"halo-life/pkg/grid"
)

func parse(t *testing.T, args ...string) *Config {
	t.Helper()
	c := NewConfig()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	c.Bind(fs)
	if err := fs.Parse(args); err != nil {
		t.Fatalf("parse %v: %v", args, err)
	}
	return c
}

func TestDefaultsValidate(t *testing.T) {
	c := NewConfig()
	cfg, err := c.DriverConfig()
	if err != nil {
		t.Fatalf("defaults: %v", err)
	}
	if cfg.Topology.DimX != 2 || cfg.Topology.DimY != 2 || !cfg.Topology.Periodic {
		t.Fatalf("default topology %+v", cfg.Topology)
	}
}

func TestFlagsReachDriverConfig(t *testing.T) {
	c := parse(t, "-w", "60", "-h", "40", "-dims", "3x2", "-periodic=false", "-diagonal", "-gens", "7", "-every", "5")
	cfg, err := c.DriverConfig()
	if err != nil {
		t.Fatalf("driver config: %v", err)
	}
	want := grid.Topology{DimX: 3, DimY: 2, NDims: 2}
	if cfg.Topology != want || cfg.Grid != (grid.GlobalGrid{Width: 60, Height: 40}) {
		t.Fatalf("got %+v on %+v", cfg.Topology, cfg.Grid)
	}
	if !cfg.Diagonal || cfg.MaxGenerations != 7 || cfg.SnapshotEvery != 5 {
		t.Fatalf("driver config %+v", cfg)
	}
}

func TestOneDimensionalSplitsColumns(t *testing.T) {
	c := parse(t, "-ndims", "1", "-np", "4")
	topo, err := c.Topology()
	if err != nil {
		t.Fatalf("topology: %v", err)
	}
	if topo.DimX != 4 || topo.DimY != 1 {
		t.Fatalf("1-D topology %+v", topo)
	}
	p, err := grid.Derive(grid.GlobalGrid{Width: c.Width, Height: c.Height}, topo, 1)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if p.Width != c.Width/4 || p.Height != c.Height || p.OffsetX != c.Width/4 || p.OffsetY != 0 {
		t.Fatalf("participant 1 owns %+v, want a full-height column strip", p)
	}
}

func TestValidateRejects(t *testing.T) {
	cases := map[string][]string{
		"uneven":     {"-w", "10", "-dims", "3x1"},
		"density":    {"-density", "1.5"},
		"transport":  {"-transport", "udp"},
		"tcp rank":   {"-transport", "tcp", "-peers", "a:1,b:2", "-rank", "2"},
		"tcp dims":   {"-transport", "tcp", "-peers", "a:1,b:2", "-dims", "2x2"},
		"dims count": {"-ndims", "1", "-dims", "2x2"},
	}
	for name, args := range cases {
		err := parse(t, args...).Validate()
		var cerr *grid.ConfigurationError
		if !errors.As(err, &cerr) {
			t.Fatalf("%s: got %v, want ConfigurationError", name, err)
		}
	}
}

func TestPeerList(t *testing.T) {
	c := parse(t, "-peers", " a:1, b:2 ,,c:3")
	if got := c.PeerList(); !slices.Equal(got, []string{"a:1", "b:2", "c:3"}) {
		t.Fatalf("peers = %v", got)
	}
	c.Transport = "tcp"
	topo, err := c.Topology()
	if err != nil {
		t.Fatalf("topology: %v", err)
	}
	if topo.Participants() != 3 {
		t.Fatalf("tcp topology %+v", topo)
	}
}

func TestSimParams(t *testing.T) {
	m := parse(t, "-w", "32", "-dims", "4x2", "-periodic=false").SimParams()
	if m["w"] != "32" || m["dims"] != "4x2" || m["bounded"] != "true" || m["periodic"] != "false" {
		t.Fatalf("sim params %v", m)
	}
}
