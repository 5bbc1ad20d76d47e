package cluster

import (
	"errors"
	"slices"
	"testing"

	"halo-life/pkg/core"
	"halo-life/pkg/grid"
)

func glider(x, y, n int) []uint8 {
	cells := make([]uint8, n*n)
	for _, p := range [][2]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}} {
		cells[((p[1]+y)%n)*n+(p[0]+x)%n] = 1
	}
	return cells
}

func TestClusterMovesGlider(t *testing.T) {
	c, err := New(FromMap(map[string]string{
		"w": "8", "h": "8", "dims": "2x2", "diagonal": "true",
		"init": "pattern", "pattern": "glider", "converge": "false",
	}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()
	if !slices.Equal(c.Cells(), glider(0, 0, 8)) {
		t.Fatalf("initial board = %v", c.Cells())
	}
	for i := 0; i < 8; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
	if !slices.Equal(c.Cells(), glider(2, 2, 8)) {
		t.Fatalf("after 8 generations board = %v", c.Cells())
	}
	if c.Generation() != 8 {
		t.Fatalf("generation = %d", c.Generation())
	}
	snap := c.Parameters()
	if p, ok := snap.Lookup("generation"); !ok || p.Value != "8" {
		t.Fatalf("generation parameter = %+v", p)
	}
	if p, ok := snap.Lookup("live"); !ok || p.Value != "5" {
		t.Fatalf("live parameter = %+v", p)
	}
}

func TestClusterStopsWhenStable(t *testing.T) {
	c, err := New(FromMap(map[string]string{"w": "16", "h": "16", "dims": "4x1", "init": "empty"}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()
	for i := 0; i < 3; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if !c.Stable() || c.Generation() != 1 {
		t.Fatalf("stable=%v generation=%d, want stable at 1", c.Stable(), c.Generation())
	}
}

func TestClusterResetIsDeterministic(t *testing.T) {
	c, err := New(FromMap(map[string]string{"w": "32", "h": "32", "dims": "2x2", "converge": "false"}))
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	defer c.Close()
	c.Reset(42)
	for i := 0; i < 5; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	first := slices.Clone(c.Cells())
	c.Reset(42)
	if c.Generation() != 0 {
		t.Fatalf("generation after reset = %d", c.Generation())
	}
	for i := 0; i < 5; i++ {
		if err := c.Step(); err != nil {
			t.Fatalf("step: %v", err)
		}
	}
	if !slices.Equal(first, c.Cells()) {
		t.Fatal("same seed produced different boards")
	}
}

func TestClusterRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Width = 10
	cfg.DimX = 3
	var cerr *grid.ConfigurationError
	if _, err := New(cfg); !errors.As(err, &cerr) {
		t.Fatalf("uneven split: got %v", err)
	}
	cfg = DefaultConfig()
	cfg.Init = "nope"
	if _, err := New(cfg); err == nil {
		t.Fatal("unknown initializer accepted")
	}
}

func TestClusterRegistered(t *testing.T) {
	f, ok := core.Sims()["cluster"]
	if !ok {
		t.Fatal("cluster sim not registered")
	}
	sim, err := f(map[string]string{"w": "16", "h": "16", "dims": "2x1"})
	if err != nil {
		t.Fatalf("factory: %v", err)
	}
	if sim.Size() != (core.Size{W: 16, H: 16}) || sim.Name() != "cluster" {
		t.Fatalf("sim %s size %+v", sim.Name(), sim.Size())
	}
	if _, ok := sim.(core.ParameterProvider); !ok {
		t.Fatal("cluster must expose parameters")
	}
	sim.(*Cluster).Close()
}
