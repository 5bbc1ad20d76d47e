package ui

import (
	"slices"
	"testing"

	"halo-life/pkg/core"
	"halo-life/pkg/grid"
)

func TestPartitionSegments(t *testing.T) {
	parts, err := grid.DeriveAll(grid.GlobalGrid{Width: 12, Height: 8}, grid.Topology{DimX: 3, DimY: 2, Periodic: true, NDims: 2})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	got := partitionSegments(parts, core.Size{W: 12, H: 8}, 2)
	want := []segment{
		{x1: 8, y1: 0, x2: 8, y2: 16},
		{x1: 16, y1: 0, x2: 16, y2: 16},
		{x1: 0, y1: 8, x2: 24, y2: 8},
	}
	if !slices.Equal(got, want) {
		t.Fatalf("segments = %+v", got)
	}
	if segs := partitionSegments(parts[:1], core.Size{W: 12, H: 8}, 1); len(segs) != 0 {
		t.Fatalf("single partition drew %+v", segs)
	}
}

func TestHUDLines(t *testing.T) {
	snap := core.ParameterSnapshot{Groups: []core.ParameterGroup{
		{Name: "Run", Params: []core.Parameter{
			core.IntParam("generation", "Generation", 12),
			core.FloatParam("gen_ms", "ms/generation", 1.23456),
		}},
		{Name: "Empty"},
	}}
	want := []string{"Run", "  Generation: 12", "  ms/generation: 1.23"}
	if got := hudLines(snap); !slices.Equal(got, want) {
		t.Fatalf("lines = %q", got)
	}
}
