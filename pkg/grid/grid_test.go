package grid

import (
	"errors"
	"slices"
	"testing"
)

func TestDeriveRejectsUnevenSplit(t *testing.T) {
	_, err := Derive(GlobalGrid{Width: 10, Height: 8}, Topology{DimX: 3, DimY: 2}, 0)
	var cfgErr *ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError, got %v", err)
	}

	_, err = Derive(GlobalGrid{Width: 8, Height: 9}, Topology{DimX: 2, DimY: 2}, 0)
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for height, got %v", err)
	}
}

func TestDeriveRejectsBadIndexAndDimensionality(t *testing.T) {
	g := GlobalGrid{Width: 8, Height: 8}
	var cfgErr *ConfigurationError
	if _, err := Derive(g, Topology{DimX: 2, DimY: 2}, 4); !errors.As(err, &cfgErr) {
		t.Fatalf("index 4 of 4 participants accepted: %v", err)
	}
	if _, err := Derive(g, Topology{DimX: 2, DimY: 2, NDims: 1}, 0); !errors.As(err, &cfgErr) {
		t.Fatalf("1-D topology with two y factors accepted: %v", err)
	}
}

func TestDerivePeriodicNeighbors(t *testing.T) {
	g := GlobalGrid{Width: 12, Height: 8}
	topo := Topology{DimX: 3, DimY: 2, Periodic: true}

	p, err := Derive(g, topo, 0)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if p.Width != 4 || p.Height != 4 || p.OffsetX != 0 || p.OffsetY != 0 {
		t.Fatalf("unexpected geometry %+v", p)
	}
	want := [4]int{Up: 3, Down: 3, Left: 2, Right: 1}
	if p.Neighbors != want {
		t.Fatalf("neighbors = %v, want %v", p.Neighbors, want)
	}

	p, err = Derive(g, topo, 5)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	if p.Coord != (Coord{X: 2, Y: 1}) || p.OffsetX != 8 || p.OffsetY != 4 {
		t.Fatalf("unexpected placement %+v", p)
	}
	want = [4]int{Up: 2, Down: 2, Left: 4, Right: 3}
	if p.Neighbors != want {
		t.Fatalf("neighbors = %v, want %v", p.Neighbors, want)
	}
}

func TestDeriveBoundedNeighbors(t *testing.T) {
	g := GlobalGrid{Width: 8, Height: 8}
	topo := Topology{DimX: 2, DimY: 2}

	p, err := Derive(g, topo, 0)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	want := [4]int{Up: NoNeighbor, Down: 2, Left: NoNeighbor, Right: 1}
	if p.Neighbors != want {
		t.Fatalf("neighbors = %v, want %v", p.Neighbors, want)
	}
	if p.Has(Up) || !p.Has(Right) {
		t.Fatal("Has disagrees with neighbor table")
	}
}

func TestDeriveSingleParticipantIsOwnNeighbor(t *testing.T) {
	p, err := Derive(GlobalGrid{Width: 4, Height: 4}, Topology{DimX: 1, DimY: 1, Periodic: true}, 0)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	for _, d := range Directions {
		if p.Neighbor(d) != 0 {
			t.Fatalf("%s neighbor = %d, want self", d, p.Neighbor(d))
		}
	}
}

func TestParseDims(t *testing.T) {
	x, y, err := ParseDims("2x3", 2)
	if err != nil || x != 2 || y != 3 {
		t.Fatalf("ParseDims(2x3) = %d,%d,%v", x, y, err)
	}
	x, y, err = ParseDims("4", 1)
	if err != nil || x != 4 || y != 1 {
		t.Fatalf("ParseDims(4) = %d,%d,%v", x, y, err)
	}
	var cfgErr *ConfigurationError
	if _, _, err := ParseDims("2x2", 1); !errors.As(err, &cfgErr) {
		t.Fatalf("factor count mismatch accepted: %v", err)
	}
	if _, _, err := ParseDims("0x2", 2); !errors.As(err, &cfgErr) {
		t.Fatalf("zero factor accepted: %v", err)
	}
}

func TestFactorDims(t *testing.T) {
	cases := map[int][2]int{1: {1, 1}, 4: {2, 2}, 6: {3, 2}, 7: {7, 1}, 12: {4, 3}}
	for n, want := range cases {
		x, y := FactorDims(n)
		if x != want[0] || y != want[1] {
			t.Fatalf("FactorDims(%d) = %d,%d want %v", n, x, y, want)
		}
	}
}

func TestPackUnpackStrips(t *testing.T) {
	f := NewField(3, 2)
	if err := f.LoadInterior([]uint8{
		1, 0, 1,
		0, 1, 1,
	}); err != nil {
		t.Fatalf("load: %v", err)
	}

	if got := f.Pack(Up, false, nil); !slices.Equal(got, []byte{1, 0, 1}) {
		t.Fatalf("up strip = %v", got)
	}
	if got := f.Pack(Down, false, nil); !slices.Equal(got, []byte{0, 1, 1}) {
		t.Fatalf("down strip = %v", got)
	}
	if got := f.Pack(Left, false, nil); !slices.Equal(got, []byte{1, 0}) {
		t.Fatalf("left strip = %v", got)
	}
	if got := f.Pack(Right, false, nil); !slices.Equal(got, []byte{1, 1}) {
		t.Fatalf("right strip = %v", got)
	}

	if err := f.Unpack(Up, false, []byte{1, 1, 1}); err != nil {
		t.Fatalf("unpack up: %v", err)
	}
	if err := f.Unpack(Right, false, []byte{1, 0}); err != nil {
		t.Fatalf("unpack right: %v", err)
	}
	for x := 0; x < 3; x++ {
		if f.At(x, -1) != 1 {
			t.Fatalf("halo (%d,-1) not written", x)
		}
	}
	if f.At(3, 0) != 1 || f.At(3, 1) != 0 {
		t.Fatal("right halo not written")
	}
	if f.At(-1, -1) != 0 || f.At(3, -1) != 0 {
		t.Fatal("corner cells must not be touched by a plain exchange")
	}
	if err := f.Unpack(Left, false, []byte{1, 1, 1}); err == nil {
		t.Fatal("wrong strip size accepted")
	}
}

func TestPackWithCornersSpansHaloRows(t *testing.T) {
	f := NewField(2, 2)
	f.Set(0, -1, 1)
	f.Set(0, 0, 1)
	f.Set(0, 2, 1)
	got := f.Pack(Left, true, nil)
	if !slices.Equal(got, []byte{1, 1, 0, 1}) {
		t.Fatalf("left strip with corners = %v", got)
	}
	if err := f.Unpack(Right, true, got); err != nil {
		t.Fatalf("unpack: %v", err)
	}
	if f.At(2, -1) != 1 || f.At(2, 2) != 1 {
		t.Fatal("corner halo cells not carried")
	}
}

func TestInteriorEqualIgnoresHalo(t *testing.T) {
	a, b := NewField(3, 3), NewField(3, 3)
	a.Set(-1, 1, 1)
	if !a.InteriorEqual(b) {
		t.Fatal("halo difference must not count")
	}
	b.Set(1, 1, 1)
	if a.InteriorEqual(b) {
		t.Fatal("interior difference missed")
	}
	if b.Live() != 1 {
		t.Fatalf("live = %d", b.Live())
	}
}
