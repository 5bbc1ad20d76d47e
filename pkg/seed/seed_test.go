package seed

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"halo-life/pkg/core"
	"halo-life/pkg/grid"
)

func TestParseRLEGlider(t *testing.T) {
	src := "#N Glider\n#C comment line\nx = 3, y = 3, rule = B3/S23\nbo$2bo$3o!\n"
	s, err := ParseRLE(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := []uint8{
		0, 1, 0,
		0, 0, 1,
		1, 1, 1,
	}
	if s.W != 3 || s.H != 3 || !slices.Equal(s.Cells, want) {
		t.Fatalf("glider = %+v", s)
	}
}

func TestParseRLEBlankLineRunsAndWrappedBody(t *testing.T) {
	src := "x = 4, y = 4\no2$\n3bo!"
	s, err := ParseRLE(strings.NewReader(src))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := make([]uint8, 16)
	want[0] = 1
	want[2*4+3] = 1
	if !slices.Equal(s.Cells, want) {
		t.Fatalf("cells = %v", s.Cells)
	}
}

func TestParseRLEErrors(t *testing.T) {
	cases := map[string]string{
		"missing header": "bo$2bo$3o!",
		"bad header":     "x = 0, y = 3\n3o!",
		"overflow":       "x = 2, y = 1\n3o!",
		"too many rows":  "x = 1, y = 1\no$o!",
	}
	for name, src := range cases {
		if _, err := ParseRLE(strings.NewReader(src)); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
}

func TestBuiltinsParse(t *testing.T) {
	live := map[string]int{"glider": 5, "blinker": 3, "block": 4, "rpent": 5, "acorn": 7, "lwss": 9, "gun": 36}
	for _, name := range BuiltinNames() {
		s, ok := Builtin(name)
		if !ok {
			t.Fatalf("builtin %s missing", name)
		}
		if want, ok := live[name]; ok && s.Live() != want {
			t.Fatalf("builtin %s has %d live cells, want %d", name, s.Live(), want)
		}
	}
	if _, ok := Builtin("nope"); ok {
		t.Fatal("unknown builtin reported present")
	}
}

func partitions(t *testing.T, w, h, dx, dy int) []grid.Partition {
	t.Helper()
	parts, err := grid.DeriveAll(grid.GlobalGrid{Width: w, Height: h}, grid.Topology{DimX: dx, DimY: dy, Periodic: true, NDims: 2})
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	return parts
}

// assemble initializes every partition and stitches the interiors together.
func assemble(t *testing.T, in Initializer, w, h, dx, dy int) []uint8 {
	t.Helper()
	out := core.NewByteGrid(w, h)
	for _, p := range partitions(t, w, h, dx, dy) {
		f := grid.NewFieldFor(p)
		if err := in.Init(p, f); err != nil {
			t.Fatalf("init partition %d: %v", p.Index, err)
		}
		out.Blit(f.Interior(nil), p.OffsetX, p.OffsetY, p.Width, p.Height)
	}
	return out.Cells()
}

func TestPatternSpansPartitions(t *testing.T) {
	glider, _ := Builtin("glider")
	in := Pattern{Shape: glider, X: 3, Y: 3}
	single := assemble(t, in, 8, 8, 1, 1)
	split := assemble(t, in, 8, 8, 2, 2)
	if !slices.Equal(single, split) {
		t.Fatal("pattern placement depends on the decomposition")
	}
	want := make([]uint8, 64)
	for _, p := range [][2]int{{4, 3}, {5, 4}, {3, 5}, {4, 5}, {5, 5}} {
		want[p[1]*8+p[0]] = 1
	}
	if !slices.Equal(split, want) {
		t.Fatalf("glider at (3,3) = %v", split)
	}
}

func TestPatternClipsAtGridEdge(t *testing.T) {
	block, _ := Builtin("block")
	cells := assemble(t, Pattern{Shape: block, X: 7, Y: 7}, 8, 8, 2, 2)
	live := 0
	for _, c := range cells {
		live += int(c)
	}
	if live != 1 || cells[63] != 1 {
		t.Fatalf("clipped block = %v", cells)
	}
}

func TestRandomIsPerParticipant(t *testing.T) {
	in := Random{Seed: 5, Density: 0.5}
	a := assemble(t, in, 16, 16, 2, 2)
	b := assemble(t, in, 16, 16, 2, 2)
	if !slices.Equal(a, b) {
		t.Fatal("random fill must be deterministic")
	}
	parts := partitions(t, 16, 16, 2, 2)
	f0, f1 := grid.NewFieldFor(parts[0]), grid.NewFieldFor(parts[1])
	_ = in.Init(parts[0], f0)
	_ = in.Init(parts[1], f1)
	if slices.Equal(f0.Interior(nil), f1.Interior(nil)) {
		t.Fatal("participants should draw from different streams")
	}
}

func TestRandomDensityBounds(t *testing.T) {
	for _, d := range []float64{0, 1} {
		cells := assemble(t, Random{Seed: 1, Density: d}, 8, 8, 2, 1)
		for _, c := range cells {
			if c != uint8(d) {
				t.Fatalf("density %v produced cell %d", d, c)
			}
		}
	}
	p := partitions(t, 8, 8, 1, 1)[0]
	if err := (Random{Density: 1.5}).Init(p, grid.NewFieldFor(p)); err == nil {
		t.Fatal("density above one accepted")
	}
}

func TestBoardCopiesRectangles(t *testing.T) {
	cells := make([]uint8, 6*4)
	for i := range cells {
		cells[i] = uint8(i % 2)
	}
	if got := assemble(t, Board{Cells: cells, Width: 6}, 6, 4, 3, 2); !slices.Equal(got, cells) {
		t.Fatalf("board round trip = %v", got)
	}
	p := partitions(t, 6, 4, 1, 1)[0]
	if err := (Board{Cells: cells[:12], Width: 6}).Init(p, grid.NewFieldFor(p)); err == nil {
		t.Fatal("short board accepted")
	}
}

func TestRegistry(t *testing.T) {
	for _, name := range []string{"empty", "pattern", "random"} {
		if _, ok := Initializers()[name]; !ok {
			t.Fatalf("initializer %s not registered", name)
		}
	}
	in, err := New("random", map[string]string{"seed": "9", "density": "0.25"})
	if err != nil {
		t.Fatalf("new random: %v", err)
	}
	if r, ok := in.(Random); !ok || r.Seed != 9 || r.Density != 0.25 {
		t.Fatalf("random from map = %#v", in)
	}
	if _, err := New("missing", nil); err == nil {
		t.Fatal("unknown initializer accepted")
	}
	if _, err := New("pattern", map[string]string{"pattern": "no-such-pattern.rle"}); err == nil {
		t.Fatal("unreadable pattern accepted")
	}
}

func TestLoadShapeFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "blinker.rle")
	if err := os.WriteFile(path, []byte("x = 3, y = 1\n3o!\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	in, err := New("pattern", map[string]string{"pattern": path, "x": "1", "y": "2"})
	if err != nil {
		t.Fatalf("new pattern: %v", err)
	}
	got := assemble(t, in, 4, 4, 2, 2)
	want := make([]uint8, 16)
	want[9], want[10], want[11] = 1, 1, 1
	if !slices.Equal(got, want) {
		t.Fatalf("blinker from file = %v", got)
	}
}

func TestFromMapIgnoresInvalid(t *testing.T) {
	c := FromMap(map[string]string{"density": "2", "seed": "x"})
	if c != DefaultConfig() {
		t.Fatalf("invalid values changed config: %+v", c)
	}
}
