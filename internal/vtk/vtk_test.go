package vtk

import (
	"bytes"
	"context"
	"encoding/binary"
	"math"
	"os"
	"strings"
	"testing"

	"halo-life/pkg/driver"
	"halo-life/pkg/grid"
)

func TestPieceLayout(t *testing.T) {
	w, err := NewWriter(t.TempDir(), grid.GlobalGrid{Width: 4, Height: 2})
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	if err := w.WriteSnapshot(3, []uint8{1, 0, 0, 1}, 2, 0, 2, 2); err != nil {
		t.Fatalf("write: %v", err)
	}
	data, err := os.ReadFile(w.PiecePath(1, 3))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Contains(data, []byte(`WholeExtent="2 4 0 2 0 0"`)) {
		t.Fatalf("missing extent in %q", data)
	}
	marker := []byte("<AppendedData encoding=\"raw\">\n_")
	start := bytes.Index(data, marker) + len(marker)
	if n := binary.LittleEndian.Uint64(data[start:]); n != 16 {
		t.Fatalf("appended header = %d bytes, want 16", n)
	}
	for i, want := range []float32{1, 0, 0, 1} {
		got := math.Float32frombits(binary.LittleEndian.Uint32(data[start+8+4*i:]))
		if got != want {
			t.Fatalf("value %d = %v, want %v", i, got, want)
		}
	}
	if _, err := os.Stat(w.IndexPath(3)); !os.IsNotExist(err) {
		t.Fatal("only the origin piece writes the index")
	}
}

func TestRejectsNonTilingPiece(t *testing.T) {
	w := &Writer{Dir: t.TempDir(), Prefix: "gol", Grid: grid.GlobalGrid{Width: 5, Height: 4}}
	if err := w.WriteSnapshot(0, make([]uint8, 4), 0, 0, 2, 2); err == nil {
		t.Fatal("piece that does not tile the grid accepted")
	}
	if err := w.WriteSnapshot(0, make([]uint8, 3), 0, 0, 2, 2); err == nil {
		t.Fatal("short interior accepted")
	}
}

func TestDriverSnapshots(t *testing.T) {
	g := grid.GlobalGrid{Width: 8, Height: 8}
	w, err := NewWriter(t.TempDir(), g)
	if err != nil {
		t.Fatalf("writer: %v", err)
	}
	cfg := driver.Config{
		Grid:           g,
		Topology:       grid.Topology{DimX: 2, DimY: 2, Periodic: true, NDims: 2},
		MaxGenerations: 2,
	}
	if _, _, err := driver.RunLocal(context.Background(), cfg, nil, driver.WithSnapshots(w)); err != nil {
		t.Fatalf("run: %v", err)
	}
	for gen := 0; gen <= 2; gen++ {
		for piece := 0; piece < 4; piece++ {
			if _, err := os.Stat(w.PiecePath(piece, gen)); err != nil {
				t.Fatalf("piece %d generation %d: %v", piece, gen, err)
			}
		}
		index, err := os.ReadFile(w.IndexPath(gen))
		if err != nil {
			t.Fatalf("index %d: %v", gen, err)
		}
		if n := strings.Count(string(index), "<Piece "); n != 4 {
			t.Fatalf("index lists %d pieces, want 4", n)
		}
		if !strings.Contains(string(index), `Extent="4 8 4 8 0 0" Source="gol-3-`) {
			t.Fatalf("index missing last piece: %s", index)
		}
	}
}
