// Package seed provides initial field contents for partitioned runs.
package seed

import (
	"fmt"

	"halo-life/pkg/core"
	"halo-life/pkg/grid"
)

// Initializer fills the interior of one participant's field. It matches
// driver.Initializer.
type Initializer interface {
	Init(p grid.Partition, f *grid.Field) error
}

// Empty leaves every cell dead.
type Empty struct{}

// Init clears the field.
func (Empty) Init(p grid.Partition, f *grid.Field) error {
	f.Clear()
	return nil
}

// Random sets each cell alive with probability Density. The stream of every
// participant is derived from (Seed, participant index), so the board depends
// on the decomposition.
type Random struct {
	Seed    int64
	Density float64
}

// Init fills the interior row by row.
func (r Random) Init(p grid.Partition, f *grid.Field) error {
	if r.Density < 0 || r.Density > 1 {
		return fmt.Errorf("seed: density %v outside [0,1]", r.Density)
	}
	rng := core.SeedFor(r.Seed, p.Index)
	for y := 0; y < p.Height; y++ {
		rng.FillDensity(f.Row(y), r.Density)
	}
	return nil
}

// Board copies a participant's rectangle out of a row-major global board.
// The result does not depend on the decomposition.
type Board struct {
	Cells []uint8
	Width int
}

// Init copies the owned rectangle.
func (b Board) Init(p grid.Partition, f *grid.Field) error {
	if b.Width <= 0 || len(b.Cells)%b.Width != 0 {
		return fmt.Errorf("seed: board of %d cells is not a multiple of width %d", len(b.Cells), b.Width)
	}
	height := len(b.Cells) / b.Width
	if p.OffsetX+p.Width > b.Width || p.OffsetY+p.Height > height {
		return fmt.Errorf("seed: partition %d at (%d,%d) %dx%d outside %dx%d board",
			p.Index, p.OffsetX, p.OffsetY, p.Width, p.Height, b.Width, height)
	}
	for y := 0; y < p.Height; y++ {
		start := (p.OffsetY+y)*b.Width + p.OffsetX
		copy(f.Row(y), b.Cells[start:start+p.Width])
	}
	return nil
}

// Pattern places a shape with its top-left corner at global (X, Y). Only the
// cells inside the participant's rectangle are written; the rest of the
// interior is cleared.
type Pattern struct {
	Shape Shape
	X, Y  int
}

// Init stamps the part of the shape owned by p.
func (pt Pattern) Init(p grid.Partition, f *grid.Field) error {
	f.Clear()
	s := pt.Shape
	for sy := 0; sy < s.H; sy++ {
		y := pt.Y + sy - p.OffsetY
		if y < 0 || y >= p.Height {
			continue
		}
		for sx := 0; sx < s.W; sx++ {
			x := pt.X + sx - p.OffsetX
			if x < 0 || x >= p.Width {
				continue
			}
			if s.Cells[sy*s.W+sx] != 0 {
				f.Set(x, y, 1)
			}
		}
	}
	return nil
}
