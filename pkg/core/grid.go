package core

// ByteGrid stores a 2D grid of byte-sized cell values in row-major order.
// It is used to reassemble partition interiors into one global picture.
type ByteGrid struct {
	W, H int
	data []uint8
}

// NewByteGrid allocates a grid with the given dimensions.
func NewByteGrid(w, h int) *ByteGrid {
	if w <= 0 {
		w = 1
	}
	if h <= 0 {
		h = 1
	}
	return &ByteGrid{W: w, H: h, data: make([]uint8, w*h)}
}

// Cells exposes the backing slice so callers can read/write values directly.
func (g *ByteGrid) Cells() []uint8 { return g.data }

// Index returns the linear slice index for coordinates (x, y).
func (g *ByteGrid) Index(x, y int) int { return y*g.W + x }

// At returns the cell at (x, y) after toroidal wrapping.
func (g *ByteGrid) At(x, y int) uint8 {
	x, y = g.Wrap(x, y)
	return g.data[g.Index(x, y)]
}

// Set stores v at (x, y) after toroidal wrapping.
func (g *ByteGrid) Set(x, y int, v uint8) {
	x, y = g.Wrap(x, y)
	g.data[g.Index(x, y)] = v
}

// Wrap applies toroidal wrapping to the provided coordinates.
func (g *ByteGrid) Wrap(x, y int) (int, int) {
	x = (x%g.W + g.W) % g.W
	y = (y%g.H + g.H) % g.H
	return x, y
}

// Blit copies a w*h row-major block into the grid with its top-left corner at
// (offX, offY). Rows or columns falling outside the grid are dropped.
func (g *ByteGrid) Blit(block []uint8, offX, offY, w, h int) {
	for y := 0; y < h; y++ {
		gy := offY + y
		if gy < 0 || gy >= g.H {
			continue
		}
		for x := 0; x < w; x++ {
			gx := offX + x
			if gx < 0 || gx >= g.W {
				continue
			}
			g.data[g.Index(gx, gy)] = block[y*w+x]
		}
	}
}

// Count returns the number of non-zero cells.
func (g *ByteGrid) Count() int {
	n := 0
	for _, c := range g.data {
		if c != 0 {
			n++
		}
	}
	return n
}

// Clear fills the grid with zeros.
func (g *ByteGrid) Clear() {
	for i := range g.data {
		g.data[i] = 0
	}
}
