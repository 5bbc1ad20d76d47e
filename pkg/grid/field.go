package grid

import "fmt"

// Field is a partition-local buffer of (H+2)x(W+2) cells: the W*H interior
// plus a one-cell halo ring. Interior coordinates run from (0,0) to (W-1,H-1);
// halo cells sit at -1 and W (or H).
type Field struct {
	W, H   int
	stride int
	cells  []uint8
}

// NewField allocates an all-dead field for a w*h interior.
func NewField(w, h int) *Field {
	return &Field{W: w, H: h, stride: w + 2, cells: make([]uint8, (w+2)*(h+2))}
}

// NewFieldFor allocates a field sized for partition p.
func NewFieldFor(p Partition) *Field { return NewField(p.Width, p.Height) }

func (f *Field) index(x, y int) int { return (y+1)*f.stride + x + 1 }

// At returns the cell at interior coordinates (x, y); -1 and W/H address the halo.
func (f *Field) At(x, y int) uint8 { return f.cells[f.index(x, y)] }

// Set stores v at (x, y); -1 and W/H address the halo.
func (f *Field) Set(x, y int, v uint8) { f.cells[f.index(x, y)] = v }

// Row returns the interior cells of row y. The slice aliases the field.
func (f *Field) Row(y int) []uint8 {
	start := f.index(0, y)
	return f.cells[start : start+f.W]
}

// IsCorner reports whether (x, y) is one of the four diagonal halo cells.
func (f *Field) IsCorner(x, y int) bool {
	return (x == -1 || x == f.W) && (y == -1 || y == f.H)
}

// Interior copies the interior into dst (row-major, W*H) and returns it.
// dst is reallocated when too small.
func (f *Field) Interior(dst []uint8) []uint8 {
	if cap(dst) < f.W*f.H {
		dst = make([]uint8, f.W*f.H)
	}
	dst = dst[:f.W*f.H]
	for y := 0; y < f.H; y++ {
		copy(dst[y*f.W:(y+1)*f.W], f.Row(y))
	}
	return dst
}

// LoadInterior replaces the interior with a row-major W*H block.
func (f *Field) LoadInterior(src []uint8) error {
	if len(src) != f.W*f.H {
		return fmt.Errorf("interior block has %d cells, want %d", len(src), f.W*f.H)
	}
	for y := 0; y < f.H; y++ {
		copy(f.Row(y), src[y*f.W:(y+1)*f.W])
	}
	return nil
}

// InteriorEqual reports whether both fields hold bitwise identical interiors.
// Halo cells are ignored.
func (f *Field) InteriorEqual(o *Field) bool {
	if f.W != o.W || f.H != o.H {
		return false
	}
	for y := 0; y < f.H; y++ {
		a, b := f.Row(y), o.Row(y)
		for x := range a {
			if a[x] != b[x] {
				return false
			}
		}
	}
	return true
}

// Live counts live interior cells.
func (f *Field) Live() int {
	n := 0
	for y := 0; y < f.H; y++ {
		for _, c := range f.Row(y) {
			if c != 0 {
				n++
			}
		}
	}
	return n
}

// Clear kills every cell, halo included.
func (f *Field) Clear() {
	for i := range f.cells {
		f.cells[i] = 0
	}
}

// StripLen is the number of cells packed for side d. With corners the
// vertical strips span the halo rows as well.
func (f *Field) StripLen(d Direction, corners bool) int {
	if d.Vertical() {
		return f.W
	}
	if corners {
		return f.H + 2
	}
	return f.H
}

// Pack copies the interior row or column adjacent to side d into buf, growing
// it if needed, and returns the packed slice. With corners the left and right
// columns include the halo rows, which carries diagonal cells on a second
// exchange phase.
func (f *Field) Pack(d Direction, corners bool, buf []byte) []byte {
	n := f.StripLen(d, corners)
	if cap(buf) < n {
		buf = make([]byte, n)
	}
	buf = buf[:n]
	switch d {
	case Up:
		copy(buf, f.Row(0))
	case Down:
		copy(buf, f.Row(f.H-1))
	case Left, Right:
		x := 0
		if d == Right {
			x = f.W - 1
		}
		y0 := 0
		if corners {
			y0 = -1
		}
		for i := range buf {
			buf[i] = f.At(x, y0+i)
		}
	}
	return buf
}

// Unpack writes a strip received from the neighbor on side d into the halo
// cells one step outside the interior on that side.
func (f *Field) Unpack(d Direction, corners bool, data []byte) error {
	if want := f.StripLen(d, corners); len(data) != want {
		return fmt.Errorf("%s strip has %d cells, want %d", d, len(data), want)
	}
	switch d {
	case Up:
		copy(f.cells[f.index(0, -1):], data)
	case Down:
		copy(f.cells[f.index(0, f.H):], data)
	case Left, Right:
		x := -1
		if d == Right {
			x = f.W
		}
		y0 := 0
		if corners {
			y0 = -1
		}
		for i, v := range data {
			f.Set(x, y0+i, v)
		}
	}
	return nil
}
