package life

import (
	"halo-life/pkg/core"
)

// Life is the single-process reference implementation of the rule. The
// distributed engine must reproduce it cell for cell.
type Life struct {
	w, h    int
	wrap    bool
	density float64
	cur     []uint8
	nxt     []uint8
}

// New returns a Life simulation on a toroidal w*h grid.
func New(w, h int) *Life {
	cells := make([]uint8, w*h)
	return &Life{w: w, h: h, wrap: true, density: DefaultConfig().Density, cur: cells, nxt: make([]uint8, len(cells))}
}

// NewBounded returns a Life simulation whose outside is permanently dead.
func NewBounded(w, h int) *Life {
	l := New(w, h)
	l.wrap = false
	return l
}

// Name returns the simulation identifier.
func (l *Life) Name() string { return "life" }

// Size returns the grid dimensions.
func (l *Life) Size() core.Size { return core.Size{W: l.w, H: l.h} }

// Cells exposes the current grid values.
func (l *Life) Cells() []uint8 { return l.cur }

// Reset randomizes the board using the provided seed.
func (l *Life) Reset(seed int64) {
	core.NewRNG(seed).FillDensity(l.cur, l.density)
}

// Load replaces the board with a row-major w*h block.
func (l *Life) Load(cells []uint8) {
	copy(l.cur, cells)
}

// Step advances the simulation by one generation.
func (l *Life) Step() error {
	w, h := l.w, l.h
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			neighbors := 0
			for dy := -1; dy <= 1; dy++ {
				for dx := -1; dx <= 1; dx++ {
					if dx == 0 && dy == 0 {
						continue
					}
					nx, ny := x+dx, y+dy
					if l.wrap {
						nx = (nx + w) % w
						ny = (ny + h) % h
					} else if nx < 0 || nx >= w || ny < 0 || ny >= h {
						continue
					}
					neighbors += int(l.cur[ny*w+nx])
				}
			}
			idx := y*w + x
			l.nxt[idx] = Rule(l.cur[idx] == 1, neighbors)
		}
	}
	l.cur, l.nxt = l.nxt, l.cur
	return nil
}

// Rule returns the next state of a cell: alive when it has exactly three
// live neighbors, or when it is alive and has exactly two.
func Rule(alive bool, neighbors int) uint8 {
	if neighbors == 3 || (alive && neighbors == 2) {
		return 1
	}
	return 0
}

func init() {
	core.Register("life", func(cfg map[string]string) (core.Sim, error) {
		c := FromMap(cfg)
		var l *Life
		if c.Bounded {
			l = NewBounded(c.Width, c.Height)
		} else {
			l = New(c.Width, c.Height)
		}
		l.density = c.Density
		return l, nil
	})
}
