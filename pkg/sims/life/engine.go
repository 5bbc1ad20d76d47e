package life

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"halo-life/pkg/grid"
)

// Engine computes the next generation of one partition from a field whose
// halo ring has just been refreshed.
type Engine struct {
	// Workers bounds the number of row bands evolved in parallel. Zero uses
	// GOMAXPROCS, one evolves serially.
	Workers int
	// Diagonal counts the corner halo cells. Leave it off unless the exchange
	// populates them.
	Diagonal bool
}

// minBandRows keeps tiny partitions on a single goroutine.
const minBandRows = 16

// Evolve writes the successor of cur's interior into next's interior. It only
// reads cur, so bands of rows are independent.
func (e Engine) Evolve(cur, next *grid.Field) error {
	if cur.W != next.W || cur.H != next.H {
		return fmt.Errorf("life: evolve %dx%d into %dx%d", cur.W, cur.H, next.W, next.H)
	}
	workers := e.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	bands := cur.H / minBandRows
	if bands > workers {
		bands = workers
	}
	if bands <= 1 {
		e.evolveRows(cur, next, 0, cur.H)
		return nil
	}

	var g errgroup.Group
	g.SetLimit(workers)
	per := (cur.H + bands - 1) / bands
	for y0 := 0; y0 < cur.H; y0 += per {
		y0, y1 := y0, min(y0+per, cur.H)
		g.Go(func() error {
			e.evolveRows(cur, next, y0, y1)
			return nil
		})
	}
	return g.Wait()
}

func (e Engine) evolveRows(cur, next *grid.Field, y0, y1 int) {
	for y := y0; y < y1; y++ {
		out := next.Row(y)
		for x := 0; x < cur.W; x++ {
			out[x] = Rule(cur.At(x, y) == 1, e.Neighbors(cur, x, y))
		}
	}
}

// Neighbors counts live cells around interior cell (x, y) using the interior
// and the halo ring. Corner halo cells are skipped unless Diagonal is set.
func (e Engine) Neighbors(f *grid.Field, x, y int) int {
	n := 0
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			nx, ny := x+dx, y+dy
			if !e.Diagonal && f.IsCorner(nx, ny) {
				continue
			}
			n += int(f.At(nx, ny))
		}
	}
	return n
}
