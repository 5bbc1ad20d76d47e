package grid

import (
	"math"
	"strconv"
	"strings"
)

// GlobalGrid is the logical full grid. It is never materialized on one participant.
type GlobalGrid struct {
	Width  int
	Height int
}

// Topology holds the decomposition factors and whether the global grid wraps
// at its outer edge.
type Topology struct {
	DimX     int
	DimY     int
	Periodic bool
	// NDims is the declared dimensionality, 1 or 2. Zero means 2.
	NDims int
}

// Participants returns the number of partitions in the decomposition.
func (t Topology) Participants() int { return t.DimX * t.DimY }

// Validate checks the decomposition against the global grid.
func (t Topology) Validate(g GlobalGrid) error {
	if g.Width <= 0 || g.Height <= 0 {
		return configErrorf(-1, "grid %dx%d must be positive", g.Width, g.Height)
	}
	if t.DimX <= 0 || t.DimY <= 0 {
		return configErrorf(-1, "decomposition %dx%d must be positive", t.DimX, t.DimY)
	}
	switch t.NDims {
	case 0, 2:
	case 1:
		if t.DimY != 1 {
			return configErrorf(-1, "1-D decomposition declares %d factors along y", t.DimY)
		}
	default:
		return configErrorf(-1, "unsupported dimensionality %d", t.NDims)
	}
	if g.Width%t.DimX != 0 {
		return configErrorf(-1, "width %d is not divisible by %d", g.Width, t.DimX)
	}
	if g.Height%t.DimY != 0 {
		return configErrorf(-1, "height %d is not divisible by %d", g.Height, t.DimY)
	}
	return nil
}

// CoordOf maps a linear participant index to its position in the
// decomposition grid. Participants are numbered row-major.
func (t Topology) CoordOf(index int) Coord {
	return Coord{X: index % t.DimX, Y: index / t.DimX}
}

// RankAt resolves the participant at decomposition coordinate c. Coordinates
// outside the decomposition wrap when the topology is periodic and yield
// NoNeighbor otherwise.
func (t Topology) RankAt(c Coord) int {
	if t.Periodic {
		c.X = (c.X%t.DimX + t.DimX) % t.DimX
		c.Y = (c.Y%t.DimY + t.DimY) % t.DimY
	}
	if c.X < 0 || c.X >= t.DimX || c.Y < 0 || c.Y >= t.DimY {
		return NoNeighbor
	}
	return c.Y*t.DimX + c.X
}

// ParseDims reads decomposition factors such as "4" or "2x3". The number of
// factors must agree with ndims; a single factor describes a 1-D split along x.
func ParseDims(s string, ndims int) (dimX, dimY int, err error) {
	parts := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool { return r == 'x' || r == ',' })
	if ndims == 0 {
		ndims = len(parts)
	}
	if len(parts) != ndims {
		return 0, 0, configErrorf(-1, "%d decomposition factors given for %d dimensions", len(parts), ndims)
	}
	factors := make([]int, len(parts))
	for i, p := range parts {
		v, perr := strconv.Atoi(strings.TrimSpace(p))
		if perr != nil || v <= 0 {
			return 0, 0, configErrorf(-1, "bad decomposition factor %q", p)
		}
		factors[i] = v
	}
	switch len(factors) {
	case 1:
		return factors[0], 1, nil
	case 2:
		return factors[0], factors[1], nil
	default:
		return 0, 0, configErrorf(-1, "unsupported dimensionality %d", len(factors))
	}
}

// FactorDims splits n participants into a near-square dimX*dimY arrangement
// with dimX >= dimY.
func FactorDims(n int) (dimX, dimY int) {
	if n <= 0 {
		return 1, 1
	}
	dimY = int(math.Sqrt(float64(n)))
	for dimY > 1 && n%dimY != 0 {
		dimY--
	}
	return n / dimY, dimY
}
