package grid

// NoNeighbor marks a side of a partition that has no neighbor (non-periodic edge).
const NoNeighbor = -1

// Direction names one of the four cardinal sides of a partition.
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Directions lists the four sides in exchange order.
var Directions = [4]Direction{Up, Down, Left, Right}

// Opposite returns the facing side.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Vertical reports whether d is Up or Down.
func (d Direction) Vertical() bool { return d == Up || d == Down }

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unknown"
}

// Coord is a position in the decomposition grid.
type Coord struct {
	X, Y int
}

// Partition is the rectangle of the global grid owned by one participant.
type Partition struct {
	Index     int
	Coord     Coord
	Width     int
	Height    int
	OffsetX   int
	OffsetY   int
	Neighbors [4]int
}

// Neighbor returns the participant on side d, or NoNeighbor.
func (p Partition) Neighbor(d Direction) int { return p.Neighbors[d] }

// Has reports whether side d has a neighbor.
func (p Partition) Has(d Direction) bool { return p.Neighbors[d] != NoNeighbor }

// Derive computes the partition owned by participant self. It is a pure
// function of its inputs.
func Derive(g GlobalGrid, t Topology, self int) (Partition, error) {
	if err := t.Validate(g); err != nil {
		return Partition{}, err
	}
	if self < 0 || self >= t.Participants() {
		return Partition{}, configErrorf(self, "index outside decomposition of %d participants", t.Participants())
	}
	c := t.CoordOf(self)
	w, h := g.Width/t.DimX, g.Height/t.DimY
	p := Partition{
		Index:   self,
		Coord:   c,
		Width:   w,
		Height:  h,
		OffsetX: c.X * w,
		OffsetY: c.Y * h,
	}
	p.Neighbors[Up] = t.RankAt(Coord{X: c.X, Y: c.Y - 1})
	p.Neighbors[Down] = t.RankAt(Coord{X: c.X, Y: c.Y + 1})
	p.Neighbors[Left] = t.RankAt(Coord{X: c.X - 1, Y: c.Y})
	p.Neighbors[Right] = t.RankAt(Coord{X: c.X + 1, Y: c.Y})
	return p, nil
}

// DeriveAll returns the partitions of every participant in index order.
func DeriveAll(g GlobalGrid, t Topology) ([]Partition, error) {
	if err := t.Validate(g); err != nil {
		return nil, err
	}
	parts := make([]Partition, t.Participants())
	for i := range parts {
		p, err := Derive(g, t, i)
		if err != nil {
			return nil, err
		}
		parts[i] = p
	}
	return parts, nil
}
