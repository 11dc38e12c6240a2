package model

import "fmt"

// Pos is a tile coordinate inside a territory.
type Pos struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Offsets8 lists the eight neighbour offsets, orthogonals first.
var Offsets8 = [8][2]int{
	{0, -1}, {1, 0}, {0, 1}, {-1, 0},
	{1, -1}, {1, 1}, {-1, 1}, {-1, -1},
}

func (p Pos) String() string { return fmt.Sprintf("(%d,%d)", p.X, p.Y) }

// Pack returns the row-major tile index. It doubles as the persisted
// representation of a position.
func (p Pos) Pack() int { return p.Y*Size + p.X }

// Unpack is the inverse of Pack.
func Unpack(i int) Pos { return Pos{X: i % Size, Y: i / Size} }

func (p Pos) InBounds() bool {
	return p.X >= 0 && p.X < Size && p.Y >= 0 && p.Y < Size
}

// OnBorder reports whether p is on one of the four grid edges.
func (p Pos) OnBorder() bool {
	return p.X == 0 || p.Y == 0 || p.X == Size-1 || p.Y == Size-1
}

func (p Pos) Add(dx, dy int) Pos { return Pos{X: p.X + dx, Y: p.Y + dy} }

// Range is the Chebyshev distance, the number of 8-directional steps
// between two tiles on open ground.
func (p Pos) Range(q Pos) int {
	dx := p.X - q.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - q.Y
	if dy < 0 {
		dy = -dy
	}
	return max(dx, dy)
}

// Neighbors returns the in-bounds 8-neighbours of p.
func (p Pos) Neighbors() []Pos {
	out := make([]Pos, 0, 8)
	for _, o := range Offsets8 {
		n := p.Add(o[0], o[1])
		if n.InBounds() {
			out = append(out, n)
		}
	}
	return out
}

// Orthogonal returns the in-bounds 4-neighbours of p.
func (p Pos) Orthogonal() []Pos {
	out := make([]Pos, 0, 4)
	for _, o := range Offsets8[:4] {
		n := p.Add(o[0], o[1])
		if n.InBounds() {
			out = append(out, n)
		}
	}
	return out
}

// Direction is one of the four territory borders.
type Direction int

const (
	Top Direction = iota
	Right
	Bottom
	Left
)

// Directions lists the borders in their canonical order.
var Directions = [4]Direction{Top, Right, Bottom, Left}

var directionNames = [4]string{"top", "right", "bottom", "left"}

func (d Direction) String() string {
	if d < 0 || int(d) >= len(directionNames) {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

func (d Direction) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Direction) UnmarshalText(b []byte) error {
	for i, n := range directionNames {
		if n == string(b) {
			*d = Direction(i)
			return nil
		}
	}
	return fmt.Errorf("unknown direction %q", b)
}

// Opposite returns the border facing d.
func (d Direction) Opposite() Direction { return (d + 2) % 4 }

// BorderTiles returns the tiles along side d in walking order, corners
// excluded since they can never be exits.
func BorderTiles(d Direction) []Pos {
	out := make([]Pos, 0, Size-2)
	for i := 1; i < Size-1; i++ {
		switch d {
		case Top:
			out = append(out, Pos{X: i, Y: 0})
		case Right:
			out = append(out, Pos{X: Size - 1, Y: i})
		case Bottom:
			out = append(out, Pos{X: i, Y: Size - 1})
		case Left:
			out = append(out, Pos{X: 0, Y: i})
		}
	}
	return out
}

// NearestBorder returns the border closest to p. Ties resolve in
// Directions order.
func NearestBorder(p Pos) Direction {
	best, bestDist := Top, p.Y
	if d := Size - 1 - p.X; d < bestDist {
		best, bestDist = Right, d
	}
	if d := Size - 1 - p.Y; d < bestDist {
		best, bestDist = Bottom, d
	}
	if p.X < bestDist {
		best = Left
	}
	return best
}
