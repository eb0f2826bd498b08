package grid

import "fmt"

// Point is a coordinate on the grid. X is the column, Y is the row.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (p Point) String() string {
	return fmt.Sprintf("(%d,%d)", p.X, p.Y)
}

// Manhattan returns the 4-directional distance between two points.
func (p Point) Manhattan(o Point) int {
	return abs(p.X-o.X) + abs(p.Y-o.Y)
}

// Cell is one grid position. Cells are values: two lookups of the same
// coordinate compare equal.
type Cell struct {
	X        int  `json:"x"`
	Y        int  `json:"y"`
	Passable bool `json:"passable"`
}

// Pos returns the cell coordinate.
func (c Cell) Pos() Point {
	return Point{X: c.X, Y: c.Y}
}

func (c Cell) String() string {
	return c.Pos().String()
}

// Direction offsets in neighbor enumeration order: top, right, bottom, left.
var directions = [4]Point{
	{X: 0, Y: -1}, // Top
	{X: 1, Y: 0},  // Right
	{X: 0, Y: 1},  // Bottom
	{X: -1, Y: 0}, // Left
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
