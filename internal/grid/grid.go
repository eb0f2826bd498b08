// Package grid holds the static map a route is searched on.
package grid

// Grid is an immutable rectangular array of cells. It is safe for concurrent
// readers.
type Grid struct {
	cells  [][]Cell
	width  int
	height int
}

// Build creates a grid from a row-major 0/1 matrix.
//
// Rules:
//   - 1 becomes a passable cell, 0 a blocked cell
//   - x is the column index, y the row index
//   - every row must be as long as the first one
func Build(matrix [][]int) (*Grid, error) {
	if len(matrix) == 0 {
		return nil, &InvalidShapeError{Row: -1, Reason: "matrix has no rows"}
	}
	width := len(matrix[0])
	if width == 0 {
		return nil, &InvalidShapeError{Row: 0, Got: 0, Want: 1, Reason: "first row is empty"}
	}

	cells := make([][]Cell, len(matrix))
	for y, row := range matrix {
		if len(row) != width {
			return nil, &InvalidShapeError{Row: y, Got: len(row), Want: width, Reason: "row length differs from first row"}
		}
		cells[y] = make([]Cell, width)
		for x, v := range row {
			if v != 0 && v != 1 {
				return nil, &InvalidShapeError{Row: y, Got: v, Want: 1, Reason: "cell value must be 0 or 1"}
			}
			cells[y][x] = Cell{X: x, Y: y, Passable: v == 1}
		}
	}

	return &Grid{cells: cells, width: width, height: len(matrix)}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// InBounds reports whether p lies inside the grid.
func (g *Grid) InBounds(p Point) bool {
	return p.X >= 0 && p.X < g.width && p.Y >= 0 && p.Y < g.height
}

// CellAt returns the cell at (x, y).
func (g *Grid) CellAt(x, y int) (Cell, error) {
	if !g.InBounds(Point{X: x, Y: y}) {
		return Cell{}, &OutOfBoundsError{X: x, Y: y, Width: g.width, Height: g.height}
	}
	return g.cells[y][x], nil
}

// NeighborsOf returns the passable cells directly above, right of, below and
// left of c, in that order.
func (g *Grid) NeighborsOf(c Cell) []Cell {
	neighbors := make([]Cell, 0, len(directions))
	for _, d := range directions {
		p := Point{X: c.X + d.X, Y: c.Y + d.Y}
		if !g.InBounds(p) {
			continue
		}
		if n := g.cells[p.Y][p.X]; n.Passable {
			neighbors = append(neighbors, n)
		}
	}
	return neighbors
}

// Passable returns the number of passable cells.
func (g *Grid) Passable() int {
	n := 0
	for _, row := range g.cells {
		for _, c := range row {
			if c.Passable {
				n++
			}
		}
	}
	return n
}

// Matrix returns a fresh copy of the 0/1 matrix the grid was built from.
func (g *Grid) Matrix() [][]int {
	matrix := make([][]int, g.height)
	for y, row := range g.cells {
		matrix[y] = make([]int, g.width)
		for x, c := range row {
			if c.Passable {
				matrix[y][x] = 1
			}
		}
	}
	return matrix
}
