package grid

import "fmt"

// InvalidShapeError reports a matrix that cannot become a grid.
type InvalidShapeError struct {
	Row    int    // Offending row, -1 when the matrix itself is empty
	Got    int    // Length (or value) found
	Want   int    // Length (or value range) expected
	Reason string
}

func (e *InvalidShapeError) Error() string {
	if e.Row < 0 {
		return "invalid grid shape: " + e.Reason
	}
	return fmt.Sprintf("invalid grid shape at row %d: %s (got %d, want %d)", e.Row, e.Reason, e.Got, e.Want)
}

// OutOfBoundsError reports a coordinate outside the grid extent.
type OutOfBoundsError struct {
	X, Y          int
	Width, Height int
}

func (e *OutOfBoundsError) Error() string {
	return fmt.Sprintf("cell (%d,%d) out of bounds for %dx%d grid", e.X, e.Y, e.Width, e.Height)
}
