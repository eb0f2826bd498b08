package scenario

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/amalg/gridroute/internal/grid"
)

// ParseText reads a plain text grid, one row per line.
//
// Passable cells are '1' or '.', blocked cells '0' or '#'. Spaces and tabs
// between cells are ignored. Blank lines and lines starting with "//" are
// skipped.
func ParseText(r io.Reader) (*grid.Grid, error) {
	var matrix [][]int
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "//") {
			continue
		}

		row := make([]int, 0, len(text))
		for _, ch := range text {
			switch ch {
			case '1', '.':
				row = append(row, 1)
			case '0', '#':
				row = append(row, 0)
			case ' ', '\t':
			default:
				return nil, fmt.Errorf("line %d: unexpected character %q", line, ch)
			}
		}
		matrix = append(matrix, row)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read grid: %w", err)
	}
	return grid.Build(matrix)
}

// ParsePoint parses "x,y" as used on the command line.
func ParsePoint(s string) (grid.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return grid.Point{}, fmt.Errorf("point %q: want x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(xs))
	if err != nil {
		return grid.Point{}, fmt.Errorf("point %q: bad x: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(ys))
	if err != nil {
		return grid.Point{}, fmt.Errorf("point %q: bad y: %w", s, err)
	}
	return grid.Point{X: x, Y: y}, nil
}
