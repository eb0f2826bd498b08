package search

import (
	"github.com/amalg/gridroute/internal/grid"
)

// Search runs the layered best-first expansion from origin to target.
//
// The only errors are *grid.OutOfBoundsError for origin or target. A target
// that cannot be reached is reported with Found == false and a nil error.
// A blocked origin is never expanded, so it yields an empty trace.
func Search(g *grid.Grid, origin, target grid.Point, opts ...Option) (Result, error) {
	options := Options{Expansion: ExpandLayer}
	for _, opt := range opts {
		opt(&options)
	}

	originCell, err := g.CellAt(origin.X, origin.Y)
	if err != nil {
		return Result{}, err
	}
	targetCell, err := g.CellAt(target.X, target.Y)
	if err != nil {
		return Result{}, err
	}

	res := Result{
		Origin: originCell,
		Target: targetCell,
		Scores: make(map[grid.Point]Score),
	}
	if !originCell.Passable {
		return res, nil
	}

	visited := make(map[grid.Point]bool)
	frontier := []grid.Cell{originCell}

	for step := 0; len(frontier) > 0; step++ {
		// Score the layer and pick its winner
		winner := frontier[0]
		for _, c := range frontier {
			s := Score{G: step + 1, H: c.Pos().Manhattan(target)}
			res.Scores[c.Pos()] = s
			if beats(c, s, winner, res.Scores[winner.Pos()]) {
				winner = c
			}
		}

		// The whole layer leaves the frontier, in frontier order
		for _, c := range frontier {
			visited[c.Pos()] = true
			res.Visited = append(res.Visited, c)
		}

		frontier = nextLayer(g, frontier, winner, visited, options.Expansion)
		res.Layers = step + 1
		res.Path = append(res.Path, winner)

		if winner.Pos() == target {
			res.Found = true
			return res, nil
		}
	}

	return res, nil
}

// beats reports whether c should replace the current winner w.
// Lower f wins; ties go to the lower row, then the lower column.
func beats(c grid.Cell, cs Score, w grid.Cell, ws Score) bool {
	if cs.F() != ws.F() {
		return cs.F() < ws.F()
	}
	if c.Y != w.Y {
		return c.Y < w.Y
	}
	return c.X < w.X
}

// nextLayer builds the next frontier in discovery order: parents in frontier
// order, each parent's neighbors top, right, bottom, left. A cell is queued at
// most once and never when already visited.
func nextLayer(g *grid.Grid, layer []grid.Cell, winner grid.Cell, visited map[grid.Point]bool, mode Expansion) []grid.Cell {
	parents := layer
	if mode == ExpandWinner {
		parents = []grid.Cell{winner}
	}

	var next []grid.Cell
	queued := make(map[grid.Point]bool)
	for _, p := range parents {
		for _, n := range g.NeighborsOf(p) {
			pos := n.Pos()
			if visited[pos] || queued[pos] {
				continue
			}
			queued[pos] = true
			next = append(next, n)
		}
	}
	return next
}
