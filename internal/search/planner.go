package search

import (
	"github.com/amalg/gridroute/internal/grid"
)

// Planner binds a grid to a set of search options. It holds no per-search
// state and is safe for concurrent use.
type Planner struct {
	grid    *grid.Grid
	options []Option
}

// NewPlanner creates a planner for g. The options apply to every search.
func NewPlanner(g *grid.Grid, opts ...Option) *Planner {
	return &Planner{grid: g, options: opts}
}

// Grid returns the planner's grid.
func (p *Planner) Grid() *grid.Grid {
	return p.grid
}

// Search runs Search on the planner's grid.
func (p *Planner) Search(origin, target grid.Point) (Result, error) {
	return Search(p.grid, origin, target, p.options...)
}
