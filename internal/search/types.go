package search

import (
	"fmt"

	"github.com/amalg/gridroute/internal/grid"
)

// Expansion selects how the next frontier is built from the current layer.
type Expansion int

const (
	// ExpandLayer enqueues the unvisited neighbors of every cell in the layer.
	// The search is complete and the path has the minimum hop count.
	ExpandLayer Expansion = iota
	// ExpandWinner enqueues only the unvisited neighbors of the layer winner.
	// Cheaper, but a winner that walks into a dead end ends the search.
	ExpandWinner
)

func (e Expansion) String() string {
	switch e {
	case ExpandLayer:
		return "layer"
	case ExpandWinner:
		return "winner"
	default:
		return fmt.Sprintf("Expansion(%d)", int(e))
	}
}

// ParseExpansion converts "layer" or "winner" into an Expansion.
func ParseExpansion(s string) (Expansion, error) {
	switch s {
	case "layer", "":
		return ExpandLayer, nil
	case "winner":
		return ExpandWinner, nil
	}
	return ExpandLayer, fmt.Errorf("unknown expansion %q (want layer or winner)", s)
}

// Options defines parameters for the search.
type Options struct {
	Expansion Expansion
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithExpansion selects the frontier expansion strategy.
func WithExpansion(e Expansion) Option {
	return func(o *Options) { o.Expansion = e }
}

// Score is the per-search scratch value of a cell.
type Score struct {
	G int `json:"g"` // Layer index + 1
	H int `json:"h"` // Manhattan distance to the target
}

// F returns g + h.
func (s Score) F() int { return s.G + s.H }

// Result is the outcome of one search.
//
// Path holds the winner of every layer, origin first. When Found is true the
// last element is the target. Visited holds every cell that left the frontier,
// in the order it left.
type Result struct {
	Path    []grid.Cell `json:"path"`
	Visited []grid.Cell `json:"visited"`
	Origin  grid.Cell   `json:"origin"`
	Target  grid.Cell   `json:"target"`
	Found   bool        `json:"found"`
	Layers  int         `json:"layers"`

	// Scores of every cell that entered a frontier. Not sent over the wire.
	Scores map[grid.Point]Score `json:"-"`
}
