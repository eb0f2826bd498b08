// Package scenario loads maps and the runs to play on them.
package scenario

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"

	"github.com/amalg/gridroute/internal/grid"
	"github.com/amalg/gridroute/internal/search"
)

//go:embed default.hcl
var defaultSource []byte

// Playback pacing used when a scenario leaves visited_delay or path_delay unset.
const (
	DefaultVisitedDelay = 100 * time.Millisecond
	DefaultPathDelay    = 75 * time.Millisecond
)

// Run is one origin/target pair to search and play back.
type Run struct {
	Name   string
	Origin grid.Point
	Target grid.Point
}

// Scenario is a grid plus the runs to play on it.
type Scenario struct {
	Grid         *grid.Grid
	Runs         []Run
	Expansion    search.Expansion
	VisitedDelay time.Duration // Pause after each visited cell is drawn
	PathDelay    time.Duration // Pause after each path cell is drawn
}

// Planner returns a planner over the scenario grid using its expansion.
func (s *Scenario) Planner() *search.Planner {
	return search.NewPlanner(s.Grid, search.WithExpansion(s.Expansion))
}

// fileConfig mirrors the HCL file layout.
type fileConfig struct {
	Expansion    string     `hcl:"expansion,optional"`
	VisitedDelay string     `hcl:"visited_delay,optional"`
	PathDelay    string     `hcl:"path_delay,optional"`
	Grid         gridBlock  `hcl:"grid,block"`
	Runs         []runBlock `hcl:"run,block"`
}

type gridBlock struct {
	Rows [][]int `hcl:"rows"`
}

type runBlock struct {
	Name   string `hcl:"name,label"`
	Origin []int  `hcl:"origin"`
	Target []int  `hcl:"target"`
}

// evalContext lets files spell cells as open/wall instead of 1/0.
func evalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"open": cty.NumberIntVal(1),
			"wall": cty.NumberIntVal(0),
		},
	}
}

// Default returns the built-in demo scenario.
func Default() *Scenario {
	s, err := Parse(defaultSource, "default.hcl")
	if err != nil {
		panic(fmt.Sprintf("built-in scenario is invalid: %v", err))
	}
	return s
}

// Load reads and validates an HCL scenario file.
func Load(path string) (*Scenario, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenario: %w", err)
	}
	return Parse(src, path)
}

// Parse decodes and validates HCL scenario source. filename is only used in
// error messages.
func Parse(src []byte, filename string) (*Scenario, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(src, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse scenario %s: %s", filename, diags.Error())
	}

	var cfg fileConfig
	diags = gohcl.DecodeBody(file.Body, evalContext(), &cfg)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode scenario %s: %s", filename, diags.Error())
	}

	s, err := cfg.build()
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", filename, err)
	}
	return s, nil
}

func (cfg fileConfig) build() (*Scenario, error) {
	g, err := grid.Build(cfg.Grid.Rows)
	if err != nil {
		return nil, err
	}

	expansion, err := search.ParseExpansion(cfg.Expansion)
	if err != nil {
		return nil, err
	}

	visited, err := parseDelay("visited_delay", cfg.VisitedDelay, DefaultVisitedDelay)
	if err != nil {
		return nil, err
	}
	path, err := parseDelay("path_delay", cfg.PathDelay, DefaultPathDelay)
	if err != nil {
		return nil, err
	}

	if len(cfg.Runs) == 0 {
		return nil, fmt.Errorf("at least one run block is required")
	}
	runs := make([]Run, 0, len(cfg.Runs))
	for _, rb := range cfg.Runs {
		origin, err := parsePoint(g, rb.Name, "origin", rb.Origin)
		if err != nil {
			return nil, err
		}
		target, err := parsePoint(g, rb.Name, "target", rb.Target)
		if err != nil {
			return nil, err
		}
		runs = append(runs, Run{Name: rb.Name, Origin: origin, Target: target})
	}

	return &Scenario{
		Grid:         g,
		Runs:         runs,
		Expansion:    expansion,
		VisitedDelay: visited,
		PathDelay:    path,
	}, nil
}

func parseDelay(name, value string, fallback time.Duration) (time.Duration, error) {
	if value == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", name, d)
	}
	return d, nil
}

func parsePoint(g *grid.Grid, run, field string, xy []int) (grid.Point, error) {
	if len(xy) != 2 {
		return grid.Point{}, fmt.Errorf("run %q: %s must be [x, y], got %d values", run, field, len(xy))
	}
	p := grid.Point{X: xy[0], Y: xy[1]}
	if _, err := g.CellAt(p.X, p.Y); err != nil {
		return grid.Point{}, fmt.Errorf("run %q: %s: %w", run, field, err)
	}
	return p, nil
}
