package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/gridroute/internal/grid"
	"github.com/amalg/gridroute/internal/search"
)

// Color palette
var (
	// Cell styles
	blockedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#000000")).
			Foreground(lipgloss.Color("#3a3a3a"))

	openStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#f0f0f0")).
			Foreground(lipgloss.Color("#f0f0f0"))

	visitedStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#00c853")).
			Foreground(lipgloss.Color("#007a33"))

	pathStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#2962ff")).
			Foreground(lipgloss.Color("#82b1ff")).
			Bold(true)

	originStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#ffd600")).
			Foreground(lipgloss.Color("#000000")).
			Bold(true)

	targetStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("#0000ff")).
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	// HUD styles
	hudBorderStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff8844")).
			Bold(true)

	phaseStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#44aaff")).
			Bold(true)

	noRouteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Bold(true)

	foundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00ff88")).
			Bold(true)

	dimStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

// Cell glyphs. They stay distinct without color so headless output reads too.
const (
	glyphBlocked = "██"
	glyphOpen    = "  "
	glyphVisited = "··"
	glyphPath    = "▓▓"
	glyphOrigin  = "<>"
	glyphTarget  = "[]"
)

// Overlay is what to draw on top of the bare grid.
type Overlay struct {
	Origin  *grid.Point
	Target  *grid.Point
	Visited []grid.Cell
	Path    []grid.Cell
}

// FullOverlay shows everything a finished search produced.
func FullOverlay(res search.Result) Overlay {
	origin, target := res.Origin.Pos(), res.Target.Pos()
	return Overlay{
		Origin:  &origin,
		Target:  &target,
		Visited: res.Visited,
		Path:    res.Path,
	}
}

// RenderBoard draws the grid with the overlay as a styled terminal string.
func RenderBoard(g *grid.Grid, o Overlay) string {
	if g == nil {
		return "Searching..."
	}

	visitedSet := make(map[grid.Point]bool, len(o.Visited))
	for _, c := range o.Visited {
		visitedSet[c.Pos()] = true
	}
	pathSet := make(map[grid.Point]bool, len(o.Path))
	for _, c := range o.Path {
		pathSet[c.Pos()] = true
	}

	var rows []string
	for y := 0; y < g.Height(); y++ {
		var cells []string
		for x := 0; x < g.Width(); x++ {
			c, _ := g.CellAt(x, y)
			cells = append(cells, renderCell(c, o, visitedSet, pathSet))
		}
		rows = append(rows, strings.Join(cells, ""))
	}

	return strings.Join(rows, "\n")
}

// renderCell renders a single grid cell with the appropriate style.
// Each cell is 2 characters wide for a square-ish appearance.
func renderCell(c grid.Cell, o Overlay, visitedSet, pathSet map[grid.Point]bool) string {
	pos := c.Pos()

	// Priority: Target > Origin > Path > Visited > Tile
	if o.Target != nil && *o.Target == pos {
		return targetStyle.Render(glyphTarget)
	}
	if o.Origin != nil && *o.Origin == pos {
		return originStyle.Render(glyphOrigin)
	}
	if pathSet[pos] {
		return pathStyle.Render(glyphPath)
	}
	if visitedSet[pos] {
		return visitedStyle.Render(glyphVisited)
	}
	if !c.Passable {
		return blockedStyle.Render(glyphBlocked)
	}
	return openStyle.Render(glyphOpen)
}

// HUD is the data shown next to the board.
type HUD struct {
	RunName      string
	RunIndex     int
	RunCount     int
	Phase        string
	Result       *search.Result
	VisitedShown int
	PathShown    int
}

// RenderHUD renders the side panel with run info and search counters.
func RenderHUD(h HUD) string {
	var parts []string

	parts = append(parts, titleStyle.Render("GRIDROUTE"))
	parts = append(parts, "")
	parts = append(parts, fmt.Sprintf("Run %d/%d: %s", h.RunIndex+1, h.RunCount, h.RunName))
	parts = append(parts, phaseStyle.Render(h.Phase))
	parts = append(parts, "")

	if res := h.Result; res != nil {
		parts = append(parts, dimStyle.Render(fmt.Sprintf("From %s to %s", res.Origin, res.Target)))
		parts = append(parts, fmt.Sprintf("Visited: %d/%d", h.VisitedShown, len(res.Visited)))
		parts = append(parts, fmt.Sprintf("Path:    %d/%d", h.PathShown, len(res.Path)))
		parts = append(parts, fmt.Sprintf("Layers:  %d", res.Layers))
		if res.Found {
			parts = append(parts, foundStyle.Render(fmt.Sprintf("Route found: %d steps", len(res.Path)-1)))
		} else {
			parts = append(parts, noRouteStyle.Render("No route"))
		}
	}

	parts = append(parts, "")
	parts = append(parts, helpStyle.Render("Space: next | Q: quit"))

	return hudBorderStyle.Render(strings.Join(parts, "\n"))
}

// Summary is a one-line description of a finished run.
func Summary(name string, res search.Result) string {
	if !res.Found {
		return fmt.Sprintf("%s: %s -> %s no route (visited %d cells in %d layers)",
			name, res.Origin, res.Target, len(res.Visited), res.Layers)
	}
	return fmt.Sprintf("%s: %s -> %s %d steps (visited %d cells in %d layers)",
		name, res.Origin, res.Target, len(res.Path)-1, len(res.Visited), res.Layers)
}
