package ui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amalg/gridroute/internal/grid"
	"github.com/amalg/gridroute/internal/scenario"
	"github.com/amalg/gridroute/internal/search"
)

// Router answers route queries on a grid. A local search.Planner and a
// remote network.Client both satisfy it.
type Router interface {
	Grid() *grid.Grid
	Search(origin, target grid.Point) (search.Result, error)
}

// Config holds playback pacing.
type Config struct {
	VisitedDelay time.Duration
	PathDelay    time.Duration
}

// DefaultConfig returns the playback pacing of the demo scenario.
func DefaultConfig() Config {
	return Config{
		VisitedDelay: scenario.DefaultVisitedDelay,
		PathDelay:    scenario.DefaultPathDelay,
	}
}

// phase is the playback step of the current run.
type phase int

const (
	phaseSearching   phase = iota // Waiting for the search result
	phaseMap                      // Board and target shown, waiting for space
	phaseVisited                  // Drawing visited cells
	phaseVisitedDone              // Visited trace complete, waiting for space
	phasePath                     // Drawing path cells
	phasePathDone                 // Path complete, waiting for space
)

func (p phase) String() string {
	switch p {
	case phaseSearching:
		return "Searching..."
	case phaseMap:
		return "Map - press space"
	case phaseVisited:
		return "Expanding..."
	case phaseVisitedDone:
		return "Expansion done - press space"
	case phasePath:
		return "Tracing path..."
	case phasePathDone:
		return "Done - press space"
	}
	return ""
}

// resultMsg carries a finished search for run index run.
type resultMsg struct {
	run    int
	result search.Result
}

// tickMsg advances the current animation. seq ties it to the animation that
// scheduled it so skipped animations ignore late ticks.
type tickMsg struct{ seq int }

// errMsg carries an error.
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

// Model is the Bubbletea model that plays back runs one phase at a time.
type Model struct {
	router   Router
	runs     []scenario.Run
	config   Config
	run      int
	result   *search.Result
	phase    phase
	shown    int
	seq      int
	err      error
	quitting bool
}

// NewModel creates a playback model for the given runs.
func NewModel(router Router, runs []scenario.Run, config Config) Model {
	return Model{
		router: router,
		runs:   runs,
		config: config,
	}
}

// Init starts the search for the first run.
func (m Model) Init() tea.Cmd {
	if len(m.runs) == 0 {
		return tea.Quit
	}
	return searchRun(m.router, 0, m.runs[0])
}

// Update handles key presses, search results and animation ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case resultMsg:
		if msg.run != m.run {
			return m, nil
		}
		res := msg.result
		m.result = &res
		m.phase = phaseMap
		m.shown = 0
		return m, nil

	case tickMsg:
		if msg.seq != m.seq {
			return m, nil
		}
		return m.advance()

	case errMsg:
		m.err = msg.err
		return m, tea.Quit
	}

	return m, nil
}

// View renders the board and HUD.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	if m.err != nil {
		return lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ff4444")).
			Render("Error: "+m.err.Error()) + "\n"
	}

	board := RenderBoard(m.router.Grid(), m.overlay())
	hud := m.hud()

	// Layout: board on the left, HUD on the right
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		board,
		"  ",
		RenderHUD(hud),
	) + "\n"
}

// Err returns the error that stopped playback, if any.
func (m Model) Err() error {
	return m.err
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit

	case " ", "enter":
		return m.next()
	}

	return m, nil
}

// next moves playback forward on a key press. Pressing during an
// animation completes it.
func (m Model) next() (tea.Model, tea.Cmd) {
	if m.result == nil {
		return m, nil
	}

	switch m.phase {
	case phaseMap:
		return m.startAnimation(phaseVisited)
	case phaseVisited:
		m.seq++
		m.shown = len(m.result.Visited)
		m.phase = phaseVisitedDone
	case phaseVisitedDone:
		return m.startAnimation(phasePath)
	case phasePath:
		m.seq++
		m.shown = len(m.result.Path)
		m.phase = phasePathDone
	case phasePathDone:
		if m.run+1 >= len(m.runs) {
			m.quitting = true
			return m, tea.Quit
		}
		m.run++
		m.result = nil
		m.phase = phaseSearching
		m.shown = 0
		return m, searchRun(m.router, m.run, m.runs[m.run])
	}
	return m, nil
}

// startAnimation enters an animated phase and draws its first cell.
func (m Model) startAnimation(p phase) (tea.Model, tea.Cmd) {
	m.phase = p
	m.shown = 0
	m.seq++
	return m.advance()
}

// advance draws one more cell of the running animation.
func (m Model) advance() (tea.Model, tea.Cmd) {
	var cells []grid.Cell
	var delay time.Duration
	var done phase

	switch m.phase {
	case phaseVisited:
		cells, delay, done = m.result.Visited, m.config.VisitedDelay, phaseVisitedDone
	case phasePath:
		cells, delay, done = m.result.Path, m.config.PathDelay, phasePathDone
	default:
		return m, nil
	}

	if m.shown < len(cells) {
		m.shown++
	}
	if m.shown >= len(cells) {
		m.phase = done
		return m, nil
	}
	return m, tick(m.seq, delay)
}

// overlay returns what the current phase has revealed.
func (m Model) overlay() Overlay {
	if m.result == nil {
		return Overlay{}
	}
	origin, target := m.result.Origin.Pos(), m.result.Target.Pos()
	o := Overlay{Origin: &origin, Target: &target}

	switch m.phase {
	case phaseVisited:
		o.Visited = m.result.Visited[:m.shown]
	case phaseVisitedDone:
		o.Visited = m.result.Visited
	case phasePath:
		o.Visited = m.result.Visited
		o.Path = m.result.Path[:m.shown]
	case phasePathDone:
		o.Visited = m.result.Visited
		o.Path = m.result.Path
	}
	return o
}

func (m Model) hud() HUD {
	h := HUD{
		RunIndex: m.run,
		RunCount: len(m.runs),
		Phase:    m.phase.String(),
		Result:   m.result,
	}
	if m.run < len(m.runs) {
		h.RunName = m.runs[m.run].Name
	}
	o := m.overlay()
	h.VisitedShown = len(o.Visited)
	h.PathShown = len(o.Path)
	return h
}

// searchRun returns a Cmd that runs the search for one run.
func searchRun(router Router, index int, run scenario.Run) tea.Cmd {
	return func() tea.Msg {
		res, err := router.Search(run.Origin, run.Target)
		if err != nil {
			return errMsg{err: fmt.Errorf("run %q: %w", run.Name, err)}
		}
		return resultMsg{run: index, result: res}
	}
}

// tick returns a Cmd that fires the next animation frame after delay.
func tick(seq int, delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}
