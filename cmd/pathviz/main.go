package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/amalg/gridroute/internal/logging"
	"github.com/amalg/gridroute/internal/scenario"
	"github.com/amalg/gridroute/internal/search"
	"github.com/amalg/gridroute/internal/ui"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// run parses args and plays the scenario. Headless output goes to stdout.
func run(args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("pathviz", flag.ContinueOnError)
	scenarioFile := fs.String("scenario", "", "HCL scenario file (default: built-in demo map)")
	gridFile := fs.String("grid", "", "Plain text grid file (needs -from and -to)")
	from := fs.String("from", "", "Origin as x,y (replaces the scenario runs)")
	to := fs.String("to", "", "Target as x,y (replaces the scenario runs)")
	expansion := fs.String("expansion", "", "Frontier expansion: layer or winner")
	headless := fs.Bool("headless", false, "Print the final boards instead of starting the TUI")
	logFile := fs.String("log", "", "Log file path (default: discard logs)")
	logLevel := fs.String("log-level", "info", "Log level")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Set up logging before anything else writes to the terminal
	logger, closeLog, err := logging.Setup(*logFile, *logLevel)
	if err != nil {
		return err
	}
	defer closeLog()

	sc, err := loadScenario(*scenarioFile, *gridFile, *from, *to, *expansion)
	if err != nil {
		return err
	}
	logger.WithFields(logrus.Fields{
		"width":     sc.Grid.Width(),
		"height":    sc.Grid.Height(),
		"runs":      len(sc.Runs),
		"expansion": sc.Expansion.String(),
	}).Info("scenario loaded")

	planner := sc.Planner()

	if *headless {
		return printRuns(stdout, planner, sc, logger)
	}

	config := ui.Config{VisitedDelay: sc.VisitedDelay, PathDelay: sc.PathDelay}
	model := ui.NewModel(planner, sc.Runs, config)
	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	if m, ok := final.(ui.Model); ok && m.Err() != nil {
		return m.Err()
	}
	return nil
}

// loadScenario builds the scenario from the flags.
func loadScenario(scenarioFile, gridFile, from, to, expansion string) (*scenario.Scenario, error) {
	var sc *scenario.Scenario
	switch {
	case scenarioFile != "" && gridFile != "":
		return nil, fmt.Errorf("use either -scenario or -grid, not both")
	case scenarioFile != "":
		var err error
		if sc, err = scenario.Load(scenarioFile); err != nil {
			return nil, err
		}
	case gridFile != "":
		f, err := os.Open(gridFile)
		if err != nil {
			return nil, fmt.Errorf("open grid: %w", err)
		}
		defer f.Close()
		g, err := scenario.ParseText(f)
		if err != nil {
			return nil, fmt.Errorf("grid %s: %w", gridFile, err)
		}
		if from == "" || to == "" {
			return nil, fmt.Errorf("-grid needs -from and -to")
		}
		sc = &scenario.Scenario{
			Grid:         g,
			VisitedDelay: scenario.DefaultVisitedDelay,
			PathDelay:    scenario.DefaultPathDelay,
		}
	default:
		sc = scenario.Default()
	}

	if from != "" || to != "" {
		if from == "" || to == "" {
			return nil, fmt.Errorf("-from and -to go together")
		}
		origin, err := scenario.ParsePoint(from)
		if err != nil {
			return nil, err
		}
		target, err := scenario.ParsePoint(to)
		if err != nil {
			return nil, err
		}
		sc.Runs = []scenario.Run{{Name: "custom", Origin: origin, Target: target}}
	}

	if expansion != "" {
		e, err := search.ParseExpansion(expansion)
		if err != nil {
			return nil, err
		}
		sc.Expansion = e
	}

	return sc, nil
}

// printRuns searches every run and prints its final board and a summary.
func printRuns(w io.Writer, planner *search.Planner, sc *scenario.Scenario, logger *logrus.Logger) error {
	for _, run := range sc.Runs {
		res, err := planner.Search(run.Origin, run.Target)
		if err != nil {
			return fmt.Errorf("run %q: %w", run.Name, err)
		}
		logger.WithFields(logrus.Fields{
			"run":     run.Name,
			"found":   res.Found,
			"visited": len(res.Visited),
			"layers":  res.Layers,
		}).Info("search done")

		fmt.Fprintln(w, ui.RenderBoard(planner.Grid(), ui.FullOverlay(res)))
		fmt.Fprintln(w, ui.Summary(run.Name, res))
		fmt.Fprintln(w)
	}
	return nil
}
