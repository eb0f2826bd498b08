package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/amalg/gridroute/internal/logging"
	"github.com/amalg/gridroute/internal/network"
	"github.com/amalg/gridroute/internal/scenario"
	"github.com/amalg/gridroute/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "", "Server address (e.g., 192.168.1.5:9999)")
	name := flag.String("name", "viewer", "Name reported to the server")
	from := flag.String("from", "", "Origin as x,y")
	to := flag.String("to", "", "Target as x,y")
	logFile := flag.String("log", "", "Log file path (default: discard logs)")
	flag.Parse()

	if *addr == "" || *from == "" || *to == "" {
		fmt.Fprintln(os.Stderr, "Usage: client --addr <host:port> --from x,y --to x,y [--name <name>]")
		fmt.Fprintln(os.Stderr, "  Example: client --addr 192.168.1.5:9999 --from 1,1 --to 14,1")
		return fmt.Errorf("missing -addr, -from or -to")
	}

	logger, closeLog, err := logging.Setup(*logFile, "info")
	if err != nil {
		return err
	}
	defer closeLog()

	origin, err := scenario.ParsePoint(*from)
	if err != nil {
		return err
	}
	target, err := scenario.ParsePoint(*to)
	if err != nil {
		return err
	}

	client, err := network.NewClient(*addr, *name)
	if err != nil {
		return fmt.Errorf("failed to connect: %w", err)
	}
	defer client.Close()
	logger.WithField("session", client.SessionID()).Info("connected")

	// Outbound and back, like the local demo
	runs := []scenario.Run{
		{Name: "outbound", Origin: origin, Target: target},
		{Name: "return", Origin: target, Target: origin},
	}

	model := ui.NewModel(client, runs, pacingConfig(client.Pacing()))
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

// pacingConfig plays back at the server's pace, falling back to the
// defaults for any delay the server left unset.
func pacingConfig(p network.Pacing) ui.Config {
	config := ui.DefaultConfig()
	if p.VisitedDelay > 0 {
		config.VisitedDelay = p.VisitedDelay
	}
	if p.PathDelay > 0 {
		config.PathDelay = p.PathDelay
	}
	return config
}
