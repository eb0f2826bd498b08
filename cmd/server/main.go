package main

import (
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/amalg/gridroute/internal/logging"
	"github.com/amalg/gridroute/internal/network"
	"github.com/amalg/gridroute/internal/scenario"
	"github.com/amalg/gridroute/internal/search"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 9999, "Port to listen on")
	scenarioFile := flag.String("scenario", "", "HCL scenario file (default: built-in demo map)")
	expansion := flag.String("expansion", "", "Frontier expansion: layer or winner (default: from scenario)")
	logFile := flag.String("log", "", "Log file path (default: stderr)")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logger, closeLog, err := logging.Setup(*logFile, *logLevel)
	if err != nil {
		return err
	}
	defer closeLog()
	// No TUI here, so logs may use the terminal
	if *logFile == "" {
		logger.SetOutput(os.Stderr)
	}

	sc := scenario.Default()
	if *scenarioFile != "" {
		if sc, err = scenario.Load(*scenarioFile); err != nil {
			return err
		}
	}
	if *expansion != "" {
		if sc.Expansion, err = search.ParseExpansion(*expansion); err != nil {
			return err
		}
	}

	addr := fmt.Sprintf("0.0.0.0:%d", *port)
	pacing := network.Pacing{VisitedDelay: sc.VisitedDelay, PathDelay: sc.PathDelay}
	server := network.NewServer(addr, sc.Planner(), pacing, logger)
	if err := server.Start(); err != nil {
		return fmt.Errorf("start server: %w", err)
	}

	fmt.Printf("Route server on port %d (%dx%d grid, %s expansion)\n",
		*port, sc.Grid.Width(), sc.Grid.Height(), sc.Expansion)
	printLocalAddrs(*port)

	// Block until SIGINT/SIGTERM
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	logger.WithField("signal", sig.String()).Info("shutting down")
	server.Stop()
	return nil
}

// printLocalAddrs prints all local network addresses clients can connect to.
func printLocalAddrs(port int) {
	fmt.Println("Clients can connect using:")
	fmt.Printf("  127.0.0.1:%d (this machine)\n", port)

	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return
	}
	for _, a := range addrs {
		if ipnet, ok := a.(*net.IPNet); ok && !ipnet.IP.IsLoopback() {
			if ipnet.IP.To4() != nil {
				fmt.Printf("  %s:%d\n", ipnet.IP.String(), port)
			}
		}
	}
}
