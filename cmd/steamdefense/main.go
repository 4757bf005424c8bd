// Command steamdefense is the playable front end: a bubbletea program
// driving sim.SimulationLoop and rendering it with lipgloss. It only
// consumes the simulation's snapshot and forwards abstract input
// actions; it never reaches into subsystem internals.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/kikugo/steamdefense/config"
)

func main() {
	configPath := flag.String("config", "", "path to a JSON config file; defaults to built-in balance")
	mute := flag.Bool("mute", false, "disable audio (accepted for interface parity; no audio is implemented)")
	flag.Parse()
	_ = *mute // no audio yet; the flag is the seam a future sound backend hooks into

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, "steamdefense: fatal config error:", err)
			os.Exit(1)
		}
		cfg = loaded
	}

	model, err := newModel(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "steamdefense: fatal startup error:", err)
		os.Exit(1)
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "steamdefense:", err)
		os.Exit(1)
	}
}
