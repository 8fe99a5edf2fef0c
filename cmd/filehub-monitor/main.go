package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/arkenfold/filehub/internal/support"
	"github.com/arkenfold/filehub/internal/tui"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			support.WriteCrashLog(support.DefaultCrashLogPath, r, "main")
			os.Exit(1)
		}
	}()

	endpoint := "http://localhost:8080"
	for i, arg := range os.Args[1:] {
		switch arg {
		case "--help", "-h":
			fmt.Println("filehub-monitor - live dashboard for a running filehubd")
			fmt.Println()
			fmt.Println("Usage: filehub-monitor [OPTIONS]")
			fmt.Println()
			fmt.Println("Options:")
			fmt.Println("  --endpoint URL   Base URL of the filehubd instance (default: http://localhost:8080)")
			fmt.Println("  --help, -h       Show this help message")
			os.Exit(0)
		case "--endpoint":
			if i+1 < len(os.Args[1:]) {
				endpoint = os.Args[i+2]
			}
		}
	}

	m := tui.New(endpoint)
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "error running filehub-monitor: %v\n", err)
		os.Exit(1)
	}
}
