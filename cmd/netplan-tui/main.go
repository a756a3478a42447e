package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/config"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/source"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	topologyID := flag.String("topology", "", "Topology to inspect (default from config)")
	flag.Parse()

	if err := run(*configPath, *topologyID); err != nil {
		fmt.Fprintf(os.Stderr, "netplan-tui: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, topologyID string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if topologyID != "" {
		cfg.Source.Activate = topologyID
	}

	// the terminal belongs to the UI; index warnings are dropped
	logger := logging.NewJSONLogger(io.Discard, cfg.LogLevel())

	ctx := context.Background()
	src, err := source.Open(ctx, cfg.SourceOptions(), logger)
	if err != nil {
		return err
	}
	defer source.Close(src)

	svc := analysis.New(analysis.Options{Source: src, Model: cfg.CostModel(), Logger: logger})
	if _, err := svc.Activate(ctx, cfg.Source.Activate); err != nil {
		return err
	}

	p := tea.NewProgram(initialModel(svc), tea.WithAltScreen())
	_, err = p.Run()
	return err
}
