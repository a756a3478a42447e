package main

import (
	"context"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/api"
	"github.com/dd0wney/cluso-netplan/pkg/config"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/metrics"
	"github.com/dd0wney/cluso-netplan/pkg/source"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "netplan-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.Addr(), err)
	}

	logger := logging.NewJSONLogger(os.Stdout, cfg.LogLevel())
	logging.SetDefaultLogger(logger)
	return serve(ctx, cfg, ln, logger)
}

// serve runs the service on ln until ctx is cancelled
func serve(ctx context.Context, cfg *config.Config, ln net.Listener, logger logging.Logger) error {
	defer ln.Close()

	logger.Info("netplan server starting",
		logging.String("version", api.Version),
		logging.String("source", cfg.Source.Kind))

	src, err := source.Open(ctx, cfg.SourceOptions(), logger)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer func() {
		if err := source.Close(src); err != nil {
			logger.Warn("closing source", logging.Error(err))
		}
	}()

	registry := metrics.NewRegistry()
	svc := analysis.New(analysis.Options{
		Source:  src,
		Model:   cfg.CostModel(),
		Metrics: registry,
		Logger:  logger,
		Workers: cfg.Workers,
	})

	if id := cfg.Source.Activate; id != "" {
		// a missing startup topology leaves the server up but not ready
		if _, err := svc.Activate(ctx, id); err != nil {
			logger.Error("initial topology not activated", logging.TopologyID(id), logging.Error(err))
		}
	}

	server, err := api.NewServer(api.Options{
		Config:  cfg.Server,
		Service: svc,
		Metrics: registry,
		Logger:  logger,
	})
	if err != nil {
		return err
	}
	return server.Serve(ctx, ln)
}
