package api

import (
	"context"
	"errors"
	"time"

	"github.com/dd0wney/cluso-netplan/pkg/config"
	"github.com/dd0wney/cluso-netplan/pkg/graphql"
	"github.com/dd0wney/cluso-netplan/pkg/health"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/metrics"
	"github.com/dd0wney/cluso-netplan/pkg/source"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

// NewServer creates a new API server
func NewServer(opts Options) (*Server, error) {
	if opts.Service == nil {
		return nil, errors.New("analysis service is required")
	}
	logger := logging.OrDefault(opts.Logger)

	cfg := opts.Config
	if cfg.Port == 0 {
		cfg = config.Default().Server
	}

	registry := opts.Metrics
	if registry == nil {
		registry = metrics.DefaultRegistry()
	}

	schema, err := graphql.NewSchema(opts.Service)
	if err != nil {
		return nil, err
	}

	s := &Server{
		svc:             opts.Service,
		config:          cfg,
		graphqlHandler:  graphql.NewGraphQLHandler(schema, logger),
		metricsRegistry: registry,
		healthChecker:   newHealthChecker(opts.Service.Store().View, opts.Service.Source()),
		logger:          logger.With(logging.Component("api")),
		startTime:       time.Now(),
		version:         Version,
	}
	s.handler = s.routes()
	s.logCORS()
	return s, nil
}

// newHealthChecker registers the checks of a running server. Readiness needs
// an active topology and a reachable source; liveness only the process.
func newHealthChecker(view func() *topology.View, src source.Source) *health.HealthChecker {
	hc := health.NewHealthChecker()

	hc.RegisterLivenessCheck("process", health.SimpleCheck("process"))

	topologyCheck := health.TopologyCheck(view)
	hc.RegisterReadinessCheck("topology", topologyCheck)
	hc.RegisterCheck("topology", topologyCheck)

	if src != nil {
		var ping func(ctx context.Context) error
		if p, ok := src.(source.Pinger); ok {
			ping = p.Ping
		}
		sourceCheck := health.SourceCheck(src.Name(), ping)
		hc.RegisterReadinessCheck("source", sourceCheck)
		hc.RegisterCheck("source", sourceCheck)
	}

	hc.RegisterCheck("memory", health.MemoryCheck(health.RuntimeMemory))
	return hc
}
