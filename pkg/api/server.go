package api

import (
	"context"
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-netplan/pkg/logging"
)

// routes registers every endpoint and wraps the mux in the middleware stack
func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Health and metrics
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /health/live", s.healthChecker.LivenessHandler())
	mux.HandleFunc("GET /health/ready", s.healthChecker.ReadinessHandler())
	mux.Handle("GET /metrics", promhttp.HandlerFor(s.metricsRegistry.GetPrometheusRegistry(), promhttp.HandlerOpts{}))

	// Topologies
	mux.HandleFunc("GET /topologies", s.handleListTopologies)
	mux.HandleFunc("GET /topologies/{id}", s.handleGetTopology)
	mux.HandleFunc("POST /topologies/{id}/activate", s.handleActivateTopology)
	mux.HandleFunc("PUT /topologies/{id}/bandwidth", s.handleUpdateBandwidth)

	// Analyses
	mux.HandleFunc("POST /path", s.handlePath)
	mux.HandleFunc("POST /shortest-path", s.handleShortestPath)
	mux.HandleFunc("POST /routes", s.handleRoutes)
	mux.HandleFunc("GET /routing-tables", s.handleRoutingTables)
	mux.HandleFunc("POST /capacity-plan", s.handleCapacityPlan)

	// Usage
	mux.HandleFunc("GET /usage/links", s.handleLinkUsage)
	mux.HandleFunc("GET /usage/devices/{id}", s.handleDeviceUsage)

	// GraphQL endpoint
	mux.HandleFunc("POST /graphql", s.handleGraphQL)

	return s.chain(mux)
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves on the configured address until ctx is cancelled, then shuts
// down gracefully within the configured shutdown timeout
func (s *Server) Start(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr())
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := s.httpServer()

	metricsCtx, stopMetrics := context.WithCancel(ctx)
	defer stopMetrics()
	go s.updateMetricsPeriodically(metricsCtx)

	s.logger.Info("netplan API server starting",
		logging.String("addr", ln.Addr().String()),
		logging.String("version", s.version))

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down", logging.Duration("timeout", s.config.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	s.logger.Info("server stopped")
	return nil
}
