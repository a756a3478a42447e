package api

import (
	"net/http"
	"time"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/config"
	"github.com/dd0wney/cluso-netplan/pkg/graphql"
	"github.com/dd0wney/cluso-netplan/pkg/health"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/metrics"
)

// Version is reported by the health endpoint
const Version = "1.0.0"

// Options configures a Server. Service is required; everything else has a
// default.
type Options struct {
	Config  config.ServerConfig
	Service *analysis.Service
	Metrics *metrics.Registry
	Logger  logging.Logger
}

// Server represents the HTTP API server
type Server struct {
	svc             *analysis.Service
	config          config.ServerConfig
	graphqlHandler  *graphql.GraphQLHandler
	metricsRegistry *metrics.Registry
	healthChecker   *health.HealthChecker
	logger          logging.Logger
	handler         http.Handler
	startTime       time.Time
	version         string
}
