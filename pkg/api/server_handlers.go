package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netplan/pkg/health"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := s.healthChecker.Check(r.Context())
	status := http.StatusOK
	if resp.Status == health.StatusUnhealthy {
		status = http.StatusServiceUnavailable
	}
	s.respondJSON(w, status, HealthResponse{Response: resp, Version: s.version})
}

func (s *Server) handleGraphQL(w http.ResponseWriter, r *http.Request) {
	s.graphqlHandler.ServeHTTP(w, r)
}
