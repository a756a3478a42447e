package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

// handlePath finds the path with the fewest hops
func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	s.servePath(w, r, analysis.AlgorithmBFS)
}

// handleShortestPath finds the cheapest path under the cost model
func (s *Server) handleShortestPath(w http.ResponseWriter, r *http.Request) {
	s.servePath(w, r, analysis.AlgorithmDijkstra)
}

func (s *Server) servePath(w http.ResponseWriter, r *http.Request, algo analysis.Algorithm) {
	var req validation.PathRequest
	if s.newRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidatePathRequest(&req) }).
		RespondError() {
		return
	}

	res, err := s.svc.Path(req.From, req.To, algo)
	if err != nil {
		s.respondServiceError(w, r, "path search", err)
		return
	}
	s.respondJSON(w, http.StatusOK, res)
}

func (s *Server) handleRoutes(w http.ResponseWriter, r *http.Request) {
	var req validation.RoutesRequest
	if s.newRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidateRoutesRequest(&req) }).
		RespondError() {
		return
	}

	routes, err := s.svc.Routes(req.DeviceID)
	if err != nil {
		s.respondServiceError(w, r, "routing table", err)
		return
	}
	s.respondJSON(w, http.StatusOK, RoutesResponse{DeviceID: req.DeviceID, Routes: routes})
}

func (s *Server) handleRoutingTables(w http.ResponseWriter, r *http.Request) {
	tables, err := s.svc.RoutingTables(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "routing tables", err)
		return
	}
	s.respondJSON(w, http.StatusOK, RoutingTablesResponse{Tables: tables, Count: len(tables)})
}

func (s *Server) handleCapacityPlan(w http.ResponseWriter, r *http.Request) {
	var req planning.Request
	if s.newRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidatePlanRequest(&req) }).
		RespondError() {
		return
	}

	plan, err := s.svc.Plan(req)
	if err != nil {
		s.respondServiceError(w, r, "capacity plan", err)
		return
	}
	s.respondJSON(w, http.StatusOK, plan)
}
