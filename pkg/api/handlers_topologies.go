package api

import (
	"net/http"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

func (s *Server) handleListTopologies(w http.ResponseWriter, r *http.Request) {
	list, err := s.svc.Topologies(r.Context())
	if err != nil {
		s.respondServiceError(w, r, "list topologies", err)
		return
	}
	s.respondJSON(w, http.StatusOK, TopologiesResponse{Topologies: list, Count: len(list)})
}

func (s *Server) handleGetTopology(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "topology")
	if !ok {
		return
	}
	t, err := s.svc.Topology(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, "load topology", err)
		return
	}
	s.respondJSON(w, http.StatusOK, t)
}

func (s *Server) handleActivateTopology(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "topology")
	if !ok {
		return
	}
	v, err := s.svc.Activate(r.Context(), id)
	if err != nil {
		s.respondServiceError(w, r, "activate topology", err)
		return
	}
	s.respondJSON(w, http.StatusOK, activateResponse(v))
}

func (s *Server) handleUpdateBandwidth(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "topology")
	if !ok {
		return
	}

	var req validation.BandwidthRequest
	if s.newRequestDecoder(w, r).
		DecodeJSON(&req).
		Validate(func() error { return validation.ValidateBandwidthRequest(&req) }).
		RespondError() {
		return
	}

	out, err := s.svc.ApplyBandwidth(r.Context(), id, req.ToUpdates())
	if err != nil {
		s.respondServiceError(w, r, "update bandwidth", err)
		return
	}
	s.respondJSON(w, http.StatusOK, out)
}

func activateResponse(v *topology.View) ActivateResponse {
	issues := v.Index.Issues()
	if issues == nil {
		issues = []topology.Issue{}
	}
	return ActivateResponse{
		TopologyID: v.Topology.ID,
		Version:    v.Version,
		Devices:    len(v.Index.Devices()),
		Links:      len(v.Index.Links()),
		ISPs:       len(v.Index.ISPs()),
		Issues:     issues,
	}
}
