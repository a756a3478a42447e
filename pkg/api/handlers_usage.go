package api

import (
	"net/http"
	"strconv"

	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

// DefaultUsageThreshold is the congestion threshold in percent used when the
// request does not name one
const DefaultUsageThreshold = 70.0

func (s *Server) handleLinkUsage(w http.ResponseWriter, r *http.Request) {
	threshold := DefaultUsageThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "threshold: must be a number")
			return
		}
		threshold = v
	}
	if err := validation.ValidateUsageThreshold(threshold); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	links, err := s.svc.CongestedLinks(threshold)
	if err != nil {
		s.respondServiceError(w, r, "link usage", err)
		return
	}
	s.respondJSON(w, http.StatusOK, LinkUsageResponse{Threshold: threshold, Links: links, Count: len(links)})
}

func (s *Server) handleDeviceUsage(w http.ResponseWriter, r *http.Request) {
	id, ok := s.pathID(w, r, "id", "device")
	if !ok {
		return
	}
	u, err := s.svc.DeviceUsage(id)
	if err != nil {
		s.respondServiceError(w, r, "device usage", err)
		return
	}
	s.respondJSON(w, http.StatusOK, u)
}
