package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/api/middleware"
	"github.com/dd0wney/cluso-netplan/pkg/logging"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encoding JSON response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	response := ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	}
	s.respondJSON(w, status, response)
}

// respondServiceError maps an analysis error to a status. Internal failures
// are logged in full and reported with a generic message.
func (s *Server) respondServiceError(w http.ResponseWriter, r *http.Request, operation string, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		s.logger.Error(operation+" failed",
			logging.Operation(operation),
			logging.RequestID(middleware.GetRequestID(r)),
			logging.Error(err))
		s.respondError(w, status, operation+" failed")
		return
	}
	s.respondError(w, status, err.Error())
}

// errorStatus maps domain errors to HTTP status codes
func errorStatus(err error) int {
	var topoErr *validation.TopologyError
	switch {
	case errors.Is(err, topology.ErrTopologyNotFound), errors.Is(err, topology.ErrDeviceNotFound):
		return http.StatusNotFound
	case errors.Is(err, topology.ErrNoActiveTopology), errors.Is(err, analysis.ErrTopologyNotActive):
		return http.StatusConflict
	case errors.Is(err, planning.ErrInvalidRequest):
		return http.StatusBadRequest
	case errors.As(err, &topoErr), errors.Is(err, topology.ErrInvalidTopology):
		return http.StatusUnprocessableEntity
	case errors.Is(err, topology.ErrNoTopologySource):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
