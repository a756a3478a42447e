package api

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/dd0wney/cluso-netplan/pkg/analysis"
	"github.com/dd0wney/cluso-netplan/pkg/planning"
	"github.com/dd0wney/cluso-netplan/pkg/topology"
	"github.com/dd0wney/cluso-netplan/pkg/validation"
)

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load: %w", topology.ErrTopologyNotFound), http.StatusNotFound},
		{&topology.Error{Op: "Usage", Entity: "device", ID: "x", Cause: topology.ErrDeviceNotFound}, http.StatusNotFound},
		{topology.ErrNoActiveTopology, http.StatusConflict},
		{fmt.Errorf("x: %w", analysis.ErrTopologyNotActive), http.StatusConflict},
		{fmt.Errorf("%w: bad", planning.ErrInvalidRequest), http.StatusBadRequest},
		{&validation.TopologyError{TopologyID: "t"}, http.StatusUnprocessableEntity},
		{topology.ErrNoTopologySource, http.StatusServiceUnavailable},
		{errors.New("disk on fire"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := errorStatus(tt.err); got != tt.want {
			t.Errorf("errorStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
