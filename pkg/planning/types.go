// Package planning evaluates where a new device can attach to a network and
// what it would take for its traffic to reach every ISP.
package planning

import (
	"errors"

	"github.com/dd0wney/cluso-netplan/pkg/cost"
)

var (
	// ErrInvalidRequest is returned for requests that cannot be planned: an
	// unknown device, a non-positive requirement or an unknown mode
	ErrInvalidRequest = errors.New("invalid capacity plan request")
)

// Mode selects how candidate routes are enumerated
type Mode string

const (
	// ModeViaConnectionPoint routes through every router or switch as the
	// attachment point for the new device, adding a setup cost
	ModeViaConnectionPoint Mode = "via-connection-points"
	// ModeDirect routes from the device straight to each ISP
	ModeDirect Mode = "direct"
)

// Valid reports whether m is a known mode; the empty mode is the default
func (m Mode) Valid() bool {
	switch m {
	case "", ModeViaConnectionPoint, ModeDirect:
		return true
	}
	return false
}

// Status summarises an analysis, in priority order
type Status string

const (
	StatusNoRoute         Status = "No Route"
	StatusNeedsUpgrade    Status = "Needs Upgrade"
	StatusPotentialIssues Status = "Potential Issues"
	StatusOptimal         Status = "Optimal"
)

const (
	// ConnectionSetupCost is charged once per route that attaches via a
	// connection point
	ConnectionSetupCost = 50.0

	// BottleneckPercent is the utilisation above which a link is reported
	BottleneckPercent = 70.0

	// NoPathDescription replaces the path of infeasible analyses
	NoPathDescription = "No complete path available"
)

// Request describes the device to plan for
type Request struct {
	// DeviceID is the device the new traffic enters the network at
	DeviceID     string  `json:"deviceId" validate:"required"`
	RequiredMbps float64 `json:"requiredMbps" validate:"gt=0"`
	Mode         Mode    `json:"mode,omitempty" validate:"omitempty,oneof=via-connection-points direct"`

	// NewDeviceName and NewDeviceType label the device being added. They are
	// informational only.
	NewDeviceName string `json:"newDeviceName,omitempty" validate:"max=255"`
	NewDeviceType string `json:"newDeviceType,omitempty" validate:"omitempty,oneof=router switch isp"`
}

// Bottleneck is a highly utilised link along a route
type Bottleneck struct {
	LinkID            string  `json:"linkId"`
	Description       string  `json:"description"`
	CurrentUsage      float64 `json:"currentUsage"` // percent, rounded
	AvailableCapacity float64 `json:"availableCapacity"`
}

// Upgrade is a capacity increase a route needs to carry the requirement
type Upgrade struct {
	LinkID      string `json:"linkId"`
	Description string `json:"description"`
	cost.Proposal
}

// Analysis is the evaluation of one candidate route to one ISP
type Analysis struct {
	RouteName       string       `json:"routeName"`
	ConnectionPoint string       `json:"connectionPoint,omitempty"`
	ISP             string       `json:"isp"`
	Path            string       `json:"path"`
	Devices         []string     `json:"devices"`
	Feasible        bool         `json:"feasible"`
	NeedsUpgrade    bool         `json:"needsUpgrade"`
	TotalCost       cost.Amount  `json:"totalCost"`
	Bottlenecks     []Bottleneck `json:"bottlenecks"`
	Upgrades        []Upgrade    `json:"upgrades"`
	Status          Status       `json:"status"`
}
