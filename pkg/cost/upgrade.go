package cost

import "math"

const (
	// UpgradeStep is the granularity of suggested capacities in Mbps
	UpgradeStep = 100.0

	// UpgradeCostPerMbps is the base price of one additional Mbps
	UpgradeCostPerMbps = 2.0
)

// Proposal is a suggested capacity increase for one link
type Proposal struct {
	CurrentCapacity   float64 `json:"currentCapacity"`
	SuggestedCapacity float64 `json:"newCapacity"`
	Cost              float64 `json:"cost"`
}

// Upgrade rounds required up to the next UpgradeStep and prices the increase
// over current. Larger increases are cheaper per Mbps.
func Upgrade(current, required float64) Proposal {
	suggested := math.Ceil(required/UpgradeStep) * UpgradeStep
	return Proposal{
		CurrentCapacity:   current,
		SuggestedCapacity: suggested,
		Cost:              UpgradeCost(current, suggested),
	}
}

// UpgradeCost prices raising a link from current to suggested Mbps
func UpgradeCost(current, suggested float64) float64 {
	increase := suggested - current
	return math.Round(increase * UpgradeCostPerMbps * ScaleFactor(increase))
}

// ScaleFactor is the economies-of-scale discount for an increase in Mbps
func ScaleFactor(increase float64) float64 {
	switch {
	case increase > 1000:
		return 0.6
	case increase > 500:
		return 0.8
	default:
		return 1.0
	}
}
