// Package cost prices link traversals.
//
// Two weight functions exist. SearchWeight is the edge weight for shortest-path
// search. QualityCost is the descriptive cost reported in capacity plans. Both
// are pure, deterministic and finite for every input.
package cost

import (
	"math"
	"strings"

	"github.com/dd0wney/cluso-netplan/pkg/topology"
)

const (
	// HopCost is the base cost of traversing any link
	HopCost = 10.0

	// NoCapacityPenalty replaces 100/available when a link has no headroom
	NoCapacityPenalty = 1000.0

	// capacityNumerator scales the 100/available search term
	capacityNumerator = 100.0

	// usageSurcharge is multiplied by the usage ratio and added to the quality cost
	usageSurcharge = 5.0
)

// Medium is the cost profile of a transmission technology
type Medium struct {
	// Multiplier scales the quality cost
	Multiplier float64 `yaml:"multiplier" json:"multiplier"`
	// Adder is added to the search weight
	Adder float64 `yaml:"adder" json:"adder"`
}

// Mediums is the built-in medium table. Unknown mediums use DefaultMedium.
var Mediums = map[string]Medium{
	"fiber":     {Multiplier: 0.8},
	"ethernet":  {Multiplier: 0.9},
	"microwave": {Multiplier: 1.0, Adder: 2},
	"wireless":  {Multiplier: 1.3},
	"satellite": {Multiplier: 2.0},
}

// DefaultMedium prices mediums missing from the table
var DefaultMedium = Medium{Multiplier: 1.0}

// Model holds the medium table. Use Default or NewModel.
type Model struct {
	mediums map[string]Medium
}

var defaultModel = NewModel(nil, nil)

// Default returns the built-in model
func Default() *Model {
	return defaultModel
}

// NewModel returns a model with the built-in table overlaid by the given
// multiplier and adder overrides. Medium names are case-insensitive.
// Non-positive multipliers and negative adders are ignored so weights stay
// positive.
func NewModel(multipliers, adders map[string]float64) *Model {
	m := &Model{mediums: make(map[string]Medium, len(Mediums))}
	for k, v := range Mediums {
		m.mediums[k] = v
	}
	for k, v := range multipliers {
		if v > 0 && !math.IsInf(v, 0) {
			med := m.lookup(k)
			med.Multiplier = v
			m.mediums[normalize(k)] = med
		}
	}
	for k, v := range adders {
		if v >= 0 && !math.IsInf(v, 0) {
			med := m.lookup(k)
			med.Adder = v
			m.mediums[normalize(k)] = med
		}
	}
	return m
}

func normalize(medium string) string {
	return strings.ToLower(strings.TrimSpace(medium))
}

func (m *Model) lookup(medium string) Medium {
	if v, ok := m.mediums[normalize(medium)]; ok {
		return v
	}
	return DefaultMedium
}

// Multiplier returns the quality multiplier of a medium
func (m *Model) Multiplier(medium string) float64 {
	return m.lookup(medium).Multiplier
}

// Adder returns the search-weight adder of a medium
func (m *Model) Adder(medium string) float64 {
	return m.lookup(medium).Adder
}

// SearchWeight is the shortest-path edge weight:
// hop cost + medium adder + 100/available. The capacity term is capped at
// NoCapacityPenalty, which is also charged when nothing is available. Always
// strictly positive and finite.
func (m *Model) SearchWeight(l *topology.Link) float64 {
	w := HopCost + m.Adder(l.Type)

	term := NoCapacityPenalty
	if available := l.Available(); available > 0 {
		term = math.Min(capacityNumerator/available, NoCapacityPenalty)
	}
	return w + term
}

// QualityCost is the descriptive per-link cost used in capacity plan totals:
// hop cost scaled by medium, capacity tier and congestion, plus a usage
// surcharge. It is never rounded here; see DisplayCost.
func (m *Model) QualityCost(l *topology.Link) float64 {
	usage := l.UsageRatio()

	c := HopCost
	c *= m.Multiplier(l.Type)
	c *= CapacityTier(l.MaxBandwidth)
	c *= CongestionFactor(1 - usage)
	c += usage * usageSurcharge
	return c
}

// DisplayCost is QualityCost rounded to whole units
func (m *Model) DisplayCost(l *topology.Link) float64 {
	return math.Round(m.QualityCost(l))
}

// CapacityTier returns the multiplier for a link's nominal capacity. High
// capacity links carry a premium because they are reserved preferentially.
func CapacityTier(maxBandwidth float64) float64 {
	switch {
	case maxBandwidth >= 1000:
		return 1.2
	case maxBandwidth >= 500:
		return 1.1
	case maxBandwidth < 100:
		return 0.8
	default:
		return 1.0
	}
}

// CongestionFactor returns the multiplier for an available-capacity ratio.
// A NaN ratio is treated as no headroom.
func CongestionFactor(availableRatio float64) float64 {
	switch {
	case math.IsNaN(availableRatio) || availableRatio < 0.1:
		return 3.0
	case availableRatio < 0.3:
		return 2.0
	case availableRatio < 0.5:
		return 1.5
	case availableRatio > 0.8:
		return 0.9
	default:
		return 1.0
	}
}

// Available returns the spare capacity of a link in Mbps
func Available(l *topology.Link) float64 { return l.Available() }

// UsageRatio returns current/max usage, 1 for links without capacity
func UsageRatio(l *topology.Link) float64 { return l.UsageRatio() }

// UsagePercent returns UsageRatio as a percentage
func UsagePercent(l *topology.Link) float64 { return l.UsagePercent() }

// SearchWeight prices a link with the default model
func SearchWeight(l *topology.Link) float64 { return defaultModel.SearchWeight(l) }

// QualityCost prices a link with the default model
func QualityCost(l *topology.Link) float64 { return defaultModel.QualityCost(l) }

// DisplayCost prices a link with the default model, rounded
func DisplayCost(l *topology.Link) float64 { return defaultModel.DisplayCost(l) }
