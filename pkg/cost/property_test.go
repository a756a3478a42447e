package cost

import (
	"math"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// TestCostProperties checks the cost model invariants over generated links
func TestCostProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	mediums := gen.OneConstOf("fiber", "ethernet", "microwave", "wireless", "satellite", "copper")

	properties.Property("quality cost non-decreasing as usage grows", prop.ForAll(
		func(medium string, max float64, a, b float64) bool {
			lo, hi := math.Min(a, b)*max, math.Max(a, b)*max
			return QualityCost(link(medium, max, lo)) <= QualityCost(link(medium, max, hi))+1e-9
		},
		mediums,
		gen.Float64Range(1, 20000),
		gen.Float64Range(0, 1),
		gen.Float64Range(0, 1),
	))

	properties.Property("search weight non-decreasing as usage grows", prop.ForAll(
		func(medium string, max float64, a, b float64) bool {
			lo, hi := math.Min(a, b)*max, math.Max(a, b)*max
			return SearchWeight(link(medium, max, lo)) <= SearchWeight(link(medium, max, hi))+1e-9
		},
		mediums,
		gen.Float64Range(1, 20000),
		gen.Float64Range(0, 1.5),
		gen.Float64Range(0, 1.5),
	))

	properties.Property("weights finite and positive", prop.ForAll(
		func(medium string, max, cur float64) bool {
			l := link(medium, max, cur)
			w, q := SearchWeight(l), QualityCost(l)
			return w > 0 && q > 0 && !math.IsInf(w, 0) && !math.IsInf(q, 0)
		},
		mediums,
		gen.Float64Range(-100, 20000),
		gen.Float64Range(-100, 40000),
	))

	properties.Property("upgrade suggestion covers the requirement", prop.ForAll(
		func(current, required float64) bool {
			p := Upgrade(current, required)
			return p.SuggestedCapacity >= required-1e-6 &&
				p.SuggestedCapacity-required < UpgradeStep &&
				math.Mod(p.SuggestedCapacity, UpgradeStep) == 0
		},
		gen.Float64Range(0, 5000),
		gen.Float64Range(1, 10000),
	))

	properties.TestingRun(t)
}
