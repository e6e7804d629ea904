package domain

import "math"

const (
	// CanopyCeiling is the highest canopy fraction tree planting can reach.
	CanopyCeiling = 0.8

	// canopyPerHundredTrees is the canopy fraction gained per 100 trees planted.
	canopyPerHundredTrees = 0.02
)

// Intervention is a set of actions requested for one zone.
type Intervention struct {
	AddTrees  int `json:"add_trees"`
	NewCentre int `json:"new_centre"`
}

// Interventions maps zone IDs to requested actions. Missing zones are unchanged
// and IDs that match no zone are ignored.
type Interventions map[string]Intervention

// ApplyIntervention returns z with iv applied. z is passed by value so the
// caller's copy is never touched.
//
// Non-positive tree counts have no effect. Planting never lowers canopy that is
// already above the ceiling. Negative centre counts are treated as zero, and
// the centre count saturates at math.MaxInt instead of wrapping.
func ApplyIntervention(z Zone, iv Intervention) Zone {
	if iv.AddTrees > 0 {
		current := z.Environment.TreeCanopyPct
		next := math.Min(CanopyCeiling, current+canopyBoost(iv.AddTrees))
		if next > current {
			z.Environment.TreeCanopyPct = clampUnit(next)
		}
	}
	if iv.NewCentre > 0 {
		if z.Assets.CoolingCentres > 0 && iv.NewCentre > math.MaxInt-z.Assets.CoolingCentres {
			z.Assets.CoolingCentres = math.MaxInt
		} else {
			z.Assets.CoolingCentres += iv.NewCentre
		}
	}
	return z
}

func canopyBoost(trees int) float64 {
	return float64(trees) / 100.0 * canopyPerHundredTrees
}
