package domain

import (
	"cmp"
	"math"
	"slices"
)

// ActionKind identifies a recommendable intervention.
type ActionKind string

const (
	ActionPlantTrees  ActionKind = "plant_trees"
	ActionBuildCentre ActionKind = "build_centre"
)

// Action is a fixed-size, fixed-price unit of intervention.
type Action struct {
	Kind        ActionKind
	Description string
	Cost        float64
	Units       int
}

// Catalogue prices are fixed. Caller-supplied costs are not consulted.
var (
	PlantTrees  = Action{Kind: ActionPlantTrees, Description: "Plant 50 Trees", Cost: 25000, Units: 50}
	BuildCentre = Action{Kind: ActionBuildCentre, Description: "New Cooling Centre", Cost: 100000, Units: 1}
)

// minReduction drops candidates whose estimated effect is negligible, such as
// zones already at the canopy ceiling or scored near zero.
const minReduction = 0.0001

// Candidate is one (zone, action) pair with its estimated effect.
type Candidate struct {
	ZoneID      string     `json:"zone_id"`
	ZoneName    string     `json:"zone_name"`
	Action      ActionKind `json:"action"`
	Cost        float64    `json:"cost"`
	Description string     `json:"desc"`
	Reduction   float64    `json:"reduction"`
	Efficiency  float64    `json:"efficiency"`
}

// Plan is the output of the budget allocator.
type Plan struct {
	Recommendations    []Candidate `json:"recommendations"`
	TotalSpent         float64     `json:"total_spent"`
	ProjectedReduction float64     `json:"projected_hvi_reduction"`
}

// Candidates estimates one tree-planting and one cooling-centre candidate per
// zone, in zone order. Each estimate is made against the zone as given.
func Candidates(zones []Zone, w Weights, s Scenario) []Candidate {
	out := make([]Candidate, 0, 2*len(zones))
	for _, z := range zones {
		canopy := z.Environment.TreeCanopyPct
		gain := math.Min(CanopyCeiling, canopy+canopyBoost(PlantTrees.Units)) - canopy
		if r := w.Canopy * gain * s.SeverityMult; r > minReduction {
			out = append(out, newCandidate(z, PlantTrees, r))
		}

		base := ComputeScore(z, w, s).HVI
		if r := base - math.Max(0, base-CentreRelief); r > minReduction {
			out = append(out, newCandidate(z, BuildCentre, r))
		}
	}
	return out
}

func newCandidate(z Zone, a Action, reduction float64) Candidate {
	return Candidate{
		ZoneID:      z.ID,
		ZoneName:    z.Name,
		Action:      a.Kind,
		Cost:        a.Cost,
		Description: a.Description,
		Reduction:   reduction,
		Efficiency:  reduction / a.Cost,
	}
}

// Optimize ranks every candidate by efficiency and fills the budget in a single
// pass. A candidate that does not fit is skipped, not deferred, and later
// cheaper candidates may still be accepted. Ties keep zone order.
func Optimize(zones []Zone, w Weights, s Scenario, budget float64) Plan {
	candidates := Candidates(zones, w, s)
	slices.SortStableFunc(candidates, func(a, b Candidate) int {
		return cmp.Compare(b.Efficiency, a.Efficiency)
	})

	plan := Plan{Recommendations: []Candidate{}}
	for _, c := range candidates {
		if plan.TotalSpent+c.Cost > budget {
			continue
		}
		plan.TotalSpent += c.Cost
		plan.ProjectedReduction += c.Reduction
		plan.Recommendations = append(plan.Recommendations, c)
	}
	return plan
}
