package domain

import "math"

// CentreRelief is the flat index reduction contributed by each cooling centre.
const CentreRelief = 0.15

// Breakdown holds the unscaled, unmitigated risk components of a score.
type Breakdown struct {
	EnvRisk    float64 `json:"env_risk"`
	SocialRisk float64 `json:"social_risk"`
}

// Score is the index for one zone under one set of weights and scenario.
type Score struct {
	HVI       float64
	Breakdown Breakdown
}

// ComputeScore evaluates the Heat Vulnerability Index for a zone. It is total
// over finite input and never validates the zone's attributes.
func ComputeScore(z Zone, w Weights, s Scenario) Score {
	env := envRisk(z, w)
	social := socialRisk(z, w)
	relief := float64(z.Assets.CoolingCentres) * CentreRelief

	raw := (env+social)*s.SeverityMult - relief

	return Score{
		HVI: clampUnit(raw),
		Breakdown: Breakdown{
			EnvRisk:    round2(env),
			SocialRisk: round2(social),
		},
	}
}

func envRisk(z Zone, w Weights) float64 {
	return (1.0-z.Environment.TreeCanopyPct)*w.Canopy + z.Environment.ImperviousSurfacePct*w.Impervious
}

func socialRisk(z Zone, w Weights) float64 {
	return z.Demographics.SeniorsPct*w.Seniors + z.Demographics.LowIncomePct*w.Income
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
