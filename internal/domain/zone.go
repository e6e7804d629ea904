package domain

import (
	"errors"
	"fmt"
	"math"
)

// Demographics describes who lives in a zone.
type Demographics struct {
	PopDensity          int     `json:"pop_density"`
	SeniorsPct          float64 `json:"seniors_pct"`
	LowIncomePct        float64 `json:"low_income_pct"`
	SocialIsolationRisk float64 `json:"social_isolation_risk"`
}

// Environment describes a zone's land cover.
type Environment struct {
	TreeCanopyPct        float64 `json:"tree_canopy_pct"`
	ImperviousSurfacePct float64 `json:"impervious_surface_pct"`
	AvgSurfaceTempSummer float64 `json:"avg_surface_temp_summer"`
}

// Assets counts heat-relevant public facilities in a zone.
type Assets struct {
	CoolingCentres int `json:"cooling_centres"`
	Libraries      int `json:"libraries"`
}

// Zone is one geographic planning unit. ID is stable and unique across a dataset.
type Zone struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Demographics Demographics `json:"demographics"`
	Environment  Environment  `json:"environment"`
	Assets       Assets       `json:"assets"`
}

// Weights are the scoring coefficients. They are not required to sum to 1.
type Weights struct {
	Canopy     float64 `json:"canopy"`
	Impervious float64 `json:"impervious"`
	Seniors    float64 `json:"seniors"`
	Income     float64 `json:"income"`
}

// DefaultWeights returns the weights used for the baseline map.
func DefaultWeights() Weights {
	return Weights{Canopy: 0.4, Impervious: 0.3, Seniors: 0.2, Income: 0.1}
}

// Validate reports weights that are negative or not finite.
func (w Weights) Validate() error {
	var errs []error
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"canopy", w.Canopy},
		{"impervious", w.Impervious},
		{"seniors", w.Seniors},
		{"income", w.Income},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) || f.v < 0 {
			errs = append(errs, fmt.Errorf("weights.%s must be a non-negative number, got %v", f.name, f.v))
		}
	}
	return errors.Join(errs...)
}

// Scenario scales combined risk for a weather condition. Name is a label only.
type Scenario struct {
	Name         string  `json:"name"`
	SeverityMult float64 `json:"severity_mult"`
}

// DefaultScenario is an average summer.
func DefaultScenario() Scenario {
	return Scenario{Name: "avg_summer", SeverityMult: 1.0}
}

// Validate reports a severity multiplier that is not a positive finite number.
func (s Scenario) Validate() error {
	if math.IsNaN(s.SeverityMult) || math.IsInf(s.SeverityMult, 0) || s.SeverityMult <= 0 {
		return fmt.Errorf("scenario.severity_mult must be a positive number, got %v", s.SeverityMult)
	}
	return nil
}

func clampUnit(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
