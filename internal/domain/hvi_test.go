package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const floatTolerance = 1e-9

// zoneA is the reference hot zone: sparse canopy, mostly paved.
func zoneA() Zone {
	return Zone{
		ID:   "zone_0_0",
		Name: "Sydenham",
		Demographics: Demographics{
			PopDensity:   4200,
			SeniorsPct:   0.3,
			LowIncomePct: 0.5,
		},
		Environment: Environment{
			TreeCanopyPct:        0.1,
			ImperviousSurfacePct: 0.9,
		},
	}
}

func TestComputeScore(t *testing.T) {
	t.Run("reference zone with default weights", func(t *testing.T) {
		s := ComputeScore(zoneA(), DefaultWeights(), DefaultScenario())

		assert.InDelta(t, 0.74, s.HVI, floatTolerance)
		assert.Equal(t, 0.63, s.Breakdown.EnvRisk)
		assert.Equal(t, 0.11, s.Breakdown.SocialRisk)
	})

	t.Run("cooling centres clamp to zero", func(t *testing.T) {
		z := zoneA()
		z.Assets.CoolingCentres = 5

		s := ComputeScore(z, DefaultWeights(), DefaultScenario())

		assert.Equal(t, 0.0, s.HVI)
		assert.Equal(t, 0.63, s.Breakdown.EnvRisk, "breakdown ignores mitigation")
	})

	t.Run("fully shaded zone scores zero", func(t *testing.T) {
		z := Zone{Environment: Environment{TreeCanopyPct: 1, ImperviousSurfacePct: 0}}

		s := ComputeScore(z, DefaultWeights(), Scenario{SeverityMult: 3})

		assert.Equal(t, 0.0, s.HVI)
		assert.Equal(t, Breakdown{}, s.Breakdown)
	})

	t.Run("fully paved zone clamps to one", func(t *testing.T) {
		z := Zone{Environment: Environment{TreeCanopyPct: 0, ImperviousSurfacePct: 1}}
		w := Weights{Canopy: 0.5, Impervious: 0.5}

		s := ComputeScore(z, w, Scenario{SeverityMult: 1.5})

		assert.Equal(t, 1.0, s.HVI)
		assert.Equal(t, 1.0, s.Breakdown.EnvRisk, "breakdown is unscaled")
	})

	t.Run("severity scales before mitigation", func(t *testing.T) {
		z := zoneA()
		z.Assets.CoolingCentres = 1

		s := ComputeScore(z, DefaultWeights(), Scenario{SeverityMult: 1.2})

		// (0.63 + 0.11) * 1.2 - 0.15
		assert.InDelta(t, 0.738, s.HVI, floatTolerance)
	})

	t.Run("out of range input is scored as given", func(t *testing.T) {
		z := Zone{Environment: Environment{TreeCanopyPct: 1.5}}
		w := Weights{Canopy: 1}

		s := ComputeScore(z, w, DefaultScenario())

		assert.Equal(t, 0.0, s.HVI)
		assert.Equal(t, -0.5, s.Breakdown.EnvRisk)
	})

	t.Run("zero weights", func(t *testing.T) {
		s := ComputeScore(zoneA(), Weights{}, DefaultScenario())
		assert.Equal(t, 0.0, s.HVI)
	})
}

func TestWeightsValidate(t *testing.T) {
	assert.NoError(t, DefaultWeights().Validate())
	assert.NoError(t, Weights{}.Validate())

	err := Weights{Canopy: -0.1, Income: -1}.Validate()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), "weights.canopy")
		assert.Contains(t, err.Error(), "weights.income")
		assert.NotContains(t, err.Error(), "weights.seniors")
	}
}

func TestScenarioValidate(t *testing.T) {
	assert.NoError(t, DefaultScenario().Validate())
	assert.NoError(t, Scenario{Name: "extreme_heat", SeverityMult: 1.5}.Validate())
	assert.Error(t, Scenario{SeverityMult: 0}.Validate())
	assert.Error(t, Scenario{SeverityMult: -1}.Validate())
}
