package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/couchcryptid/hvi-planner/internal/dataset"
	"github.com/couchcryptid/hvi-planner/internal/domain"
)

func TestGeneratedDatasetPassesAllPhases(t *testing.T) {
	fc := dataset.GenerateKingston(42)

	for _, p := range []*phase{
		validateIdentity(fc),
		validateRanges(fc),
		validateGeometry(fc),
		validateScores(fc),
		validateParity(fc, fc.Clone()),
	} {
		assert.Empty(t, p.errors, p.name)
	}
}

func TestValidateIdentity_Duplicates(t *testing.T) {
	fc := dataset.GenerateKingston(1)
	fc.Features[1].Properties.ID = fc.Features[0].Properties.ID

	p := validateIdentity(fc)

	assert.False(t, p.passed())
	assert.Len(t, p.errors, 1)
}

func TestValidateRanges_OutOfUnit(t *testing.T) {
	fc := dataset.GenerateKingston(1)
	fc.Features[0].Properties.Environment.TreeCanopyPct = 1.2
	fc.Features[0].Properties.Assets.CoolingCentres = -1

	p := validateRanges(fc)

	assert.Len(t, p.errors, 2)
}

func TestValidateGeometry_OpenRing(t *testing.T) {
	fc := dataset.GenerateKingston(1)
	ring := fc.Features[0].Geometry.Coordinates[0]
	ring[len(ring)-1] = [2]float64{0, 0}

	p := validateGeometry(fc)

	assert.Len(t, p.errors, 1)
	assert.Contains(t, p.errors[0], "not closed")
}

func TestValidateParity_Mismatch(t *testing.T) {
	fc := dataset.GenerateKingston(1)
	stored := fc.Clone()
	stored.Features[2].Properties.Demographics.SeniorsPct = 0.99

	p := validateParity(fc, stored)

	assert.Len(t, p.errors, 1)
	assert.Len(t, validateParity(fc, domain.NewFeatureCollection(nil)).errors, 1)
}
