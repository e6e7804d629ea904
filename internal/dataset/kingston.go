// Package dataset synthesises zone datasets for development and tests.
package dataset

import (
	"encoding/json"
	"fmt"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/couchcryptid/hvi-planner/internal/domain"
)

// Kingston core bounding box, north-west to south-east.
const (
	latStart = 44.26
	latEnd   = 44.21
	lonStart = -76.55
	lonEnd   = -76.45

	gridRows = 4
	gridCols = 4
)

var neighbourhoods = []string{
	"Sydenham", "Portsmouth", "Williamsville", "King's Town",
	"Pittsburgh", "Collins-Bayridge", "Lakeside", "Loyalist",
	"Cataraqui North", "Meadowbrook", "Rideau Heights", "Kingscourt",
	"Strathcona Park", "Grenadier", "Polson Park", "Calvin Park",
}

// water cells in the south-east corner of the grid carry no zone.
var water = map[[2]int]bool{
	{3, 3}: true,
	{3, 2}: true,
	{2, 3}: true,
}

// GenerateKingston builds a 13-zone grid over central Kingston. Income follows
// a smooth noise field so neighbouring zones resemble each other; canopy tracks
// income and impervious surface falls as canopy rises. A zero seed picks one at
// random.
func GenerateKingston(seed int64) domain.FeatureCollection {
	if seed == 0 {
		seed = rand.Int64()
	}
	rng := rand.New(rand.NewPCG(uint64(seed), uint64(seed)>>1|1))
	incomeField := opensimplex.NewNormalized(seed)

	latStep := (latEnd - latStart) / gridRows
	lonStep := (lonEnd - lonStart) / gridCols

	features := make([]domain.Feature, 0, gridRows*gridCols)
	for r := range gridRows {
		for c := range gridCols {
			if water[[2]int{r, c}] {
				continue
			}

			lat := latStart + float64(r)*latStep
			lon := lonStart + float64(c)*lonStep

			// 1.0 is high income.
			income := 0.2 + 0.8*(0.5*incomeField.Eval2(float64(r)*0.7, float64(c)*0.7)+0.5*rng.Float64())
			canopy := clamp(income*0.5+uniform(rng, -0.15, 0.2), 0.02, 0.7)
			impervious := clamp(1.0-canopy*1.2-uniform(rng, 0, 0.1), 0.3, 0.98)

			z := domain.Zone{
				ID:   fmt.Sprintf("zone_%d_%d", r, c),
				Name: neighbourhoods[(r*gridCols+c)%len(neighbourhoods)],
				Demographics: domain.Demographics{
					PopDensity:          int(uniform(rng, 2000, 8000)),
					SeniorsPct:          round(uniform(rng, 0.10, 0.35), 2),
					LowIncomePct:        round(1.0-income, 2),
					SocialIsolationRisk: round(uniform(rng, 0.1, 0.6), 2),
				},
				Environment: domain.Environment{
					TreeCanopyPct:        round(canopy, 2),
					ImperviousSurfacePct: round(impervious, 2),
					AvgSurfaceTempSummer: round(25+impervious*10-canopy*5, 1),
				},
				Assets: domain.Assets{
					CoolingCentres: bernoulli(rng, 0.3),
					Libraries:      bernoulli(rng, 0.2),
				},
			}

			features = append(features, domain.Feature{
				Type:       "Feature",
				Properties: domain.Properties{Zone: z},
				Geometry:   cell(lat, lon, latStep, lonStep),
			})
		}
	}
	return domain.NewFeatureCollection(features)
}

// cell returns the closed counter-clockwise ring for one grid square.
func cell(lat, lon, latStep, lonStep float64) domain.Geometry {
	p1 := [2]float64{lon, lat}
	p2 := [2]float64{lon + lonStep, lat}
	p3 := [2]float64{lon + lonStep, lat + latStep}
	p4 := [2]float64{lon, lat + latStep}
	return domain.Geometry{
		Type:        "Polygon",
		Coordinates: [][][2]float64{{p1, p2, p3, p4, p1}},
	}
}

// WriteFile writes fc as indented JSON, creating parent directories.
func WriteFile(path string, fc domain.FeatureCollection) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create data dir: %w", err)
		}
	}
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode dataset: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write dataset: %w", err)
	}
	return nil
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*rng.Float64()
}

func bernoulli(rng *rand.Rand, p float64) int {
	if rng.Float64() < p {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
