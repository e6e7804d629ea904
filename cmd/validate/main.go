// Command validate performs integrity checks on a zone dataset: identity,
// attribute ranges, polygon geometry, and scoring bounds. When a SQLite zone
// database is given, it also checks that the database matches the JSON file.
//
// Usage:
//
//	go run ./cmd/validate -data data/kingston_data.json [-sqlite data/zones.db]
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"

	"github.com/google/go-cmp/cmp"

	"github.com/couchcryptid/hvi-planner/internal/adapter/sqlite"
	"github.com/couchcryptid/hvi-planner/internal/domain"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataPath := flag.String("data", "", "path to the GeoJSON zone dataset")
	sqlitePath := flag.String("sqlite", "", "optional SQLite zone database to compare against -data")
	flag.Parse()

	if *dataPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*dataPath, *sqlitePath); code != 0 {
		os.Exit(code)
	}
}

func run(dataPath, sqlitePath string) int {
	fmt.Println("=== Zone Dataset Integrity Validation ===")
	fmt.Println()

	fc, err := loadCollection(dataPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load dataset: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateIdentity(fc),
		validateRanges(fc),
		validateGeometry(fc),
		validateScores(fc),
	}

	if sqlitePath != "" {
		db, err := sqlite.Open(sqlitePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: open sqlite: %v\n", err)
			return 1
		}
		stored, err := db.LoadZones(context.Background())
		db.Close() //nolint:errcheck // read-only use
		if err != nil {
			fmt.Fprintf(os.Stderr, "FATAL: load sqlite zones: %v\n", err)
			return 1
		}
		phases = append(phases, validateParity(fc, stored))
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Zones: %d\n", len(fc.Features))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if !allPassed {
		fmt.Println("\nValidation FAILED.")
		return 1
	}
	fmt.Println("\nAll checks passed.")
	return 0
}

func loadCollection(path string) (domain.FeatureCollection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.FeatureCollection{}, err
	}
	var fc domain.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return domain.FeatureCollection{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if fc.Type != "FeatureCollection" {
		return domain.FeatureCollection{}, fmt.Errorf("%s: type is %q, want FeatureCollection", path, fc.Type)
	}
	return fc, nil
}

func validateIdentity(fc domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 1: Zone identity"}
	if len(fc.Features) == 0 {
		p.errorf("dataset has no features")
	}
	seen := make(map[string]int, len(fc.Features))
	for i, f := range fc.Features {
		z := f.Properties.Zone
		if z.ID == "" {
			p.errorf("feature %d: empty id", i)
			continue
		}
		if first, dup := seen[z.ID]; dup {
			p.errorf("feature %d: id %q already used by feature %d", i, z.ID, first)
		}
		seen[z.ID] = i
		if z.Name == "" {
			p.errorf("%s: empty name", z.ID)
		}
	}
	return p
}

func validateRanges(fc domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 2: Attribute ranges"}
	for _, f := range fc.Features {
		z := f.Properties.Zone
		unit := []struct {
			field string
			v     float64
		}{
			{"seniors_pct", z.Demographics.SeniorsPct},
			{"low_income_pct", z.Demographics.LowIncomePct},
			{"social_isolation_risk", z.Demographics.SocialIsolationRisk},
			{"tree_canopy_pct", z.Environment.TreeCanopyPct},
			{"impervious_surface_pct", z.Environment.ImperviousSurfacePct},
		}
		for _, u := range unit {
			if math.IsNaN(u.v) || u.v < 0 || u.v > 1 {
				p.errorf("%s: %s=%v outside [0,1]", z.ID, u.field, u.v)
			}
		}
		if z.Demographics.PopDensity < 0 {
			p.errorf("%s: pop_density=%d is negative", z.ID, z.Demographics.PopDensity)
		}
		if z.Assets.CoolingCentres < 0 {
			p.errorf("%s: cooling_centres=%d is negative", z.ID, z.Assets.CoolingCentres)
		}
		if z.Assets.Libraries < 0 {
			p.errorf("%s: libraries=%d is negative", z.ID, z.Assets.Libraries)
		}
	}
	return p
}

func validateGeometry(fc domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 3: Polygon geometry"}
	for _, f := range fc.Features {
		id := f.Properties.ID
		g := f.Geometry
		if g.Type != "Polygon" {
			p.errorf("%s: geometry type %q, want Polygon", id, g.Type)
			continue
		}
		if len(g.Coordinates) == 0 {
			p.errorf("%s: polygon has no rings", id)
			continue
		}
		for r, ring := range g.Coordinates {
			if len(ring) < 4 {
				p.errorf("%s: ring %d has %d positions, want at least 4", id, r, len(ring))
				continue
			}
			if ring[0] != ring[len(ring)-1] {
				p.errorf("%s: ring %d is not closed", id, r)
			}
			for _, pos := range ring {
				if pos[0] < -180 || pos[0] > 180 || pos[1] < -90 || pos[1] > 90 {
					p.errorf("%s: ring %d position %v out of lon/lat range", id, r, pos)
					break
				}
			}
		}
	}
	return p
}

func validateScores(fc domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 4: Default scoring bounds"}
	w, s := domain.DefaultWeights(), domain.DefaultScenario()
	for _, f := range fc.Features {
		score := domain.ComputeScore(f.Properties.Zone, w, s)
		if math.IsNaN(score.HVI) || score.HVI < 0 || score.HVI > 1 {
			p.errorf("%s: hvi=%v outside [0,1]", f.Properties.ID, score.HVI)
		}
	}
	return p
}

func validateParity(fc, stored domain.FeatureCollection) *phase {
	p := &phase{name: "Phase 5: SQLite parity"}
	if len(fc.Features) != len(stored.Features) {
		p.errorf("feature count: json=%d sqlite=%d", len(fc.Features), len(stored.Features))
		return p
	}
	for i := range fc.Features {
		want, got := fc.Features[i], stored.Features[i]
		if diff := cmp.Diff(want.Properties.Zone, got.Properties.Zone); diff != "" {
			p.errorf("feature %d (%s) zone mismatch (-json +sqlite):\n%s", i, want.Properties.ID, diff)
		}
		if diff := cmp.Diff(want.Geometry, got.Geometry); diff != "" {
			p.errorf("feature %d (%s) geometry mismatch (-json +sqlite):\n%s", i, want.Properties.ID, diff)
		}
	}
	return p
}
