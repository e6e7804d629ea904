// Package sqlite stores the zone dataset in a SQLite database.
package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/couchcryptid/hvi-planner/internal/domain"
)

// DB wraps a SQLite connection holding one zone dataset.
type DB struct {
	conn *sqlx.DB
}

// zoneRow mirrors the zones table. position preserves dataset order.
type zoneRow struct {
	Position             int     `db:"position"`
	ID                   string  `db:"id"`
	Name                 string  `db:"name"`
	PopDensity           int     `db:"pop_density"`
	SeniorsPct           float64 `db:"seniors_pct"`
	LowIncomePct         float64 `db:"low_income_pct"`
	SocialIsolationRisk  float64 `db:"social_isolation_risk"`
	TreeCanopyPct        float64 `db:"tree_canopy_pct"`
	ImperviousSurfacePct float64 `db:"impervious_surface_pct"`
	AvgSurfaceTempSummer float64 `db:"avg_surface_temp_summer"`
	CoolingCentres       int     `db:"cooling_centres"`
	Libraries            int     `db:"libraries"`
	Geometry             string  `db:"geometry"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS zones (
		position INTEGER NOT NULL,
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		pop_density INTEGER NOT NULL,
		seniors_pct REAL NOT NULL,
		low_income_pct REAL NOT NULL,
		social_isolation_risk REAL NOT NULL,
		tree_canopy_pct REAL NOT NULL,
		impervious_surface_pct REAL NOT NULL,
		avg_surface_temp_summer REAL NOT NULL,
		cooling_centres INTEGER NOT NULL,
		libraries INTEGER NOT NULL,
		geometry TEXT NOT NULL
	);`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveZones replaces the stored dataset with fc.
func (db *DB) SaveZones(ctx context.Context, fc domain.FeatureCollection) error {
	tx, err := db.conn.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM zones"); err != nil {
		return fmt.Errorf("clear zones: %w", err)
	}

	for i, f := range fc.Features {
		geom, err := json.Marshal(f.Geometry)
		if err != nil {
			return fmt.Errorf("encode geometry for %s: %w", f.Properties.ID, err)
		}
		row := toRow(i, f.Properties.Zone, string(geom))
		if _, err := tx.NamedExecContext(ctx, `INSERT INTO zones
			(position, id, name, pop_density, seniors_pct, low_income_pct, social_isolation_risk,
			 tree_canopy_pct, impervious_surface_pct, avg_surface_temp_summer,
			 cooling_centres, libraries, geometry)
			VALUES
			(:position, :id, :name, :pop_density, :seniors_pct, :low_income_pct, :social_isolation_risk,
			 :tree_canopy_pct, :impervious_surface_pct, :avg_surface_temp_summer,
			 :cooling_centres, :libraries, :geometry)`, row); err != nil {
			return fmt.Errorf("insert zone %s: %w", f.Properties.ID, err)
		}
	}

	return tx.Commit()
}

// LoadZones reads the stored dataset in its original order.
func (db *DB) LoadZones(ctx context.Context) (domain.FeatureCollection, error) {
	var rows []zoneRow
	if err := db.conn.SelectContext(ctx, &rows, "SELECT * FROM zones ORDER BY position"); err != nil {
		return domain.FeatureCollection{}, fmt.Errorf("select zones: %w", err)
	}

	features := make([]domain.Feature, 0, len(rows))
	for _, r := range rows {
		var geom domain.Geometry
		if err := json.Unmarshal([]byte(r.Geometry), &geom); err != nil {
			return domain.FeatureCollection{}, fmt.Errorf("decode geometry for %s: %w", r.ID, err)
		}
		features = append(features, domain.Feature{
			Type:       "Feature",
			Properties: domain.Properties{Zone: r.zone()},
			Geometry:   geom,
		})
	}
	return domain.NewFeatureCollection(features), nil
}

func toRow(pos int, z domain.Zone, geometry string) zoneRow {
	return zoneRow{
		Position:             pos,
		ID:                   z.ID,
		Name:                 z.Name,
		PopDensity:           z.Demographics.PopDensity,
		SeniorsPct:           z.Demographics.SeniorsPct,
		LowIncomePct:         z.Demographics.LowIncomePct,
		SocialIsolationRisk:  z.Demographics.SocialIsolationRisk,
		TreeCanopyPct:        z.Environment.TreeCanopyPct,
		ImperviousSurfacePct: z.Environment.ImperviousSurfacePct,
		AvgSurfaceTempSummer: z.Environment.AvgSurfaceTempSummer,
		CoolingCentres:       z.Assets.CoolingCentres,
		Libraries:            z.Assets.Libraries,
		Geometry:             geometry,
	}
}

func (r zoneRow) zone() domain.Zone {
	return domain.Zone{
		ID:   r.ID,
		Name: r.Name,
		Demographics: domain.Demographics{
			PopDensity:          r.PopDensity,
			SeniorsPct:          r.SeniorsPct,
			LowIncomePct:        r.LowIncomePct,
			SocialIsolationRisk: r.SocialIsolationRisk,
		},
		Environment: domain.Environment{
			TreeCanopyPct:        r.TreeCanopyPct,
			ImperviousSurfacePct: r.ImperviousSurfacePct,
			AvgSurfaceTempSummer: r.AvgSurfaceTempSummer,
		},
		Assets: domain.Assets{
			CoolingCentres: r.CoolingCentres,
			Libraries:      r.Libraries,
		},
	}
}
