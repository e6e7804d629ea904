// Command gendata writes the synthetic Kingston zone grid used by the
// service, as a GeoJSON file and optionally into a SQLite zone database.
//
// Usage:
//
//	go run ./cmd/gendata -out data/kingston_data.json -seed 42 [-sqlite data/zones.db]
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/couchcryptid/hvi-planner/internal/adapter/sqlite"
	"github.com/couchcryptid/hvi-planner/internal/dataset"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "data/kingston_data.json", "output path for the GeoJSON dataset (empty to skip)")
	seed := flag.Int64("seed", 0, "generator seed; 0 picks a random one")
	sqlitePath := flag.String("sqlite", "", "optional SQLite database to load the zones into")
	flag.Parse()

	if *out == "" && *sqlitePath == "" {
		flag.Usage()
		return fmt.Errorf("nothing to write: set -out and/or -sqlite")
	}

	fc := dataset.GenerateKingston(*seed)

	if *out != "" {
		if err := dataset.WriteFile(*out, fc); err != nil {
			return err
		}
		fmt.Printf("Wrote %d zones to %s\n", len(fc.Features), *out)
	}

	if *sqlitePath != "" {
		db, err := sqlite.Open(*sqlitePath)
		if err != nil {
			return err
		}
		defer db.Close() //nolint:errcheck // CLI exit

		if err := db.SaveZones(context.Background(), fc); err != nil {
			return fmt.Errorf("save zones: %w", err)
		}
		fmt.Printf("Loaded %d zones into %s\n", len(fc.Features), *sqlitePath)
	}

	return nil
}
