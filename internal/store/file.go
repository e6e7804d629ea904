package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/couchcryptid/hvi-planner/internal/dataset"
	"github.com/couchcryptid/hvi-planner/internal/domain"
)

// FileSource reads a GeoJSON FeatureCollection from disk. When the file does
// not exist and Generate is set, a synthetic dataset is written there first.
type FileSource struct {
	Path     string
	Generate bool
	Seed     int64
	Logger   *slog.Logger
}

// LoadZones implements Source.
func (f FileSource) LoadZones(_ context.Context) (domain.FeatureCollection, error) {
	data, err := os.ReadFile(f.Path)
	if errors.Is(err, fs.ErrNotExist) && f.Generate {
		if err := f.generate(); err != nil {
			return domain.FeatureCollection{}, err
		}
		data, err = os.ReadFile(f.Path)
	}
	if err != nil {
		return domain.FeatureCollection{}, fmt.Errorf("read %s: %w", f.Path, err)
	}

	var fc domain.FeatureCollection
	if err := json.Unmarshal(data, &fc); err != nil {
		return domain.FeatureCollection{}, fmt.Errorf("decode %s: %w", f.Path, err)
	}
	if fc.Type != "FeatureCollection" {
		return domain.FeatureCollection{}, fmt.Errorf("decode %s: expected FeatureCollection, got %q", f.Path, fc.Type)
	}
	return fc, nil
}

func (f FileSource) generate() error {
	fc := dataset.GenerateKingston(f.Seed)
	if err := dataset.WriteFile(f.Path, fc); err != nil {
		return fmt.Errorf("generate dataset: %w", err)
	}
	if f.Logger != nil {
		f.Logger.Info("generated synthetic dataset", "path", f.Path, "zones", len(fc.Features))
	}
	return nil
}
