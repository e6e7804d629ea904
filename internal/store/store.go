// Package store holds the baseline zone dataset for the lifetime of the process.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/couchcryptid/hvi-planner/internal/domain"
)

// Source loads a zone dataset from backing storage.
type Source interface {
	LoadZones(ctx context.Context) (domain.FeatureCollection, error)
}

// Store is the immutable baseline zone collection. It is loaded once and never
// written afterwards, so concurrent readers need no locking. Callers that
// mutate zones must do so on a WorkingCopy.
type Store struct {
	baseline domain.FeatureCollection
}

// Load reads the dataset from src and checks it for duplicate or empty IDs.
func Load(ctx context.Context, src Source) (*Store, error) {
	fc, err := src.LoadZones(ctx)
	if err != nil {
		return nil, fmt.Errorf("load zones: %w", err)
	}
	return New(fc)
}

// New builds a store from an in-memory collection. fc is copied.
func New(fc domain.FeatureCollection) (*Store, error) {
	seen := make(map[string]bool, len(fc.Features))
	for i, f := range fc.Features {
		id := f.Properties.ID
		if id == "" {
			return nil, fmt.Errorf("feature %d has no zone id", i)
		}
		if seen[id] {
			return nil, fmt.Errorf("duplicate zone id %q", id)
		}
		seen[id] = true
	}

	baseline := fc.Clone()
	if baseline.Type == "" {
		baseline.Type = "FeatureCollection"
	}
	return &Store{baseline: baseline}, nil
}

// WorkingCopy returns a private deep copy of the baseline for one request.
func (s *Store) WorkingCopy() domain.FeatureCollection {
	return s.baseline.Clone()
}

// Zones returns the baseline zones by value, in dataset order.
func (s *Store) Zones() []domain.Zone {
	return s.baseline.Zones()
}

// Len is the number of zones in the baseline.
func (s *Store) Len() int {
	return len(s.baseline.Features)
}

// CheckReadiness returns an error when the dataset holds no zones.
func (s *Store) CheckReadiness(_ context.Context) error {
	if s.Len() == 0 {
		return errors.New("zone dataset is empty")
	}
	return nil
}
