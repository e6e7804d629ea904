// Package planner serves scored, simulated, and optimised views of the zone
// dataset. Every call works on its own copy of the baseline, so concurrent
// requests never see each other's interventions.
package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/hvi-planner/internal/domain"
	"github.com/couchcryptid/hvi-planner/internal/observability"
)

// ZoneStore provides the baseline dataset.
type ZoneStore interface {
	WorkingCopy() domain.FeatureCollection
	Zones() []domain.Zone
	CheckReadiness(ctx context.Context) error
}

// PlanPublisher delivers accepted plans to downstream consumers.
type PlanPublisher interface {
	PublishPlan(ctx context.Context, event domain.PlanEvent) error
}

// SimulationRequest asks for the index after applying interventions.
type SimulationRequest struct {
	Weights       domain.Weights
	Scenario      domain.Scenario
	Interventions domain.Interventions
}

// SimulationResult is the mutated dataset with scores attached.
type SimulationResult struct {
	GeoJSON domain.FeatureCollection `json:"geojson"`
	AvgHVI  float64                  `json:"avg_hvi"`
}

// OptimizationRequest asks for a budget-constrained plan. Costs is accepted for
// compatibility with existing clients but is not used: action prices are fixed.
type OptimizationRequest struct {
	Budget   float64
	Weights  domain.Weights
	Scenario domain.Scenario
	Costs    map[string]float64
}

// scoreKey identifies a baseline scoring. The scenario name does not affect
// scores and is left out.
type scoreKey struct {
	weights  domain.Weights
	severity float64
}

// Service answers planner requests against a ZoneStore.
type Service struct {
	zones     ZoneStore
	publisher PlanPublisher
	cache     *lru.Cache[scoreKey, domain.FeatureCollection]
	clock     clockwork.Clock
	logger    *slog.Logger
	metrics   *observability.Metrics
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher enables plan publishing. A nil publisher leaves it disabled.
func WithPublisher(p PlanPublisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithClock sets the time source used to stamp published plans.
func WithClock(c clockwork.Clock) Option {
	return func(s *Service) { s.clock = c }
}

// New creates a Service. cacheSize bounds the number of (weights, severity)
// baseline scorings kept in memory.
func New(zones ZoneStore, cacheSize int, logger *slog.Logger, metrics *observability.Metrics, opts ...Option) (*Service, error) {
	cache, err := lru.New[scoreKey, domain.FeatureCollection](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("create score cache: %w", err)
	}

	s := &Service{
		zones:   zones,
		cache:   cache,
		clock:   clockwork.NewRealClock(),
		logger:  logger,
		metrics: metrics,
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.publisher != nil {
		s.metrics.PlanPublisherIsOn.Set(1)
	} else {
		s.metrics.PlanPublisherIsOn.Set(0)
	}
	s.metrics.ZonesLoaded.Set(float64(len(zones.Zones())))

	return s, nil
}

// CheckReadiness reports whether the zone dataset is available.
func (s *Service) CheckReadiness(ctx context.Context) error {
	return s.zones.CheckReadiness(ctx)
}

// GetScored returns the baseline dataset with an index and breakdown attached
// to every zone.
func (s *Service) GetScored(_ context.Context, w domain.Weights, sc domain.Scenario) domain.FeatureCollection {
	defer s.observe("data", time.Now())

	key := scoreKey{weights: w, severity: sc.SeverityMult}
	if fc, ok := s.cache.Get(key); ok {
		s.metrics.ScoreCache.WithLabelValues("hit").Inc()
		return fc.Clone()
	}
	s.metrics.ScoreCache.WithLabelValues("miss").Inc()

	fc := s.zones.WorkingCopy()
	for i := range fc.Features {
		fc.Features[i], _ = fc.Features[i].Scored(w, sc)
	}
	s.cache.Add(key, fc)

	return fc.Clone()
}

// Simulate applies interventions to a private copy of the dataset and scores
// the result. The average over an empty dataset is 0.
func (s *Service) Simulate(_ context.Context, req SimulationRequest) SimulationResult {
	defer s.observe("simulate", time.Now())

	fc := s.zones.WorkingCopy()
	applied := 0
	var total float64

	for i := range fc.Features {
		f := &fc.Features[i]
		if iv, ok := req.Interventions[f.Properties.ID]; ok {
			f.Properties.Zone = domain.ApplyIntervention(f.Properties.Zone, iv)
			applied++
		}
		scored, score := f.Scored(req.Weights, req.Scenario)
		*f = scored
		total += score.HVI
	}

	if ignored := len(req.Interventions) - applied; ignored > 0 {
		s.logger.Debug("ignoring interventions for unknown zones", "count", ignored)
	}

	var avg float64
	if n := len(fc.Features); n > 0 {
		avg = total / float64(n)
	}
	s.metrics.AverageHVI.Observe(avg)

	return SimulationResult{GeoJSON: fc, AvgHVI: avg}
}

// Optimize recommends interventions within the budget. When a publisher is
// configured the plan is published; a publish failure is logged and does not
// affect the returned plan.
func (s *Service) Optimize(ctx context.Context, req OptimizationRequest) domain.Plan {
	defer s.observe("optimize", time.Now())

	if len(req.Costs) > 0 {
		s.logger.Debug("ignoring caller-supplied action costs", "costs", req.Costs)
	}

	plan := domain.Optimize(s.zones.Zones(), req.Weights, req.Scenario, req.Budget)

	for _, c := range plan.Recommendations {
		s.metrics.PlanActions.WithLabelValues(string(c.Action)).Inc()
	}
	s.metrics.PlanSpend.Observe(plan.TotalSpent)

	s.logger.Info("plan computed",
		"budget", req.Budget,
		"scenario", req.Scenario.Name,
		"actions", len(plan.Recommendations),
		"total_spent", plan.TotalSpent,
		"projected_reduction", plan.ProjectedReduction,
	)

	s.publish(ctx, req, plan)
	return plan
}

func (s *Service) publish(ctx context.Context, req OptimizationRequest, plan domain.Plan) {
	if s.publisher == nil {
		return
	}

	event := domain.NewPlanEvent(req.Budget, req.Weights, req.Scenario, plan, s.clock.Now())
	if err := s.publisher.PublishPlan(ctx, event); err != nil {
		s.metrics.PlanPublishes.WithLabelValues("error").Inc()
		s.logger.Warn("publish plan failed", "plan_id", event.ID, "error", err)
		return
	}
	s.metrics.PlanPublishes.WithLabelValues("success").Inc()
}

func (s *Service) observe(operation string, start time.Time) {
	s.metrics.Requests.WithLabelValues(operation, "ok").Inc()
	s.metrics.RequestDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
