package planner_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/hvi-planner/internal/domain"
	"github.com/couchcryptid/hvi-planner/internal/observability"
	"github.com/couchcryptid/hvi-planner/internal/planner"
	"github.com/couchcryptid/hvi-planner/internal/store"
)

// --- mocks ---

type mockPublisher struct {
	mu     sync.Mutex
	events []domain.PlanEvent
	err    error
}

func (m *mockPublisher) PublishPlan(_ context.Context, event domain.PlanEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.events = append(m.events, event)
	return nil
}

// --- fixtures ---

func testZone(id string, canopy, impervious, seniors, income float64, centres int) domain.Feature {
	return domain.Feature{
		Type: "Feature",
		Properties: domain.Properties{Zone: domain.Zone{
			ID:           id,
			Name:         "Zone " + id,
			Demographics: domain.Demographics{SeniorsPct: seniors, LowIncomePct: income},
			Environment:  domain.Environment{TreeCanopyPct: canopy, ImperviousSurfacePct: impervious},
			Assets:       domain.Assets{CoolingCentres: centres},
		}},
		Geometry: domain.Geometry{
			Type:        "Polygon",
			Coordinates: [][][2]float64{{{-76.55, 44.26}, {-76.525, 44.26}, {-76.525, 44.2475}, {-76.55, 44.26}}},
		},
	}
}

// fourZones: A is the hot reference zone (hvi 0.74). B, C and D score 0.11,
// 0.14 and 0.13, so A holds the only full-size cooling-centre candidate.
func fourZones() domain.FeatureCollection {
	return domain.NewFeatureCollection([]domain.Feature{
		testZone("A", 0.1, 0.9, 0.3, 0.5, 0),
		testZone("B", 0.5, 0.5, 0.2, 0.2, 2),
		testZone("C", 0.8, 0.1, 0.1, 0.1, 0),
		testZone("D", 0.3, 0.7, 0.25, 0.4, 3),
	})
}

func newService(t *testing.T, fc domain.FeatureCollection, opts ...planner.Option) (*planner.Service, *observability.Metrics) {
	t.Helper()
	st, err := store.New(fc)
	require.NoError(t, err)
	metrics := observability.NewMetricsForTesting()
	svc, err := planner.New(st, 8, slog.Default(), metrics, opts...)
	require.NoError(t, err)
	return svc, metrics
}

// --- tests ---

func TestGetScored(t *testing.T) {
	svc, metrics := newService(t, fourZones())

	fc := svc.GetScored(context.Background(), domain.DefaultWeights(), domain.DefaultScenario())

	require.Len(t, fc.Features, 4)
	a := fc.Features[0].Properties
	assert.Equal(t, "A", a.ID)
	require.NotNil(t, a.HVI)
	assert.InDelta(t, 0.74, *a.HVI, 1e-9)
	assert.Equal(t, domain.Breakdown{EnvRisk: 0.63, SocialRisk: 0.11}, *a.Breakdown)
	assert.Equal(t, []string{"A", "B", "C", "D"}, ids(fc))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScoreCache.WithLabelValues("miss")))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.ZonesLoaded))
}

func TestGetScored_CacheReturnsCopies(t *testing.T) {
	svc, metrics := newService(t, fourZones())
	ctx := context.Background()
	w, s := domain.DefaultWeights(), domain.DefaultScenario()

	first := svc.GetScored(ctx, w, s)
	*first.Features[0].Properties.HVI = 99
	first.Features[0].Properties.Assets.CoolingCentres = 99

	second := svc.GetScored(ctx, w, s)
	assert.InDelta(t, 0.74, *second.Features[0].Properties.HVI, 1e-9)
	assert.Zero(t, second.Features[0].Properties.Assets.CoolingCentres)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.ScoreCache.WithLabelValues("hit")))

	// A different severity is a different scoring.
	hot := svc.GetScored(ctx, w, domain.Scenario{Name: "extreme_heat", SeverityMult: 1.3})
	assert.InDelta(t, 0.962, *hot.Features[0].Properties.HVI, 1e-9)
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.ScoreCache.WithLabelValues("miss")))
}

func TestSimulate(t *testing.T) {
	svc, _ := newService(t, fourZones())

	res := svc.Simulate(context.Background(), planner.SimulationRequest{
		Weights:  domain.DefaultWeights(),
		Scenario: domain.DefaultScenario(),
		Interventions: domain.Interventions{
			"A":       {NewCentre: 5},
			"D":       {AddTrees: 500},
			"missing": {AddTrees: 100, NewCentre: 1},
		},
	})

	require.Len(t, res.GeoJSON.Features, 4)
	a := res.GeoJSON.Features[0].Properties
	assert.Equal(t, 5, a.Assets.CoolingCentres)
	assert.Equal(t, 0.0, *a.HVI)
	assert.Equal(t, 0.63, a.Breakdown.EnvRisk)

	d := res.GeoJSON.Features[3].Properties
	assert.InDelta(t, 0.4, d.Environment.TreeCanopyPct, 1e-9)

	var total float64
	for _, f := range res.GeoJSON.Features {
		total += *f.Properties.HVI
	}
	assert.InDelta(t, total/4, res.AvgHVI, 1e-12)
}

func TestSimulate_NoInterventionsMatchesBaseline(t *testing.T) {
	svc, _ := newService(t, fourZones())
	ctx := context.Background()
	w, s := domain.DefaultWeights(), domain.DefaultScenario()

	res := svc.Simulate(ctx, planner.SimulationRequest{Weights: w, Scenario: s})

	assert.Equal(t, svc.GetScored(ctx, w, s), res.GeoJSON)
}

func TestSimulate_DoesNotLeakBetweenRequests(t *testing.T) {
	svc, _ := newService(t, fourZones())
	ctx := context.Background()
	w, s := domain.DefaultWeights(), domain.DefaultScenario()

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			svc.Simulate(ctx, planner.SimulationRequest{
				Weights:       w,
				Scenario:      s,
				Interventions: domain.Interventions{"A": {AddTrees: 1000, NewCentre: i + 1}},
			})
		}()
	}
	wg.Wait()

	baseline := svc.Simulate(ctx, planner.SimulationRequest{Weights: w, Scenario: s})
	a := baseline.GeoJSON.Features[0].Properties
	assert.Zero(t, a.Assets.CoolingCentres)
	assert.Equal(t, 0.1, a.Environment.TreeCanopyPct)
}

func TestSimulate_EmptyDataset(t *testing.T) {
	svc, _ := newService(t, domain.FeatureCollection{})

	res := svc.Simulate(context.Background(), planner.SimulationRequest{
		Weights:  domain.DefaultWeights(),
		Scenario: domain.DefaultScenario(),
	})

	assert.Empty(t, res.GeoJSON.Features)
	assert.Zero(t, res.AvgHVI)
}

func TestOptimize(t *testing.T) {
	pub := &mockPublisher{}
	clock := clockwork.NewFakeClockAt(time.Date(2026, 7, 1, 12, 0, 0, 0, time.UTC))
	svc, metrics := newService(t, fourZones(), planner.WithPublisher(pub), planner.WithClock(clock))

	req := planner.OptimizationRequest{
		Budget:   225000,
		Weights:  domain.DefaultWeights(),
		Scenario: domain.DefaultScenario(),
		Costs:    map[string]float64{"tree": 500, "centre": 50000},
	}
	plan := svc.Optimize(context.Background(), req)

	// Costs from the request are ignored.
	assert.Equal(t, domain.Optimize(fourZones().Zones(), req.Weights, req.Scenario, req.Budget), plan)
	require.NotEmpty(t, plan.Recommendations)
	assert.LessOrEqual(t, plan.TotalSpent, req.Budget)
	for _, c := range plan.Recommendations {
		assert.Contains(t, []float64{25000, 100000}, c.Cost)
	}

	require.Len(t, pub.events, 1)
	ev := pub.events[0]
	assert.Equal(t, plan, ev.Plan)
	assert.Equal(t, clock.Now(), ev.GeneratedAt)
	assert.Equal(t, 225000.0, ev.Budget)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PlanPublishes.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PlanPublisherIsOn))
}

func TestOptimize_PublishFailureKeepsPlan(t *testing.T) {
	pub := &mockPublisher{err: errors.New("broker unavailable")}
	svc, metrics := newService(t, fourZones(), planner.WithPublisher(pub))

	plan := svc.Optimize(context.Background(), planner.OptimizationRequest{
		Budget:   100000,
		Weights:  domain.DefaultWeights(),
		Scenario: domain.DefaultScenario(),
	})

	require.Len(t, plan.Recommendations, 1)
	assert.Equal(t, "A", plan.Recommendations[0].ZoneID)
	assert.Equal(t, domain.ActionBuildCentre, plan.Recommendations[0].Action)
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.PlanPublishes.WithLabelValues("error")))
}

func TestOptimize_WithoutPublisher(t *testing.T) {
	svc, metrics := newService(t, fourZones())

	plan := svc.Optimize(context.Background(), planner.OptimizationRequest{
		Budget:   0,
		Weights:  domain.DefaultWeights(),
		Scenario: domain.DefaultScenario(),
	})

	assert.Empty(t, plan.Recommendations)
	assert.Zero(t, plan.TotalSpent)
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.PlanPublisherIsOn))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.Requests.WithLabelValues("optimize", "ok")))
}

func TestCheckReadiness(t *testing.T) {
	ready, _ := newService(t, fourZones())
	assert.NoError(t, ready.CheckReadiness(context.Background()))

	empty, _ := newService(t, domain.FeatureCollection{})
	assert.Error(t, empty.CheckReadiness(context.Background()))
}

func ids(fc domain.FeatureCollection) []string {
	out := make([]string, len(fc.Features))
	for i, f := range fc.Features {
		out[i] = f.Properties.ID
	}
	return out
}
