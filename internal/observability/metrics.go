package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors for the planner service.
type Metrics struct {
	Requests        *prometheus.CounterVec   // labels: operation={data,simulate,optimize}, outcome={ok,invalid}
	RequestDuration *prometheus.HistogramVec // labels: operation
	ZonesLoaded     prometheus.Gauge

	// Scoring and planning metrics.
	AverageHVI        prometheus.Histogram
	PlanActions       *prometheus.CounterVec // labels: action={plant_trees,build_centre}
	PlanSpend         prometheus.Histogram
	ScoreCache        *prometheus.CounterVec // labels: result={hit,miss}
	PlanPublishes     *prometheus.CounterVec // labels: outcome={success,error}
	PlanPublisherIsOn prometheus.Gauge
}

// NewMetrics creates and registers all planner metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := NewMetricsForTesting()
	prometheus.MustRegister(
		m.Requests,
		m.RequestDuration,
		m.ZonesLoaded,
		m.AverageHVI,
		m.PlanActions,
		m.PlanSpend,
		m.ScoreCache,
		m.PlanPublishes,
		m.PlanPublisherIsOn,
	)
	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hvi",
			Name:      "requests_total",
			Help:      "Planner requests by operation and outcome.",
		}, []string{"operation", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "hvi",
			Name:      "request_duration_seconds",
			Help:      "Time spent computing a planner response.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}, []string{"operation"}),
		ZonesLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hvi",
			Name:      "zones_loaded",
			Help:      "Number of zones in the baseline dataset.",
		}),
		AverageHVI: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hvi",
			Name:      "simulated_average_index",
			Help:      "Average index across all zones returned by simulations.",
			Buckets:   prometheus.LinearBuckets(0, 0.1, 11),
		}),
		PlanActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hvi",
			Name:      "plan_actions_total",
			Help:      "Actions recommended by the optimizer.",
		}, []string{"action"}),
		PlanSpend: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "hvi",
			Name:      "plan_spend_dollars",
			Help:      "Total spend of each recommended plan.",
			Buckets:   []float64{0, 25000, 100000, 250000, 500000, 1000000, 2500000},
		}),
		ScoreCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hvi",
			Name:      "score_cache_total",
			Help:      "Baseline score cache lookups by result.",
		}, []string{"result"}),
		PlanPublishes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "hvi",
			Name:      "plan_publishes_total",
			Help:      "Plans published to Kafka by outcome.",
		}, []string{"outcome"}),
		PlanPublisherIsOn: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "hvi",
			Name:      "plan_publisher_enabled",
			Help:      "1 when plans are published to Kafka, 0 otherwise.",
		}),
	}
}
