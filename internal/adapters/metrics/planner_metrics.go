package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PlannerMetricsCollector handles all planning engine metrics
type PlannerMetricsCollector struct {
	// Solve metrics
	solveDuration   *prometheus.HistogramVec
	solvesTotal     *prometheus.CounterVec
	unresolvedGauge prometheus.Gauge
	targetsTotal    prometheus.Counter

	// Simplex metrics
	simplexIterations *prometheus.HistogramVec
	simplexCapped     *prometheus.CounterVec

	// Decomposition metrics
	rebuildsTotal     prometheus.Counter
	rebuildDuration   prometheus.Histogram
	subgraphsGauge    prometheus.Gauge
	complexGroupGauge prometheus.Gauge
}

// NewPlannerMetricsCollector creates a new planner metrics collector
func NewPlannerMetricsCollector() *PlannerMetricsCollector {
	return &PlannerMetricsCollector{
		solveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_duration_seconds",
				Help:      "Plan solve duration distribution",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 5.0},
			},
			[]string{"status"},
		),

		solvesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solves_total",
				Help:      "Total number of plan solves by status",
			},
			[]string{"status"},
		),

		unresolvedGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "unresolved_resources",
				Help:      "Number of resources left unresolved by the last solve",
			},
		),

		targetsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "solve_targets_total",
				Help:      "Total number of target resources planned",
			},
		),

		simplexIterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "simplex_iterations",
				Help:      "Simplex pivots per linear solve",
				Buckets:   []float64{1, 2, 5, 10, 25, 50, 100, 250, 500},
			},
			[]string{"subgraph"},
		),

		simplexCapped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "simplex_iteration_cap_total",
				Help:      "Linear solves that stopped at the iteration cap",
			},
			[]string{"subgraph"},
		),

		rebuildsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "decomposition_rebuilds_total",
				Help:      "Number of times the recipe graph was decomposed",
			},
		),

		rebuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "decomposition_duration_seconds",
				Help:      "Recipe graph decomposition duration distribution",
				Buckets:   []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1.0, 5.0},
			},
		),

		subgraphsGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "subgraphs",
				Help:      "Number of SubGraphs in the current decomposition",
			},
		),

		complexGroupGauge: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: subsystem,
				Name:      "complex_subgraphs",
				Help:      "Number of SubGraphs solved by the linear solver",
			},
		),
	}
}

// Register registers all planner metrics with the Prometheus registry
func (c *PlannerMetricsCollector) Register() error {
	if Registry == nil {
		return nil // Metrics not enabled
	}

	metrics := []prometheus.Collector{
		// Solve
		c.solveDuration,
		c.solvesTotal,
		c.unresolvedGauge,
		c.targetsTotal,
		// Simplex
		c.simplexIterations,
		c.simplexCapped,
		// Decomposition
		c.rebuildsTotal,
		c.rebuildDuration,
		c.subgraphsGauge,
		c.complexGroupGauge,
	}

	for _, metric := range metrics {
		if err := Registry.Register(metric); err != nil {
			return err
		}
	}

	return nil
}

// RecordSolve records a plan solve
func (c *PlannerMetricsCollector) RecordSolve(duration time.Duration, targets int, unresolved int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	c.solveDuration.WithLabelValues(status).Observe(duration.Seconds())
	c.solvesTotal.WithLabelValues(status).Inc()
	c.targetsTotal.Add(float64(targets))
	if err == nil {
		c.unresolvedGauge.Set(float64(unresolved))
	}
}

// RecordSimplex records a linear solver run
func (c *PlannerMetricsCollector) RecordSimplex(subgraphID int, iterations int, capped bool) {
	label := strconv.Itoa(subgraphID)
	c.simplexIterations.WithLabelValues(label).Observe(float64(iterations))
	if capped {
		c.simplexCapped.WithLabelValues(label).Inc()
	}
}

// RecordDecomposition records a decomposition rebuild
func (c *PlannerMetricsCollector) RecordDecomposition(subgraphs int, complexSubgraphs int, duration time.Duration) {
	c.rebuildsTotal.Inc()
	c.rebuildDuration.Observe(duration.Seconds())
	c.subgraphsGauge.Set(float64(subgraphs))
	c.complexGroupGauge.Set(float64(complexSubgraphs))
}
