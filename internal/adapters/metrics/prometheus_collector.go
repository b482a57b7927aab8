package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// Namespace for all metrics
	namespace = "planner"
	// Subsystem for planning engine metrics
	subsystem = "engine"
)

var (
	// Registry is the global Prometheus registry for all metrics
	Registry *prometheus.Registry

	// globalPlannerCollector is the singleton planner metrics collector
	// Set by SetGlobalPlannerCollector() when metrics are enabled
	globalPlannerCollector PlannerMetricsRecorder
)

// PlannerMetricsRecorder defines the interface for recording planning events
// This interface is used by application code to record metrics
type PlannerMetricsRecorder interface {
	RecordSolve(duration time.Duration, targets int, unresolved int, err error)
	RecordSimplex(subgraphID int, iterations int, capped bool)
	RecordDecomposition(subgraphs int, complexSubgraphs int, duration time.Duration)
}

// InitRegistry initializes the Prometheus registry
// Should be called once at application startup if metrics are enabled
func InitRegistry() {
	Registry = prometheus.NewRegistry()
}

// GetRegistry returns the global Prometheus registry
// Returns nil if metrics are not initialized
func GetRegistry() *prometheus.Registry {
	return Registry
}

// IsEnabled returns true if metrics collection is enabled
func IsEnabled() bool {
	return Registry != nil
}

// SetGlobalPlannerCollector sets the global planner metrics collector
func SetGlobalPlannerCollector(collector PlannerMetricsRecorder) {
	globalPlannerCollector = collector
}

// RecordSolve records a completed plan solve globally
func RecordSolve(duration time.Duration, targets int, unresolved int, err error) {
	if globalPlannerCollector != nil {
		globalPlannerCollector.RecordSolve(duration, targets, unresolved, err)
	}
}

// RecordSimplex records one linear solver run globally
func RecordSimplex(subgraphID int, iterations int, capped bool) {
	if globalPlannerCollector != nil {
		globalPlannerCollector.RecordSimplex(subgraphID, iterations, capped)
	}
}

// RecordDecomposition records a decomposition rebuild globally
func RecordDecomposition(subgraphs int, complexSubgraphs int, duration time.Duration) {
	if globalPlannerCollector != nil {
		globalPlannerCollector.RecordDecomposition(subgraphs, complexSubgraphs, duration)
	}
}
