package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/metrics"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
)

type pingCommand struct{}

type pingHandler struct{ err error }

func (h *pingHandler) Handle(ctx context.Context, request common.Request) (common.Response, error) {
	return "ok", h.err
}

func TestPlannerMetrics_ExposedOverHTTP(t *testing.T) {
	// Arrange
	metrics.InitRegistry()
	defer metrics.SetGlobalPlannerCollector(nil)
	collector := metrics.NewPlannerMetricsCollector()
	require.NoError(t, collector.Register())
	metrics.SetGlobalPlannerCollector(collector)

	// Act
	metrics.RecordSolve(10*time.Millisecond, 2, 1, nil)
	metrics.RecordSimplex(3, 7, true)
	metrics.RecordDecomposition(5, 2, time.Millisecond)

	rec := httptest.NewRecorder()
	metrics.NewServer("127.0.0.1", 9090, "/metrics").Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	// Assert
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "planner_engine_solves_total{status=\"success\"} 1")
	assert.Contains(t, body, "planner_engine_simplex_iteration_cap_total{subgraph=\"3\"} 1")
	assert.Contains(t, body, "planner_engine_complex_subgraphs 2")
	assert.Contains(t, body, "planner_engine_unresolved_resources 1")
}

func TestRecordFunctions_NoOpWithoutCollector(t *testing.T) {
	metrics.SetGlobalPlannerCollector(nil)

	assert.NotPanics(t, func() {
		metrics.RecordSolve(time.Second, 1, 0, errors.New("boom"))
		metrics.RecordSimplex(0, 1, false)
		metrics.RecordDecomposition(1, 0, time.Second)
	})
}

func TestPrometheusMiddleware_RecordsRequests(t *testing.T) {
	// Arrange
	metrics.InitRegistry()
	collector := metrics.NewRequestMetricsCollector()
	require.NoError(t, collector.Register())
	m := common.NewMediator()
	m.Use(metrics.PrometheusMiddleware(collector))
	require.NoError(t, common.RegisterHandler[*pingCommand](m, &pingHandler{}))

	// Act
	_, err := m.Send(context.Background(), &pingCommand{})
	require.NoError(t, err)

	// Assert
	families, err := metrics.GetRegistry().Gather()
	require.NoError(t, err)
	found := false
	for _, f := range families {
		if f.GetName() == "planner_mediator_requests_total" {
			found = true
			require.Len(t, f.GetMetric(), 1)
			assert.Equal(t, 1.0, f.GetMetric()[0].GetCounter().GetValue())
		}
	}
	assert.True(t, found)
}
