package setup_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	planningCommands "github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	planningQueries "github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/services"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/setup"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

func TestCreateConfiguredMediator_RoutesPlanningRequests(t *testing.T) {
	// Arrange
	catalog := helpers.NewCatalogBuilder().
		Recipe("gear", map[string]float64{"gear": 1}, map[string]float64{"iron": 2}).
		Build(t)
	repo := helpers.NewMockPlanRepository()
	registry := setup.NewHandlerRegistry(services.NewPlanningEngine(catalog), repo, nil, nil)
	ctx := context.Background()

	// Act
	m, err := registry.CreateConfiguredMediator()
	require.NoError(t, err)

	saved, err := m.Send(ctx, &planningCommands.SavePlanCommand{
		Name:          "gears",
		Inputs:        []string{"iron"},
		Outputs:       []string{"gear"},
		OutputAmounts: []float64{3},
	})
	require.NoError(t, err)
	planID := saved.(*planningCommands.SavePlanResponse).Plan.ID

	solved, err := m.Send(ctx, &planningCommands.SolveSavedPlanCommand{PlanID: planID})
	require.NoError(t, err)

	groups, err := m.Send(ctx, &planningQueries.ListSubGraphsQuery{})
	require.NoError(t, err)

	// Assert
	assert.InDelta(t, 3.0, solved.(*planningCommands.SolvePlanResponse).Result.RecipeRates["gear"], 1e-9)
	assert.Len(t, groups.(*planningQueries.ListSubGraphsResponse).SubGraphs, 1)
}

func TestCreateConfiguredMediator_WithoutRepositorySkipsPlanStorage(t *testing.T) {
	catalog := helpers.NewCatalogBuilder().
		Recipe("gear", map[string]float64{"gear": 1}, nil).
		Build(t)
	registry := setup.NewHandlerRegistry(services.NewPlanningEngine(catalog), nil, nil, nil)

	m, err := registry.CreateConfiguredMediator()
	require.NoError(t, err)

	_, err = m.Send(context.Background(), &planningQueries.ListPlansQuery{})
	assert.Error(t, err)
}
