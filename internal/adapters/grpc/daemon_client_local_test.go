package grpc_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	grpcAdapter "github.com/seertenedos/ErkleFoundryMods-sub000/internal/adapters/grpc"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
	"github.com/seertenedos/ErkleFoundryMods-sub000/test/helpers"
)

func TestDaemonClientLocal_RoutesRequestsThroughMediator(t *testing.T) {
	// Arrange
	mediator := helpers.NewMockMediator()
	mediator.SetSendFunc(func(ctx context.Context, request common.Request) (common.Response, error) {
		switch request.(type) {
		case *commands.SolvePlanCommand, *commands.SolveSavedPlanCommand:
			return &commands.SolvePlanResponse{}, nil
		case *queries.ListSubGraphsQuery:
			return &queries.ListSubGraphsResponse{CatalogVersion: 3}, nil
		}
		return nil, errors.New("unexpected request")
	})
	client := grpcAdapter.NewDaemonClientLocal(mediator)
	ctx := context.Background()

	// Act
	_, solveErr := client.Solve(ctx, &commands.SolvePlanCommand{Targets: map[string]float64{"gear": 1}})
	_, savedErr := client.SolveSavedPlan(ctx, &commands.SolveSavedPlanCommand{PlanID: "p"})
	groups, groupsErr := client.ListSubGraphs(ctx, &queries.ListSubGraphsQuery{})

	// Assert
	require.NoError(t, solveErr)
	require.NoError(t, savedErr)
	require.NoError(t, groupsErr)
	assert.Equal(t, uint64(3), groups.CatalogVersion)
	assert.Equal(t, []string{
		"*commands.SolvePlanCommand",
		"*commands.SolveSavedPlanCommand",
		"*queries.ListSubGraphsQuery",
	}, mediator.GetCallLog())
	assert.NoError(t, client.Close())
}

func TestDaemonClientLocal_RejectsUnexpectedResponse(t *testing.T) {
	mediator := helpers.NewMockMediator()
	mediator.SetSendFunc(func(ctx context.Context, request common.Request) (common.Response, error) {
		return &queries.ListPlansResponse{}, nil
	})
	client := grpcAdapter.NewDaemonClientLocal(mediator)

	_, err := client.Solve(context.Background(), &commands.SolvePlanCommand{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected response type")
}

func TestDaemonClientLocal_PropagatesMediatorErrors(t *testing.T) {
	mediator := helpers.NewMockMediator()
	client := grpcAdapter.NewDaemonClientLocal(mediator)

	_, err := client.ListSubGraphs(context.Background(), &queries.ListSubGraphsQuery{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported request type")
}
