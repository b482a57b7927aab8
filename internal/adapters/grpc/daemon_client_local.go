package grpc

import (
	"context"
	"fmt"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
)

// DaemonClientLocal implements PlannerClient by calling the mediator directly.
// The CLI uses it when no daemon is requested.
type DaemonClientLocal struct {
	mediator common.Mediator
}

// NewDaemonClientLocal creates a new local planner client
func NewDaemonClientLocal(mediator common.Mediator) *DaemonClientLocal {
	return &DaemonClientLocal{mediator: mediator}
}

// Solve runs the solve in-process
func (c *DaemonClientLocal) Solve(ctx context.Context, cmd *commands.SolvePlanCommand) (*commands.SolvePlanResponse, error) {
	return c.solve(ctx, cmd)
}

// SolveSavedPlan solves a stored plan in-process
func (c *DaemonClientLocal) SolveSavedPlan(ctx context.Context, cmd *commands.SolveSavedPlanCommand) (*commands.SolvePlanResponse, error) {
	return c.solve(ctx, cmd)
}

func (c *DaemonClientLocal) solve(ctx context.Context, cmd common.Request) (*commands.SolvePlanResponse, error) {
	resp, err := c.mediator.Send(ctx, cmd)
	if err != nil {
		return nil, err
	}
	solved, ok := resp.(*commands.SolvePlanResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", resp)
	}
	return solved, nil
}

// ListSubGraphs describes the in-process catalog decomposition
func (c *DaemonClientLocal) ListSubGraphs(ctx context.Context, query *queries.ListSubGraphsQuery) (*queries.ListSubGraphsResponse, error) {
	resp, err := c.mediator.Send(ctx, query)
	if err != nil {
		return nil, err
	}
	groups, ok := resp.(*queries.ListSubGraphsResponse)
	if !ok {
		return nil, fmt.Errorf("unexpected response type %T", resp)
	}
	return groups, nil
}

// Close is a no-op for the local client
func (c *DaemonClientLocal) Close() error {
	return nil
}
