package grpc

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
)

// PlannerClient is what the CLI needs from a planner, whether it runs
// in-process or behind the daemon
type PlannerClient interface {
	Solve(ctx context.Context, cmd *commands.SolvePlanCommand) (*commands.SolvePlanResponse, error)
	SolveSavedPlan(ctx context.Context, cmd *commands.SolveSavedPlanCommand) (*commands.SolvePlanResponse, error)
	ListSubGraphs(ctx context.Context, query *queries.ListSubGraphsQuery) (*queries.ListSubGraphsResponse, error)
	Close() error
}

// DaemonClientGRPC implements PlannerClient over gRPC
type DaemonClientGRPC struct {
	conn *grpc.ClientConn
}

// NewDaemonClientGRPC creates a new gRPC daemon client.
// target is "unix:/path/to/socket" or "host:port".
func NewDaemonClientGRPC(target string, opts ...grpc.DialOption) (*DaemonClientGRPC, error) {
	dialOpts := append([]grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}, opts...)

	conn, err := grpc.NewClient(target, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to daemon at %s: %w", target, err)
	}
	return &DaemonClientGRPC{conn: conn}, nil
}

// Close closes the gRPC connection
func (c *DaemonClientGRPC) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Solve asks the daemon for a plan
func (c *DaemonClientGRPC) Solve(ctx context.Context, cmd *commands.SolvePlanCommand) (*commands.SolvePlanResponse, error) {
	req, err := ToProtobufSolveRequest(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solve request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, Planner_Solve_FullMethodName, req, out); err != nil {
		return nil, fromStatus("solve", err)
	}
	return FromProtobufSolveResponse(out)
}

// SolveSavedPlan asks the daemon to solve a stored plan
func (c *DaemonClientGRPC) SolveSavedPlan(ctx context.Context, cmd *commands.SolveSavedPlanCommand) (*commands.SolvePlanResponse, error) {
	req, err := ToProtobufSolveSavedRequest(cmd)
	if err != nil {
		return nil, fmt.Errorf("failed to encode solve request: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, Planner_SolveSavedPlan_FullMethodName, req, out); err != nil {
		return nil, fromStatus("solve saved plan", err)
	}
	return FromProtobufSolveResponse(out)
}

// ListSubGraphs fetches the daemon's catalog decomposition
func (c *DaemonClientGRPC) ListSubGraphs(ctx context.Context, query *queries.ListSubGraphsQuery) (*queries.ListSubGraphsResponse, error) {
	req, err := ToProtobufListSubGraphsRequest(query)
	if err != nil {
		return nil, fmt.Errorf("failed to encode query: %w", err)
	}
	out := new(structpb.Struct)
	if err := c.conn.Invoke(ctx, Planner_ListSubGraphs_FullMethodName, req, out); err != nil {
		return nil, fromStatus("list subgraphs", err)
	}
	return FromProtobufListSubGraphsResponse(out)
}
