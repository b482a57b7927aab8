package grpc

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/common"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/commands"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/application/planning/queries"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/planning"
	"github.com/seertenedos/ErkleFoundryMods-sub000/internal/domain/production"
)

// Full method names of the planner service
const (
	PlannerServiceName                    = "planner.v1.Planner"
	Planner_Solve_FullMethodName          = "/planner.v1.Planner/Solve"
	Planner_ListSubGraphs_FullMethodName  = "/planner.v1.Planner/ListSubGraphs"
	Planner_SolveSavedPlan_FullMethodName = "/planner.v1.Planner/SolveSavedPlan"
)

// PlannerServer is the server API for the planner service.
// Requests and responses are carried as google.protobuf.Struct.
type PlannerServer interface {
	Solve(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListSubGraphs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SolveSavedPlan(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterPlannerServer registers the planner service on a gRPC server
func RegisterPlannerServer(s grpc.ServiceRegistrar, srv PlannerServer) {
	s.RegisterService(&Planner_ServiceDesc, srv)
}

func unaryHandler(
	fullMethod string,
	call func(PlannerServer, context.Context, *structpb.Struct) (*structpb.Struct, error),
) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PlannerServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(PlannerServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// Planner_ServiceDesc is the grpc.ServiceDesc for the planner service
var Planner_ServiceDesc = grpc.ServiceDesc{
	ServiceName: PlannerServiceName,
	HandlerType: (*PlannerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Solve",
			Handler:    unaryHandler(Planner_Solve_FullMethodName, PlannerServer.Solve),
		},
		{
			MethodName: "ListSubGraphs",
			Handler:    unaryHandler(Planner_ListSubGraphs_FullMethodName, PlannerServer.ListSubGraphs),
		},
		{
			MethodName: "SolveSavedPlan",
			Handler:    unaryHandler(Planner_SolveSavedPlan_FullMethodName, PlannerServer.SolveSavedPlan),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "planner/v1/planner.proto",
}

// plannerServiceImpl dispatches planner RPCs through the mediator
type plannerServiceImpl struct {
	mediator common.Mediator
}

func newPlannerServiceImpl(mediator common.Mediator) *plannerServiceImpl {
	return &plannerServiceImpl{mediator: mediator}
}

func (s *plannerServiceImpl) Solve(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cmd, err := FromProtobufSolveRequest(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid solve request: %v", err)
	}
	if len(cmd.Targets) == 0 {
		return nil, status.Error(codes.InvalidArgument, "at least one target is required")
	}
	return s.solve(ctx, cmd)
}

func (s *plannerServiceImpl) SolveSavedPlan(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	cmd, err := FromProtobufSolveSavedRequest(req)
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid solve request: %v", err)
	}
	return s.solve(ctx, cmd)
}

func (s *plannerServiceImpl) solve(ctx context.Context, cmd common.Request) (*structpb.Struct, error) {
	resp, err := s.mediator.Send(ctx, cmd)
	if err != nil {
		return nil, toStatus(err)
	}
	solved, ok := resp.(*commands.SolvePlanResponse)
	if !ok {
		return nil, status.Errorf(codes.Internal, "unexpected response type %T", resp)
	}
	out, err := ToProtobufSolveResponse(solved)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode plan: %v", err)
	}
	return out, nil
}

func (s *plannerServiceImpl) ListSubGraphs(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	resp, err := s.mediator.Send(ctx, FromProtobufListSubGraphsRequest(req))
	if err != nil {
		return nil, toStatus(err)
	}
	groups, ok := resp.(*queries.ListSubGraphsResponse)
	if !ok {
		return nil, status.Errorf(codes.Internal, "unexpected response type %T", resp)
	}
	out, err := ToProtobufListSubGraphsResponse(groups)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "failed to encode subgraphs: %v", err)
	}
	return out, nil
}

// toStatus maps domain errors onto gRPC status codes
func toStatus(err error) error {
	var (
		notFound   *planning.ErrPlanNotFound
		mismatch   *planning.ErrPlanShapeMismatch
		badAmount  *production.ErrInvalidAmount
		badCatalog *production.ErrInvalidCatalog
		zeroOutput *production.ErrZeroOutput
	)

	switch {
	case errors.As(err, &notFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.As(err, &mismatch):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.As(err, &badAmount), errors.As(err, &badCatalog):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.As(err, &zeroOutput):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Error(codes.Unknown, err.Error())
	}
}

// fromStatus turns an RPC error into a readable client error
func fromStatus(op string, err error) error {
	if st, ok := status.FromError(err); ok {
		return fmt.Errorf("%s failed (%s): %s", op, st.Code(), st.Message())
	}
	return fmt.Errorf("%s failed: %w", op, err)
}
