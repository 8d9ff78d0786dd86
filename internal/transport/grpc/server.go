package grpc

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	derr "github.com/striker104/QRT-meeting-in-the-middle/internal/domain/errors"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/domain/models"
	"github.com/striker104/QRT-meeting-in-the-middle/internal/transport/dto"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	ServiceName           = "meetpoint.v1.MeetingPlannerService"
	FindBestMeetingMethod = "/" + ServiceName + "/FindBestMeeting"
)

type MeetingPlanner interface {
	FindBestMeeting(ctx context.Context, in models.ScenarioInput) ([]models.OptimizationResult, error)
}

// MeetingPlannerServer takes the HTTP request body as a Struct and answers
// with {"results": [...]} in the HTTP response shape.
type MeetingPlannerServer interface {
	FindBestMeeting(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
}

type serverAPI struct {
	log     *zap.Logger
	planner MeetingPlanner
	timeout time.Duration
}

func Register(gRPCServer *grpc.Server, log *zap.Logger, planner MeetingPlanner, timeout time.Duration) {
	if log == nil {
		log = zap.NewNop()
	}
	gRPCServer.RegisterService(&serviceDesc, &serverAPI{
		log:     log,
		planner: planner,
		timeout: timeout,
	})
}

func (s *serverAPI) FindBestMeeting(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	raw, err := protojson.Marshal(req)
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, "request is not valid JSON")
	}

	var body dto.OptimizeRequest
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid request: %v", err)
	}

	in, err := body.ToScenarioInput()
	if err != nil {
		return nil, status.Error(codes.InvalidArgument, err.Error())
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	results, err := s.planner.FindBestMeeting(ctx, in)
	if err != nil {
		mapped := mapFindBestMeetingError(err)
		if status.Code(mapped) == codes.Internal {
			s.log.Error("find best meeting failed", zap.Error(err))
		}
		return nil, mapped
	}

	resp, err := toResponse(dto.ToResults(results))
	if err != nil {
		s.log.Error("failed to encode response", zap.Error(err))
		return nil, status.Error(codes.Internal, "failed to encode response")
	}
	return resp, nil
}

func toResponse(results []dto.Result) (*structpb.Struct, error) {
	data, err := json.Marshal(map[string]interface{}{"results": results})
	if err != nil {
		return nil, err
	}

	out := &structpb.Struct{}
	if err := protojson.Unmarshal(data, out); err != nil {
		return nil, err
	}
	return out, nil
}

func mapFindBestMeetingError(err error) error {
	switch {
	case errors.Is(err, derr.ErrInvalidArgument), errors.Is(err, derr.ErrUnknownCity):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, derr.ErrDataUnavailable):
		return status.Error(codes.NotFound, derr.ErrDataUnavailable.Error())
	case errors.Is(err, derr.ErrNoFeasibleCity):
		return status.Error(codes.FailedPrecondition, derr.ErrNoFeasibleCity.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	default:
		return status.Error(codes.Internal, "internal error")
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MeetingPlannerServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "FindBestMeeting",
			Handler:    findBestMeetingHandler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "meetpoint/v1/planner.proto",
}

func findBestMeetingHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(structpb.Struct)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MeetingPlannerServer).FindBestMeeting(ctx, in)
	}

	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: FindBestMeetingMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(MeetingPlannerServer).FindBestMeeting(ctx, req.(*structpb.Struct))
	}
	return interceptor(ctx, in, info, handler)
}
