package alarm

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "alarmclock.v1.AlarmClock"

// Method names of the control API.
const (
	MethodAddAlarm    = "AddAlarm"
	MethodDeleteAlarm = "DeleteAlarm"
	MethodListAlarms  = "ListAlarms"
	MethodListTones   = "ListTones"
	MethodSnooze      = "Snooze"
	MethodStopRinging = "StopRinging"
	MethodGetStatus   = "GetStatus"
	MethodShutdown    = "Shutdown"
	MethodWatch       = "Watch"
)

// FullMethod returns the wire name of method, e.g. "/alarmclock.v1.AlarmClock/Snooze".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// AlarmClockServer is the server side of the control API.
type AlarmClockServer interface {
	AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error)
	DeleteAlarm(ctx context.Context, id *wrapperspb.StringValue) (*emptypb.Empty, error)
	ListAlarms(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	ListTones(ctx context.Context, req *emptypb.Empty) (*structpb.ListValue, error)
	Snooze(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	StopRinging(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BoolValue, error)
	GetStatus(ctx context.Context, req *emptypb.Empty) (*structpb.Struct, error)
	Shutdown(ctx context.Context, req *emptypb.Empty) (*emptypb.Empty, error)
	Watch(req *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error
}

// ServiceDesc describes the control API for grpc.Server.RegisterService.
//
//nolint:gochecknoglobals // Registered once per server, like generated descriptors.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*AlarmClockServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(MethodAddAlarm, AlarmClockServer.AddAlarm),
		unary(MethodDeleteAlarm, AlarmClockServer.DeleteAlarm),
		unary(MethodListAlarms, AlarmClockServer.ListAlarms),
		unary(MethodListTones, AlarmClockServer.ListTones),
		unary(MethodSnooze, AlarmClockServer.Snooze),
		unary(MethodStopRinging, AlarmClockServer.StopRinging),
		unary(MethodGetStatus, AlarmClockServer.GetStatus),
		unary(MethodShutdown, AlarmClockServer.Shutdown),
	},
	Streams: []grpc.StreamDesc{
		{
			StreamName:    MethodWatch,
			Handler:       watchHandler,
			ServerStreams: true,
		},
	},
}

// RegisterAlarmClockServer registers srv on s.
func RegisterAlarmClockServer(s grpc.ServiceRegistrar, srv AlarmClockServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// unary builds the method descriptor of a unary call.
func unary[Req any, PReq interface {
	*Req
	proto.Message
}, Resp proto.Message](
	method string,
	call func(AlarmClockServer, context.Context, PReq) (Resp, error),
) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := PReq(new(Req))
			if err := dec(in); err != nil {
				return nil, err
			}

			server, _ := srv.(AlarmClockServer)
			if interceptor == nil {
				return call(server, ctx, in)
			}

			info := &grpc.UnaryServerInfo{
				Server:     srv,
				FullMethod: FullMethod(method),
			}

			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				typed, _ := req.(PReq)

				return call(server, ctx, typed)
			})
		},
	}
}

func watchHandler(srv any, stream grpc.ServerStream) error {
	in := new(emptypb.Empty)
	if err := stream.RecvMsg(in); err != nil {
		return err
	}

	server, _ := srv.(AlarmClockServer)

	return server.Watch(in, &grpc.GenericServerStream[emptypb.Empty, structpb.Struct]{ServerStream: stream})
}

// AlarmClockClient is the client side of the control API.
type AlarmClockClient interface {
	AddAlarm(ctx context.Context, req *structpb.Struct, opts ...grpc.CallOption) (*structpb.Struct, error)
	DeleteAlarm(ctx context.Context, id *wrapperspb.StringValue, opts ...grpc.CallOption) (*emptypb.Empty, error)
	ListAlarms(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	ListTones(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.ListValue, error)
	Snooze(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	StopRinging(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error)
	GetStatus(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*structpb.Struct, error)
	Shutdown(ctx context.Context, req *emptypb.Empty, opts ...grpc.CallOption) (*emptypb.Empty, error)
	Watch(
		ctx context.Context,
		req *emptypb.Empty,
		opts ...grpc.CallOption,
	) (grpc.ServerStreamingClient[structpb.Struct], error)
}

type alarmClockClient struct {
	cc grpc.ClientConnInterface
}

// NewAlarmClockClient creates a client of the control API on cc.
func NewAlarmClockClient(cc grpc.ClientConnInterface) AlarmClockClient {
	return &alarmClockClient{cc: cc}
}

func invoke[Resp any](
	ctx context.Context,
	cc grpc.ClientConnInterface,
	method string,
	req proto.Message,
	opts []grpc.CallOption,
) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, FullMethod(method), req, out, opts...); err != nil {
		return nil, err
	}

	return out, nil
}

func (c *alarmClockClient) AddAlarm(
	ctx context.Context,
	req *structpb.Struct,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodAddAlarm, req, opts)
}

func (c *alarmClockClient) DeleteAlarm(
	ctx context.Context,
	id *wrapperspb.StringValue,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodDeleteAlarm, id, opts)
}

func (c *alarmClockClient) ListAlarms(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, MethodListAlarms, req, opts)
}

func (c *alarmClockClient) ListTones(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.ListValue, error) {
	return invoke[structpb.ListValue](ctx, c.cc, MethodListTones, req, opts)
}

func (c *alarmClockClient) Snooze(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodSnooze, req, opts)
}

func (c *alarmClockClient) StopRinging(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*wrapperspb.BoolValue, error) {
	return invoke[wrapperspb.BoolValue](ctx, c.cc, MethodStopRinging, req, opts)
}

func (c *alarmClockClient) GetStatus(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*structpb.Struct, error) {
	return invoke[structpb.Struct](ctx, c.cc, MethodGetStatus, req, opts)
}

func (c *alarmClockClient) Shutdown(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (*emptypb.Empty, error) {
	return invoke[emptypb.Empty](ctx, c.cc, MethodShutdown, req, opts)
}

func (c *alarmClockClient) Watch(
	ctx context.Context,
	req *emptypb.Empty,
	opts ...grpc.CallOption,
) (grpc.ServerStreamingClient[structpb.Struct], error) {
	stream, err := c.cc.NewStream(ctx, &ServiceDesc.Streams[0], FullMethod(MethodWatch), opts...)
	if err != nil {
		return nil, err
	}

	x := &grpc.GenericClientStream[emptypb.Empty, structpb.Struct]{ClientStream: stream}
	if err := x.SendMsg(req); err != nil {
		return nil, err
	}

	if err := x.CloseSend(); err != nil {
		return nil, err
	}

	return x, nil
}
