package alarm

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
	"github.com/oshokin/alarm-clock/internal/events"
)

// Service abstracts the alarm clock operations the transport layer depends on.
type Service interface {
	Add(ctx context.Context, at, tone string) (domain.Alarm, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.Alarm, error)
	Snooze(ctx context.Context) (domain.Alarm, error)
	Stop(ctx context.Context) bool
	Alarms() []domain.Alarm
	Tones() []string
	Status() domain.Status
	Shutdown(ctx context.Context)
}

// Subscriber hands out event subscriptions for Watch.
type Subscriber interface {
	Subscribe() *events.Subscription
}

// Server implements AlarmClockServer.
type Server struct {
	// service provides the alarm clock operations.
	service Service
	// events feeds Watch streams.
	events Subscriber
	// quit ends every Watch stream once closed.
	quit      chan struct{}
	closeOnce sync.Once
}

var _ AlarmClockServer = (*Server)(nil)

// NewServer wires the provided service implementation into a gRPC handler.
func NewServer(service Service, subscriber Subscriber) *Server {
	return &Server{
		service: service,
		events:  subscriber,
		quit:    make(chan struct{}),
	}
}

// Close ends open Watch streams so a graceful stop of the gRPC server does
// not wait for watchers to hang up.
func (s *Server) Close() {
	s.closeOnce.Do(func() {
		close(s.quit)
	})
}

// AddAlarm schedules an alarm.
func (s *Server) AddAlarm(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}

	at, tone := parseAddRequest(req)

	a, err := s.service.Add(ctx, at, tone)
	if err != nil {
		return nil, ToStatus(err)
	}

	return AlarmToProto(a), nil
}

// DeleteAlarm removes the alarm with the given id.
func (s *Server) DeleteAlarm(ctx context.Context, req *wrapperspb.StringValue) (*emptypb.Empty, error) {
	id, err := uuid.Parse(req.GetValue())
	if err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "invalid alarm id %q", req.GetValue())
	}

	if _, err := s.service.Delete(ctx, id); err != nil {
		return nil, ToStatus(err)
	}

	return new(emptypb.Empty), nil
}

// ListAlarms returns the scheduled alarms in insertion order.
func (s *Server) ListAlarms(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return AlarmsToProto(s.service.Alarms()), nil
}

// ListTones returns the tone vocabulary.
func (s *Server) ListTones(context.Context, *emptypb.Empty) (*structpb.ListValue, error) {
	return StringsToProto(s.service.Tones()), nil
}

// Snooze reschedules the ringing tone.
func (s *Server) Snooze(ctx context.Context, _ *emptypb.Empty) (*structpb.Struct, error) {
	a, err := s.service.Snooze(ctx)
	if err != nil {
		return nil, ToStatus(err)
	}

	return AlarmToProto(a), nil
}

// StopRinging silences the ringing tone and reports whether one rang.
func (s *Server) StopRinging(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BoolValue, error) {
	return wrapperspb.Bool(s.service.Stop(ctx)), nil
}

// GetStatus reports what rings right now.
func (s *Server) GetStatus(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	return StatusToProto(s.service.Status()), nil
}

// Shutdown asks the daemon to exit.
func (s *Server) Shutdown(ctx context.Context, _ *emptypb.Empty) (*emptypb.Empty, error) {
	s.service.Shutdown(ctx)

	return new(emptypb.Empty), nil
}

// Watch streams hub events until the client leaves or falls behind.
func (s *Server) Watch(_ *emptypb.Empty, stream grpc.ServerStreamingServer[structpb.Struct]) error {
	sub := s.events.Subscribe()
	defer sub.Close()

	ctx := stream.Context()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-s.quit:
			return nil
		case ev, ok := <-sub.C():
			if !ok {
				return status.Error(codes.ResourceExhausted, "watcher fell behind, subscribe again")
			}

			if err := stream.Send(EventToProto(ev)); err != nil {
				return err
			}
		}
	}
}
