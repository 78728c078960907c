package alarm

import (
	"context"
	"path"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"github.com/oshokin/alarm-clock/internal/logger"
)

// ActorMetadataKey carries "user@host" of the calling process.
const ActorMetadataKey = "x-alarm-actor"

// unknownActor is logged for callers that did not identify themselves.
const unknownActor = "<unknown>"

// RequestCounter counts handled requests.
type RequestCounter interface {
	IncRequest(method, code string)
}

// UnaryServerInterceptor logs every call with its actor and counts it.
func UnaryServerInterceptor(counter RequestCounter) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		started := time.Now()
		method := path.Base(info.FullMethod)
		ctx = logger.WithKV(ctx, "actor", actorOf(ctx), "method", method)

		resp, err := handler(ctx, req)

		observe(ctx, counter, method, started, err)

		return resp, err
	}
}

// StreamServerInterceptor does for streams what UnaryServerInterceptor does for calls.
func StreamServerInterceptor(counter RequestCounter) grpc.StreamServerInterceptor {
	return func(srv any, ss grpc.ServerStream, info *grpc.StreamServerInfo, handler grpc.StreamHandler) error {
		started := time.Now()
		method := path.Base(info.FullMethod)
		ctx := logger.WithKV(ss.Context(), "actor", actorOf(ss.Context()), "method", method)

		logger.Debug(ctx, "Stream opened")

		err := handler(srv, ss)

		observe(ctx, counter, method, started, err)

		return err
	}
}

// WithActor returns a context that sends actor on outgoing calls.
func WithActor(ctx context.Context, actor string) context.Context {
	if actor == "" {
		return ctx
	}

	return metadata.AppendToOutgoingContext(ctx, ActorMetadataKey, actor)
}

func observe(ctx context.Context, counter RequestCounter, method string, started time.Time, err error) {
	code := status.Code(err)

	if counter != nil {
		counter.IncRequest(method, code.String())
	}

	if err != nil {
		logger.WarnKV(ctx, "Request failed", "code", code.String(), "error", err, "latency", time.Since(started))

		return
	}

	logger.DebugKV(ctx, "Request handled", "latency", time.Since(started))
}

func actorOf(ctx context.Context) string {
	md, ok := metadata.FromIncomingContext(ctx)
	if !ok {
		return unknownActor
	}

	values := md.Get(ActorMetadataKey)
	if len(values) == 0 || strings.TrimSpace(values[0]) == "" {
		return unknownActor
	}

	return values[0]
}
