package alarm

import (
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	domain "github.com/oshokin/alarm-clock/internal/domain/alarm"
)

// ErrorDomain is the ErrorInfo domain of alarm clock errors.
const ErrorDomain = "alarmclock"

// ToStatus converts a service error to a gRPC status error that carries the
// domain reason. Errors that already are statuses pass through.
func ToStatus(err error) error {
	if err == nil {
		return nil
	}

	if _, ok := status.FromError(err); ok {
		return err
	}

	st := status.New(codeOf(err), err.Error())

	detailed, detailErr := st.WithDetails(&errdetails.ErrorInfo{
		Reason: domain.Reason(err),
		Domain: ErrorDomain,
	})
	if detailErr != nil {
		return st.Err()
	}

	return detailed.Err()
}

// FromStatus restores the domain sentinel of a status error produced by
// ToStatus, so callers can match it with errors.Is. Other errors pass through.
func FromStatus(err error) error {
	st, ok := status.FromError(err)
	if !ok {
		return err
	}

	for _, detail := range st.Details() {
		info, ok := detail.(*errdetails.ErrorInfo)
		if !ok || info.GetDomain() != ErrorDomain {
			continue
		}

		if sentinel := domain.FromReason(info.GetReason()); sentinel != nil {
			return &remoteError{sentinel: sentinel, message: st.Message()}
		}
	}

	return err
}

func codeOf(err error) codes.Code {
	switch {
	case errors.Is(err, domain.ErrNoActiveAlarm):
		return codes.FailedPrecondition
	case errors.Is(err, errMalformed):
		return codes.InvalidArgument
	}

	switch domain.KindOf(err) {
	case domain.KindValidation:
		return codes.InvalidArgument
	case domain.KindLookup:
		return codes.NotFound
	case domain.KindPlayback, domain.KindInternal:
		return codes.Internal
	default:
		return codes.Unknown
	}
}

// remoteError is a domain error reported by the daemon. It reads like the
// daemon's message and unwraps to the sentinel.
type remoteError struct {
	sentinel error
	message  string
}

func (e *remoteError) Error() string { return e.message }

func (e *remoteError) Unwrap() error { return e.sentinel }
