// Package errstatus maps filter errors to gRPC status codes for services
// that expose filters over gRPC.
package errstatus

import (
	"context"
	"errors"

	"google.golang.org/genproto/googleapis/rpc/errdetails"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/hugr-lab/sqlfilter"
	"github.com/hugr-lab/sqlfilter/field"
	"github.com/hugr-lab/sqlfilter/internal/recovery"
	"github.com/hugr-lab/sqlfilter/operator"
	"github.com/hugr-lab/sqlfilter/schema"
)

// Convert returns the status of err.
//
// Input errors map to InvalidArgument and carry a BadRequest detail with
// one violation per field. Definition and session errors map to
// FailedPrecondition, context errors to Canceled and DeadlineExceeded,
// and everything else to Internal. Errors that already carry a status are
// returned unchanged. Returns nil for a nil error.
func Convert(err error) *status.Status {
	if err == nil {
		return nil
	}
	if st, ok := status.FromError(err); ok {
		return st
	}

	var (
		verr   *sqlfilter.ValidationError
		serr   *schema.Error
		oerr   *sqlfilter.OrderByError
		perr   *operator.InvalidParamError
		mmerr  *field.MissingMethodError
		mnferr *field.MethodNotFoundError
		eeerr  *field.EmptyExpressionError
	)

	switch {
	case errors.As(err, &verr):
		violations := make([]*errdetails.BadRequest_FieldViolation, 0, len(verr.Errors))
		for _, fe := range verr.Errors {
			violations = append(violations, &errdetails.BadRequest_FieldViolation{
				Field:       fe.Field,
				Description: fe.Message,
			})
		}
		return withViolations(codes.InvalidArgument, err.Error(), violations)
	case errors.As(err, &serr):
		var violations []*errdetails.BadRequest_FieldViolation
		for _, name := range serr.Fields() {
			for _, msg := range serr.Messages[name] {
				violations = append(violations, &errdetails.BadRequest_FieldViolation{
					Field:       name,
					Description: msg,
				})
			}
		}
		return withViolations(codes.InvalidArgument, err.Error(), violations)
	case errors.As(err, &oerr):
		return withViolations(codes.InvalidArgument, err.Error(), []*errdetails.BadRequest_FieldViolation{
			{Field: "order_by", Description: err.Error()},
		})
	case errors.As(err, &perr):
		return status.New(codes.InvalidArgument, err.Error())
	case errors.Is(err, sqlfilter.ErrInvalidDefinition), errors.Is(err, sqlfilter.ErrNoSession):
		return status.New(codes.FailedPrecondition, err.Error())
	case errors.As(err, &mmerr), errors.As(err, &mnferr), errors.As(err, &eeerr),
		errors.Is(err, recovery.ErrPanic):
		return status.New(codes.Internal, err.Error())
	case errors.Is(err, context.Canceled):
		return status.New(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.New(codes.DeadlineExceeded, err.Error())
	}
	return status.New(codes.Internal, err.Error())
}

// Error is Convert returning an error value.
func Error(err error) error {
	if err == nil {
		return nil
	}
	return Convert(err).Err()
}

func withViolations(code codes.Code, msg string, violations []*errdetails.BadRequest_FieldViolation) *status.Status {
	st := status.New(code, msg)
	if len(violations) == 0 {
		return st
	}
	detailed, err := st.WithDetails(&errdetails.BadRequest{FieldViolations: violations})
	if err != nil {
		return st
	}
	return detailed
}

// UnaryServerInterceptor creates a gRPC unary interceptor converting
// handler errors with Convert.
func UnaryServerInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		resp, err := handler(ctx, req)
		if err != nil {
			return nil, Error(err)
		}
		return resp, nil
	}
}

// StreamServerInterceptor creates a gRPC stream interceptor converting
// handler errors with Convert.
func StreamServerInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		return Error(handler(srv, ss))
	}
}
