package handler

import (
	"errors"

	"github.com/ogurasousui/roster-grpc-clean-arch/internal/adapters/grpc/rosterv1"
	"github.com/ogurasousui/roster-grpc-clean-arch/internal/core/roster"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, roster.ErrInvalidInput), errors.Is(err, rosterv1.ErrInvalidMessage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, roster.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, roster.ErrAlreadyActive), errors.Is(err, roster.ErrAlreadyInactive):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, roster.ErrCannotDeleteBaseRecord):
		return status.Error(codes.PermissionDenied, err.Error())
	case errors.Is(err, roster.ErrStoreIO):
		return status.Error(codes.Unavailable, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
