package handler

import (
	"errors"

	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func toStatusError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, agenda.ErrValidation),
		errors.Is(err, agenda.ErrDuplicateID),
		errors.Is(err, errMalformedMessage):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, agenda.ErrAlreadyExists):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, agenda.ErrConsistency):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, agenda.ErrNotFound):
		return status.Error(codes.NotFound, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}
