package qdrant

import (
	"context"
	"errors"
	"fmt"

	"github.com/chemsource/sourcing/v1/vectordb"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ErrConnection is returned when the client cannot be created or reached.
// It wraps vectordb.ErrUnavailable so callers need only check the latter.
var ErrConnection = fmt.Errorf("qdrant: connection failed: %w", vectordb.ErrUnavailable)

// IsConnectionError checks if the error is a connectivity failure.
func IsConnectionError(err error) bool {
	return errors.Is(err, ErrConnection) || errors.Is(err, vectordb.ErrUnavailable)
}

// TranslateError converts gRPC status errors from Qdrant into vectordb errors.
// The original error stays in the chain.
func TranslateError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) {
		return err
	}

	st, ok := status.FromError(err)
	if !ok {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %w", vectordb.ErrUnavailable, err)
		}
		return err
	}

	switch st.Code() {
	case codes.Unavailable, codes.DeadlineExceeded, codes.Unauthenticated, codes.PermissionDenied:
		return fmt.Errorf("%w: %w", vectordb.ErrUnavailable, err)
	case codes.NotFound:
		return fmt.Errorf("%w: %w", vectordb.ErrNamespaceNotFound, err)
	case codes.InvalidArgument:
		return fmt.Errorf("%w: %w", vectordb.ErrInvalidRecord, err)
	default:
		return err
	}
}
