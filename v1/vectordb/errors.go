package vectordb

import "errors"

// Common store errors. Adapters translate their transport errors into these
// so that callers stay independent of the backing service.
var (
	// ErrUnavailable is returned when the store cannot be reached or rejects
	// the credentials.
	ErrUnavailable = errors.New("vectordb: store unavailable")

	// ErrNamespaceNotFound is returned when the namespace does not exist.
	ErrNamespaceNotFound = errors.New("vectordb: namespace not found")

	// ErrInvalidRecord is returned when a record cannot be encoded for the store.
	ErrInvalidRecord = errors.New("vectordb: invalid record")
)

// IsUnavailable checks if the error is a connectivity or authentication failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, ErrUnavailable)
}

// IsNamespaceNotFound checks if the error reports a missing namespace.
func IsNamespaceNotFound(err error) bool {
	return errors.Is(err, ErrNamespaceNotFound)
}
