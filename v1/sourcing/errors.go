package sourcing

import (
	"errors"
	"fmt"

	"github.com/chemsource/sourcing/v1/vectordb"
)

// Domain errors. Every error returned by this package wraps one of these.
var (
	// ErrZeroMatch is returned when a filter matched nothing and no record
	// differs from the request only by formatting.
	ErrZeroMatch = errors.New("sourcing: no record matched")

	// ErrFilterMismatch is returned when a filter matched nothing but a record
	// exists whose identity equals the request after normalization.
	ErrFilterMismatch = errors.New("sourcing: no exact match, a stored record differs only in formatting")

	// ErrMultiMatch is returned when a filter that must be unique matched
	// more than one record.
	ErrMultiMatch = errors.New("sourcing: more than one record matched")

	// ErrMalformedStoredData is returned when a stored payload cannot be decoded.
	ErrMalformedStoredData = errors.New("sourcing: malformed stored data")

	// ErrStoreUnavailable wraps every failure reported by the store.
	ErrStoreUnavailable = errors.New("sourcing: store unavailable")

	// ErrPostDeleteVerificationFailed is returned when a record is still
	// present after the store acknowledged its deletion.
	ErrPostDeleteVerificationFailed = errors.New("sourcing: record still present after delete")

	// ErrIncompleteIdentity is returned when a required identity field is empty.
	ErrIncompleteIdentity = errors.New("sourcing: incomplete identity")

	// ErrUnscopedDestructive is returned when an update or delete is not
	// scoped by the full triple plus productId.
	ErrUnscopedDestructive = errors.New("sourcing: destructive operation requires email, company name, contact number and product id")

	// ErrDuplicateProductID is returned when a productId is already in use by
	// the same company.
	ErrDuplicateProductID = errors.New("sourcing: product id already exists")
)

// MatchError reports a lookup whose match count was wrong. It carries the
// exact filter so that callers can see which strings were compared.
type MatchError struct {
	// Kind is ErrZeroMatch, ErrFilterMismatch, ErrMultiMatch or ErrDuplicateProductID.
	Kind      error
	Namespace string
	Filter    *vectordb.FilterSet
	Count     int

	// Stored is the identity found by the diagnostic probe for ErrFilterMismatch.
	Stored *Triple
}

func (e *MatchError) Error() string {
	msg := fmt.Sprintf("%v (namespace=%s filter=%s", e.Kind, e.Namespace, e.Filter)
	if e.Count > 1 {
		msg += fmt.Sprintf(" count=%d", e.Count)
	}
	if e.Stored != nil {
		msg += fmt.Sprintf(" stored=%q/%q/%q", e.Stored.Email, e.Stored.CompanyName, e.Stored.ContactNumber)
	}
	return msg + ")"
}

func (e *MatchError) Unwrap() error { return e.Kind }

// FieldError names the field behind a validation or decoding failure.
type FieldError struct {
	Err   error
	Field string
	Cause error
}

func (e *FieldError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%v: field %q: %v", e.Err, e.Field, e.Cause)
	}
	return fmt.Sprintf("%v: field %q", e.Err, e.Field)
}

func (e *FieldError) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Err, e.Cause}
	}
	return []error{e.Err}
}

// IsNotFound reports whether err means the addressed record does not exist
// as requested, either outright or because of a formatting difference.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrZeroMatch) || errors.Is(err, ErrFilterMismatch)
}

// IsMultiMatch reports whether err is a uniqueness violation.
func IsMultiMatch(err error) bool {
	return errors.Is(err, ErrMultiMatch)
}

// IsStoreUnavailable reports whether err came from the store.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable)
}

// StoreError wraps a store failure with ErrStoreUnavailable, keeping the
// original error in the chain.
func StoreError(op, namespace string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s %s: %w", ErrStoreUnavailable, op, namespace, err)
}
