// Package observability defines the hook through which store clients report
// the operations they perform. Metrics and tests implement Observer.
package observability

import "time"

// OperationContext describes one completed operation against an external system.
type OperationContext struct {
	// Component names the client that performed the operation, e.g. "vectordb".
	Component string

	// Operation is the verb: "upsert", "query", "delete", "lock", "put".
	Operation string

	// Resource is the namespace, key or bucket the operation targeted.
	Resource string

	// SubResource carries extra addressing such as an object key.
	SubResource string

	Duration time.Duration

	// Error is nil on success.
	Error error

	// Size is the number of records or bytes involved.
	Size int64

	Metadata map[string]interface{}
}

// Observer receives OperationContext values. Implementations must be safe for
// concurrent use and must not block.
type Observer interface {
	ObserveOperation(ctx OperationContext)
}

// Status returns "success" or "error" for an operation, for use as a metric label.
func (c OperationContext) Status() string {
	if c.Error != nil {
		return "error"
	}
	return "success"
}
