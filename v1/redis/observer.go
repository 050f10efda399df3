package redis

import (
	"time"

	"github.com/chemsource/sourcing/v1/observability"
)

// observeOperation notifies the observer about an operation if one is configured.
func (r *RedisClient) observeOperation(operation, key string, duration time.Duration, err error, metadata map[string]interface{}) {
	if r == nil || r.observer == nil {
		return
	}

	r.observer.ObserveOperation(observability.OperationContext{
		Component: "redis",
		Operation: operation,
		Resource:  key,
		Duration:  duration,
		Error:     err,
		Metadata:  metadata,
	})
}
