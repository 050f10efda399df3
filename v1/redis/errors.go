package redis

import "errors"

var (
	// ErrLockNotAcquired is returned when another holder owns the lock.
	ErrLockNotAcquired = errors.New("redis: lock not acquired")

	// ErrLockNotHeld is returned when releasing or refreshing a lock that
	// expired or was taken over.
	ErrLockNotHeld = errors.New("redis: lock not held")
)

// IsLockNotAcquired reports whether err means the lock is held elsewhere.
func IsLockNotAcquired(err error) bool {
	return errors.Is(err, ErrLockNotAcquired)
}
