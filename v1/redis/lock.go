package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Only the holder whose token is stored may release or extend the lock.
var (
	releaseScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("del", KEYS[1])
		else
			return 0
		end
	`)

	refreshScript = redis.NewScript(`
		if redis.call("get", KEYS[1]) == ARGV[1] then
			return redis.call("pexpire", KEYS[1], ARGV[2])
		else
			return 0
		end
	`)
)

// Lock is a held distributed lock.
type Lock struct {
	client *RedisClient
	key    string
	token  string
	ttl    time.Duration
}

// AcquireLock takes key for ttl. It fails with ErrLockNotAcquired when
// another holder has it.
func (r *RedisClient) AcquireLock(ctx context.Context, key string, ttl time.Duration) (*Lock, error) {
	start := time.Now()
	key = r.key(key)
	token := uuid.NewString()

	r.mu.RLock()
	acquired, err := r.client.SetNX(ctx, key, token, ttl).Result()
	r.mu.RUnlock()

	switch {
	case err != nil:
		err = fmt.Errorf("failed to acquire lock %s: %w", key, err)
	case !acquired:
		err = fmt.Errorf("%w: %s", ErrLockNotAcquired, key)
	}
	r.observeOperation("lock", key, time.Since(start), err, map[string]interface{}{"ttl": ttl.String()})
	if err != nil {
		return nil, err
	}

	r.logger.Info("lock acquired", nil, map[string]interface{}{"key": key, "ttl": ttl.String()})
	return &Lock{client: r, key: key, token: token, ttl: ttl}, nil
}

// Release frees the lock. A lock that expired or was taken over is
// ErrLockNotHeld.
func (l *Lock) Release(ctx context.Context) error {
	start := time.Now()
	l.client.mu.RLock()
	n, err := releaseScript.Run(ctx, l.client.client, []string{l.key}, l.token).Int64()
	l.client.mu.RUnlock()

	if err == nil && n == 0 {
		err = fmt.Errorf("%w: %s", ErrLockNotHeld, l.key)
	}
	l.client.observeOperation("unlock", l.key, time.Since(start), err, nil)
	return err
}

// Refresh extends the lock by its original ttl.
func (l *Lock) Refresh(ctx context.Context) error {
	l.client.mu.RLock()
	defer l.client.mu.RUnlock()

	n, err := refreshScript.Run(ctx, l.client.client, []string{l.key}, l.token, strconv.FormatInt(l.ttl.Milliseconds(), 10)).Int64()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrLockNotHeld, l.key)
	}
	return nil
}

// KeepAlive refreshes the lock every third of its ttl until stop is called,
// ctx is done, or a refresh finds the lock taken over. stop waits for the
// refresher to exit and may be called more than once.
func (l *Lock) KeepAlive(ctx context.Context) (stop func()) {
	interval := l.ttl / 3
	if interval <= 0 {
		interval = time.Second
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
			err := l.Refresh(ctx)
			if err == nil || ctx.Err() != nil {
				continue
			}
			l.client.logger.Warn("lock refresh failed", err, map[string]interface{}{"key": l.key})
			if errors.Is(err, ErrLockNotHeld) {
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
		})
	}
}

// Key returns the full key of the lock, including the configured prefix.
func (l *Lock) Key() string { return l.key }

// Locker adapts the client to lock consumers that only need a release
// function.
type Locker struct {
	Client *RedisClient
}

// Lock acquires key and keeps it alive until the returned release function
// is called, so a holder running longer than ttl keeps the lock. If the
// process dies the lock expires after ttl.
func (k Locker) Lock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	l, err := k.Client.AcquireLock(ctx, key, ttl)
	if err != nil {
		return nil, err
	}
	stop := l.KeepAlive(ctx)
	return func(ctx context.Context) error {
		stop()
		return l.Release(ctx)
	}, nil
}
