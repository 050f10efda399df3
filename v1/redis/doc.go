/*
Package redis provides the distributed lock that keeps maintenance jobs, such
as the buy-list migration, from running twice at the same time.

A lock is a key set with SET NX and a random token. Release and Refresh run a
Lua script that only touches the key while it still holds the caller's token,
so a holder whose lock expired cannot free someone else's.

	client, err := redis.NewClient(redis.Config{Host: "localhost", Port: 6379}, log)
	if err != nil {
		return err
	}
	lock, err := client.AcquireLock(ctx, "sourcing:migrate-buylists", 30*time.Minute)
	if redis.IsLockNotAcquired(err) {
		// another run is in progress
	}
	defer lock.Release(ctx)

Locker wraps a client for consumers that expect a Lock method returning a
release function.
*/
package redis
