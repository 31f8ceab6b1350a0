// Package lock provides named, cross-process lease locks backed by Redis.
// Each external API the system talks to has one such lock, so that at most
// one request per provider is in flight system-wide regardless of how many
// worker processes are running. Leases carry a TTL so that a killed worker
// cannot hold a lock forever.
package lock

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"domaincheck/pkg/metrics"
	"domaincheck/pkg/serrors"
)

// Locker hands out named leases. Implementations must be safe for
// concurrent use.
//
//go:generate mockgen -package mocklock -source=lock.go -destination=mock/mocklock.go *
type Locker interface {
	// Acquire blocks until the named lease is obtained or ctx is done.
	Acquire(ctx context.Context, name string) (Lease, error)
	// TryAcquire attempts to obtain the named lease without blocking. The
	// second return value reports whether the lease was obtained.
	TryAcquire(ctx context.Context, name string) (Lease, bool, error)
}

// Lease is one held lock. Release is idempotent on the holder's side: once
// the lease expired or was released, further calls are no-ops.
type Lease interface {
	// Release gives the lock up. Releasing a lease that has already expired
	// (and may have been acquired by someone else) is not an error.
	Release(ctx context.Context) error
	// Extend renews the lease TTL. Returns ErrNotFound when the lease has
	// already expired.
	Extend(ctx context.Context) error
}

// Options configure the Redis locker.
type Options struct {
	// TTL bounds how long an abandoned lease can block other workers. It
	// must comfortably exceed one API call plus its mandatory post-call
	// delay; long-running loops should Extend between batches.
	TTL time.Duration
	// RetryInterval is how often a blocked Acquire re-attempts the lock.
	RetryInterval time.Duration
	// KeyPrefix namespaces the lock keys in Redis.
	KeyPrefix string
}

// RedisLocker implements Locker using single-key SET NX leases with a
// compare-and-delete release, so only the current holder can release.
type RedisLocker struct {
	client  redis.UniversalClient
	options Options
}

// releaseScript deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// extendScript refreshes the TTL only while the key still holds our token.
var extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)

// New creates a RedisLocker with the given client and options. Zero option
// values fall back to defaults suited for rate-limited API access.
func New(client redis.UniversalClient, options Options) *RedisLocker {
	if options.TTL <= 0 {
		options.TTL = 2 * time.Minute
	}
	if options.RetryInterval <= 0 {
		options.RetryInterval = 250 * time.Millisecond
	}
	if options.KeyPrefix == "" {
		options.KeyPrefix = "domaincheck:lock:"
	}

	return &RedisLocker{client: client, options: options}
}

type redisLease struct {
	locker *RedisLocker
	key    string
	token  string
}

func (l *redisLease) Release(ctx context.Context) error {
	if err := releaseScript.Run(ctx, l.locker.client, []string{l.key}, l.token).Err(); err != nil {
		return fmt.Errorf("could not release lock %q: %w", l.key, err)
	}

	return nil
}

func (l *redisLease) Extend(ctx context.Context) error {
	n, err := extendScript.Run(ctx, l.locker.client,
		[]string{l.key}, l.token, l.locker.options.TTL.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("could not extend lock %q: %w", l.key, err)
	}
	if n == 0 {
		return serrors.With(serrors.ErrNotFound, "lease %q expired", l.key)
	}

	return nil
}

func (r *RedisLocker) key(name string) string {
	return r.options.KeyPrefix + name
}

// TryAcquire attempts a single SET NX and reports whether the lease was won.
func (r *RedisLocker) TryAcquire(ctx context.Context, name string) (Lease, bool, error) {
	token := uuid.NewString()
	ok, err := r.client.SetNX(ctx, r.key(name), token, r.options.TTL).Result()
	if err != nil {
		return nil, false, fmt.Errorf("could not acquire lock %q: %w", name, err)
	}
	if !ok {
		return nil, false, nil
	}

	return &redisLease{locker: r, key: r.key(name), token: token}, true, nil
}

// Acquire polls TryAcquire until the lease is won or ctx is done.
func (r *RedisLocker) Acquire(ctx context.Context, name string) (Lease, error) {
	start := time.Now()
	defer func() {
		metrics.LockWaitDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())
	}()

	ticker := time.NewTicker(r.options.RetryInterval)
	defer ticker.Stop()

	for {
		lease, ok, err := r.TryAcquire(ctx, name)
		if err != nil {
			return nil, err
		}
		if ok {
			return lease, nil
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("gave up waiting for lock %q: %w", name, ctx.Err())
		case <-ticker.C:
		}
	}
}

var _ Locker = (*RedisLocker)(nil)
