package lock

import (
	"context"
	"sync"
)

// LocalLocker is an in-process Locker used in tests and single-process
// deployments. Leases have no TTL; a leaked lease blocks its name forever,
// so production multi-worker setups should use RedisLocker.
type LocalLocker struct {
	mu   sync.Mutex
	held map[string]chan struct{}
}

// NewLocal creates an in-process locker.
func NewLocal() *LocalLocker {
	return &LocalLocker{held: make(map[string]chan struct{})}
}

func (l *LocalLocker) Acquire(ctx context.Context, name string) (Lease, error) {
	for {
		l.mu.Lock()
		ch, taken := l.held[name]
		if !taken {
			done := make(chan struct{})
			l.held[name] = done
			l.mu.Unlock()

			return &localLease{locker: l, name: name, done: done}, nil
		}
		l.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (l *LocalLocker) TryAcquire(_ context.Context, name string) (Lease, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, taken := l.held[name]; taken {
		return nil, false, nil
	}

	done := make(chan struct{})
	l.held[name] = done

	return &localLease{locker: l, name: name, done: done}, true, nil
}

type localLease struct {
	locker *LocalLocker
	name   string
	done   chan struct{}
	once   sync.Once
}

func (l *localLease) Release(_ context.Context) error {
	l.once.Do(func() {
		l.locker.mu.Lock()
		delete(l.locker.held, l.name)
		l.locker.mu.Unlock()
		close(l.done)
	})

	return nil
}

func (l *localLease) Extend(_ context.Context) error { return nil }
