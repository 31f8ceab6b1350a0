package lock_test

import (
	"context"
	"testing"
	"time"

	"domaincheck/pkg/lock"

	"github.com/stretchr/testify/require"
)

func TestLocalLocker_TryAcquire(t *testing.T) {
	ctx := context.Background()
	l := lock.NewLocal()

	lease, ok, err := l.TryAcquire(ctx, "api")
	require.NoError(t, err)
	require.True(t, ok)

	// a held name cannot be taken again
	_, ok, err = l.TryAcquire(ctx, "api")
	require.NoError(t, err)
	require.False(t, ok)

	// independent names do not contend
	other, ok, err := l.TryAcquire(ctx, "other-api")
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, other.Release(ctx))

	require.NoError(t, lease.Release(ctx))
	_, ok, err = l.TryAcquire(ctx, "api")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLocalLocker_AcquireBlocksUntilRelease(t *testing.T) {
	ctx := context.Background()
	l := lock.NewLocal()

	lease, err := l.Acquire(ctx, "api")
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		second, err := l.Acquire(ctx, "api")
		if err == nil {
			_ = second.Release(ctx)
		}
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("second acquire must block while the lease is held")
	case <-time.After(50 * time.Millisecond):
	}

	require.NoError(t, lease.Release(ctx))

	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second acquire did not proceed after release")
	}
}

func TestLocalLocker_AcquireHonorsContext(t *testing.T) {
	l := lock.NewLocal()

	lease, err := l.Acquire(context.Background(), "api")
	require.NoError(t, err)
	defer func() { _ = lease.Release(context.Background()) }()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err = l.Acquire(ctx, "api")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLocalLease_ReleaseIsIdempotent(t *testing.T) {
	ctx := context.Background()
	l := lock.NewLocal()

	lease, err := l.Acquire(ctx, "api")
	require.NoError(t, err)
	require.NoError(t, lease.Release(ctx))
	require.NoError(t, lease.Release(ctx))
}
