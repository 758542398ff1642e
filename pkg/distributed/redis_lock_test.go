package distributed

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedisClient(t *testing.T) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: "localhost:6379",
		DB:   15, // test DB
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skip("Redis not available:", err)
	}

	client.FlushDB(ctx)

	return client
}

func TestRedisLock_AcquireAndRelease(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client)
	ctx := context.Background()

	lock, err := manager.AcquireLock(ctx, "test:lock", "holder1", 5*time.Second)
	require.NoError(t, err)
	require.NotNil(t, lock)

	// A second holder must not get the same lock.
	lock2, err := manager.AcquireLock(ctx, "test:lock", "holder2", 5*time.Second)
	assert.Equal(t, ErrLockNotAcquired, err)
	assert.Nil(t, lock2)

	err = lock.Release(ctx)
	assert.NoError(t, err)

	// After release the lock is free again.
	lock3, err := manager.AcquireLock(ctx, "test:lock", "holder3", 5*time.Second)
	assert.NoError(t, err)
	require.NotNil(t, lock3)
	defer lock3.Release(ctx)
}

func TestRedisLock_ReleaseOnlyOwn(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client)
	ctx := context.Background()

	lock, err := manager.AcquireLock(ctx, "test:own", "holder1", 5*time.Second)
	require.NoError(t, err)

	// Simulate losing the lock to TTL expiry plus reacquisition elsewhere.
	client.Set(ctx, "test:own", "someone-else", 5*time.Second)

	err = lock.Release(ctx)
	assert.Equal(t, ErrLockNotHeld, err)

	held, err := lock.IsHeld(ctx)
	require.NoError(t, err)
	assert.False(t, held)
}

func TestRedisLock_TryLockWithRetry(t *testing.T) {
	client := setupRedisClient(t)
	defer client.Close()

	manager := NewRedisLockManager(client)
	ctx := context.Background()

	lock, err := manager.AcquireLock(ctx, "test:retry", "holder1", 200*time.Millisecond)
	require.NoError(t, err)
	_ = lock

	// The retrying caller should get the lock once the TTL expires.
	lock2, err := manager.TryLockWithRetry(ctx, "test:retry", "holder2", time.Second, 5, 100*time.Millisecond)
	require.NoError(t, err)
	require.NotNil(t, lock2)
	defer lock2.Release(ctx)
}
