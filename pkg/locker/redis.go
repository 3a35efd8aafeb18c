package locker

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Lua script for safe lock release - only the owner's token may delete the key
const luaReleaseLock = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`

// lockTTL bounds how long a crashed holder can keep a table locked
const lockTTL = 30 * time.Second

// retryInterval is the poll spacing while waiting for a contended lock
const retryInterval = 50 * time.Millisecond

// RedisLocker is the distributed implementation for deployments where several
// terminals hit separate engine instances. Locks are SETNX keys with a TTL so
// a crashed instance cannot strand a table.
type RedisLocker struct {
	client  *redis.Client
	timeout time.Duration
}

// NewRedisLocker creates a Redis-backed locker with the given acquisition timeout
func NewRedisLocker(client *redis.Client, timeout time.Duration) *RedisLocker {
	return &RedisLocker{
		client:  client,
		timeout: timeout,
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, orgID uuid.UUID, ids ...uuid.UUID) (func(), error) {
	keys := lockKeys(orgID, ids)
	token := uuid.New().String()
	deadline := time.Now().Add(l.timeout)

	acquired := make([]string, 0, len(keys))
	releaseAcquired := func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			// Best effort: the TTL reclaims the key if this fails
			l.client.Eval(context.Background(), luaReleaseLock, []string{acquired[i]}, token)
		}
	}

	for _, key := range keys {
		ok, err := l.acquireOne(ctx, key, token, deadline)
		if err != nil {
			releaseAcquired()
			return nil, err
		}
		if !ok {
			releaseAcquired()
			return nil, ErrContended
		}
		acquired = append(acquired, key)
	}

	released := false
	return func() {
		if !released {
			released = true
			releaseAcquired()
		}
	}, nil
}

// acquireOne polls SETNX until it wins the key or the deadline passes
func (l *RedisLocker) acquireOne(ctx context.Context, key, token string, deadline time.Time) (bool, error) {
	for {
		ok, err := l.client.SetNX(ctx, key, token, lockTTL).Result()
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
		if time.Now().After(deadline) {
			return false, nil
		}

		select {
		case <-time.After(retryInterval):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
}
