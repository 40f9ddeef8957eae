package distlock

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrLockLost means the lock expired and may now belong to someone else.
var ErrLockLost = errors.New("lock no longer held")

// releaseScript deletes the key only when it still holds our token.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	end
	return 0
`)

var extendScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("pexpire", KEYS[1], ARGV[2])
	end
	return 0
`)

// RedisLock is a SET NX lock with a TTL. Every Acquire takes a fresh random
// token, so a holder whose lock expired cannot release or extend a
// successor's lock.
type RedisLock struct {
	client *redis.Client
	key    string
	ttl    time.Duration

	mu    sync.Mutex
	token string
}

// NewRedisLock creates a lock stored at "lock:<key>".
func NewRedisLock(client *redis.Client, key string, ttl time.Duration) *RedisLock {
	return &RedisLock{client: client, key: "lock:" + key, ttl: ttl}
}

func newToken() string {
	b := make([]byte, 16)
	rand.Read(b)
	return hex.EncodeToString(b)
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	token := newToken()
	ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", l.key, err)
	}
	if ok {
		l.mu.Lock()
		l.token = token
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	token := l.token
	l.token = ""
	l.mu.Unlock()
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("release lock %s: %w", l.key, err)
	}
	return nil
}

// Extend resets the TTL of a held lock. It returns ErrLockLost when the key
// expired or now carries another holder's token.
func (l *RedisLock) Extend(ctx context.Context) error {
	l.mu.Lock()
	token := l.token
	l.mu.Unlock()
	if token == "" {
		return ErrLockLost
	}
	n, err := extendScript.Run(ctx, l.client, []string{l.key}, token, l.ttl.Milliseconds()).Int64()
	if err != nil && err != redis.Nil {
		return fmt.Errorf("extend lock %s: %w", l.key, err)
	}
	if n == 0 {
		return ErrLockLost
	}
	return nil
}

// TTL is the expiry each Acquire and Extend sets.
func (l *RedisLock) TTL() time.Duration { return l.ttl }
