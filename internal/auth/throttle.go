package auth

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

const loginFailuresKeyPrefix = "helpdesk:login_failures:"

// LoginLimiter counts failed logins per key (the caller's address) inside a fixed window.
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	RecordFailure(ctx context.Context, key string) error
	Reset(ctx context.Context, key string) error
}

type redisLoginLimiter struct {
	client      *redis.Client
	maxAttempts int
	window      time.Duration
}

// NewRedisLoginLimiter counts failures with INCR on a key that expires after window.
func NewRedisLoginLimiter(client *redis.Client, maxAttempts int, window time.Duration) LoginLimiter {
	return &redisLoginLimiter{client: client, maxAttempts: maxAttempts, window: window}
}

func (l *redisLoginLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.maxAttempts <= 0 {
		return true, nil
	}
	val, err := l.client.Get(ctx, loginFailuresKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	count, err := strconv.Atoi(val)
	if err != nil {
		return false, err
	}
	return count < l.maxAttempts, nil
}

func (l *redisLoginLimiter) RecordFailure(ctx context.Context, key string) error {
	redisKey := loginFailuresKeyPrefix + key
	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return err
	}
	if count == 1 {
		return l.client.Expire(ctx, redisKey, l.window).Err()
	}
	return nil
}

func (l *redisLoginLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, loginFailuresKeyPrefix+key).Err()
}

type failureWindow struct {
	count   int
	expires time.Time
}

type memoryLoginLimiter struct {
	mu          sync.Mutex
	failures    map[string]failureWindow
	maxAttempts int
	window      time.Duration
	clock       func() time.Time
}

// NewMemoryLoginLimiter keeps failure counts in process.
func NewMemoryLoginLimiter(maxAttempts int, window time.Duration) LoginLimiter {
	return &memoryLoginLimiter{
		failures:    map[string]failureWindow{},
		maxAttempts: maxAttempts,
		window:      window,
		clock:       time.Now,
	}
}

func (l *memoryLoginLimiter) Allow(_ context.Context, key string) (bool, error) {
	if l.maxAttempts <= 0 {
		return true, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	w, ok := l.failures[key]
	if !ok || !w.expires.After(l.clock()) {
		return true, nil
	}
	return w.count < l.maxAttempts, nil
}

func (l *memoryLoginLimiter) RecordFailure(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	w, ok := l.failures[key]
	if !ok || !w.expires.After(now) {
		w = failureWindow{expires: now.Add(l.window)}
	}
	w.count++
	l.failures[key] = w
	return nil
}

func (l *memoryLoginLimiter) Reset(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.failures, key)
	return nil
}
