package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// Locker 结算锁，保证同一周期内只有一个实例触发结算
type Locker interface {
	// Acquire 尝试获取锁，ttl 到期后自动释放
	Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	// Release 提前释放自己持有的锁
	Release(ctx context.Context, key string) error
}

// RedisClient 分布式锁用到的 Redis 命令
type RedisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

// 只删除值等于自己令牌的锁
const releaseScript = `if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`

// RedisLocker 基于 SETNX 的分布式锁
type RedisLocker struct {
	client RedisClient
	prefix string

	mu     sync.Mutex
	tokens map[string]string
}

// NewRedisLocker 创建分布式锁
func NewRedisLocker(client RedisClient) *RedisLocker {
	return &RedisLocker{
		client: client,
		prefix: "homedefense:lock:",
		tokens: make(map[string]string),
	}
}

func (l *RedisLocker) Acquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire lock %s: %w", key, err)
	}
	if ok {
		l.mu.Lock()
		l.tokens[key] = token
		l.mu.Unlock()
	}
	return ok, nil
}

func (l *RedisLocker) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}
	if err := l.client.Eval(ctx, releaseScript, []string{l.prefix + key}, token).Err(); err != nil {
		return fmt.Errorf("release lock %s: %w", key, err)
	}
	return nil
}

// LocalLocker 进程内的锁，未启用 Redis 时使用
type LocalLocker struct {
	mu      sync.Mutex
	expires map[string]time.Time
	clock   func() time.Time
}

// NewLocalLocker 创建进程内锁
func NewLocalLocker() *LocalLocker {
	return &LocalLocker{expires: make(map[string]time.Time), clock: time.Now}
}

func (l *LocalLocker) Acquire(_ context.Context, key string, ttl time.Duration) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.clock()
	if exp, held := l.expires[key]; held && now.Before(exp) {
		return false, nil
	}
	l.expires[key] = now.Add(ttl)
	return true, nil
}

func (l *LocalLocker) Release(_ context.Context, key string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.expires, key)
	return nil
}
