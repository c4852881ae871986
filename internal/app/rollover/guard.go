package rollover

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Guard records which rollover periods have already been applied
type Guard interface {
	// Applied reports whether the period was already recorded
	Applied(ctx context.Context, year int) (bool, error)
	// MarkApplied records the period. It returns false if another
	// process recorded it first.
	MarkApplied(ctx context.Context, year int) (bool, error)
	// Release forgets the period so a later check claims it again
	Release(ctx context.Context, year int) error
}

// MemoryGuard keeps applied periods for the lifetime of the process
type MemoryGuard struct {
	mu      sync.Mutex
	applied map[int]struct{}
}

// NewMemoryGuard creates an empty MemoryGuard
func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{applied: make(map[int]struct{})}
}

func (g *MemoryGuard) Applied(_ context.Context, year int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, ok := g.applied[year]
	return ok, nil
}

func (g *MemoryGuard) MarkApplied(_ context.Context, year int) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, ok := g.applied[year]; ok {
		return false, nil
	}
	g.applied[year] = struct{}{}
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, year int) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.applied, year)
	return nil
}

const (
	redisGuardPrefix = "roster:rollover:"
	redisGuardTTL    = 400 * 24 * time.Hour
)

// RedisGuard shares applied periods between replicas through Redis
type RedisGuard struct {
	client redis.Cmdable
}

// NewRedisGuard creates a RedisGuard on top of client
func NewRedisGuard(client redis.Cmdable) *RedisGuard {
	return &RedisGuard{client: client}
}

func redisGuardKey(year int) string {
	return redisGuardPrefix + strconv.Itoa(year)
}

func (g *RedisGuard) Applied(ctx context.Context, year int) (bool, error) {
	n, err := g.client.Exists(ctx, redisGuardKey(year)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (g *RedisGuard) MarkApplied(ctx context.Context, year int) (bool, error) {
	stamp := time.Now().UTC().Format(time.RFC3339)
	return g.client.SetNX(ctx, redisGuardKey(year), stamp, redisGuardTTL).Result()
}

func (g *RedisGuard) Release(ctx context.Context, year int) error {
	return g.client.Del(ctx, redisGuardKey(year)).Err()
}
