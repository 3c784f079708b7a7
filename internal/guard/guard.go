// Package guard decides whether an automation may fire in a given minute.
// The default admits everything, which keeps overlapping reports able to
// fire the same schedule twice.
package guard

import (
	"context"
	"fmt"
	"sync"
	"time"

	"roomhub/internal/logger"

	"github.com/go-redis/redis/v8"
)

// Modes accepted by New.
const (
	ModeNone   = "none"
	ModeMemory = "memory"
	ModeRedis  = "redis"
)

// keyTTL outlives the minute it guards with room for clock skew between instances.
const keyTTL = 2 * time.Minute

const minuteLayout = "200601021504"

// Guard admits the first firing of an automation per minute.
type Guard interface {
	Acquire(ctx context.Context, automationID string, minute time.Time) bool
}

// None admits every firing.
type None struct{}

func (None) Acquire(context.Context, string, time.Time) bool { return true }

// Memory guards within one process.
type Memory struct {
	mu   sync.Mutex
	seen map[string]time.Time // key -> expiry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{seen: make(map[string]time.Time), now: time.Now}
}

func (m *Memory) Acquire(_ context.Context, automationID string, minute time.Time) bool {
	key := automationID + ":" + minute.UTC().Format(minuteLayout)
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()
	for k, exp := range m.seen {
		if now.After(exp) {
			delete(m.seen, k)
		}
	}
	if _, taken := m.seen[key]; taken {
		return false
	}
	m.seen[key] = now.Add(keyTTL)
	return true
}

// Redis guards across instances with SETNX. Backend errors admit the firing:
// a duplicate dispatch is preferred over a lost one.
type Redis struct {
	client *redis.Client
	prefix string
	log    *logger.Logger
}

func NewRedis(client *redis.Client, prefix string, log *logger.Logger) *Redis {
	if log == nil {
		log = logger.Nop()
	}
	return &Redis{client: client, prefix: prefix, log: log}
}

func (r *Redis) Acquire(ctx context.Context, automationID string, minute time.Time) bool {
	key := r.prefix + automationID + ":" + minute.UTC().Format(minuteLayout)
	ok, err := r.client.SetNX(ctx, key, 1, keyTTL).Result()
	if err != nil {
		r.log.Warnw("guard_backend_failed", "automation_id", automationID, "error", err)
		return true
	}
	return ok
}

// RedisOptions configures the redis mode.
type RedisOptions struct {
	Addr      string
	Password  string
	DB        int
	KeyPrefix string
}

// New builds the guard for mode. The returned close func releases backend resources.
func New(ctx context.Context, mode string, opts RedisOptions, log *logger.Logger) (Guard, func() error, error) {
	noop := func() error { return nil }
	switch mode {
	case "", ModeNone:
		return None{}, noop, nil
	case ModeMemory:
		return NewMemory(), noop, nil
	case ModeRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     opts.Addr,
			Password: opts.Password,
			DB:       opts.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
		}
		return NewRedis(client, opts.KeyPrefix, log), client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown dedup mode %q", mode)
	}
}
