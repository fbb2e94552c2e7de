// Package redislock implements the executor's AgentRunLock, AgentStateCache
// and AgentCancellationCache collaborators on top of redis/go-redis/v9.
//
// Grounded on virtual_key_middleware.RedisRateLimiterStorage: a struct
// wrapping a *redis.Client, atomic operations via Lua scripts run through
// client.Eval, and key namespacing via a configurable prefix.
package redislock

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/curaious/uno/pkg/agent-framework/executor"
)

// unlockScript deletes a lock key only if its value still matches the
// token the holder set at Acquire time, so a holder can never release a
// lock it no longer owns (e.g. after its TTL expired and someone else
// acquired it in the meantime).
const unlockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`

// RunLock implements executor.AgentRunLock as a Redis SETNX-with-TTL named
// lock.
type RunLock struct {
	Client    *redis.Client
	KeyPrefix string
	TTL       time.Duration
}

// NewRunLock builds a RunLock with a 5 minute default TTL, long enough to
// outlive a single step's LLM round trip while still recovering quickly if
// a holder crashes mid-run.
func NewRunLock(client *redis.Client, keyPrefix string) *RunLock {
	if keyPrefix == "" {
		keyPrefix = "agent_run_lock:"
	}
	return &RunLock{Client: client, KeyPrefix: keyPrefix, TTL: 5 * time.Minute}
}

func (l *RunLock) key(id string) string {
	return fmt.Sprintf("%s%s", l.KeyPrefix, id)
}

// Acquire returns a nil handle, not an error, when the lock is already held.
func (l *RunLock) Acquire(ctx context.Context, id string) (executor.LockHandle, error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, l.key(id), token, l.TTL).Result()
	if err != nil {
		return nil, fmt.Errorf("redislock: acquire %q: %w", id, err)
	}
	if !ok {
		return nil, nil
	}
	return &handle{client: l.Client, key: l.key(id), token: token}, nil
}

type handle struct {
	client *redis.Client
	key    string
	token  string
}

func (h *handle) Release(ctx context.Context) error {
	if err := h.client.Eval(ctx, unlockScript, []string{h.key}, h.token).Err(); err != nil {
		return fmt.Errorf("redislock: release %q: %w", h.key, err)
	}
	return nil
}

// StateCache implements executor.AgentStateCache over Redis GET/SET/DEL,
// serializing AgentRunState as JSON.
type StateCache struct {
	Client    *redis.Client
	KeyPrefix string
}

// NewStateCache builds a StateCache with the "agent_run_state:" default
// prefix.
func NewStateCache(client *redis.Client, keyPrefix string) *StateCache {
	if keyPrefix == "" {
		keyPrefix = "agent_run_state:"
	}
	return &StateCache{Client: client, KeyPrefix: keyPrefix}
}

func (c *StateCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.KeyPrefix, id)
}

func (c *StateCache) Get(ctx context.Context, id string) (*executor.AgentRunState, bool, error) {
	raw, err := c.Client.Get(ctx, c.key(id)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redislock: get state %q: %w", id, err)
	}
	var state executor.AgentRunState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, false, fmt.Errorf("redislock: decode state %q: %w", id, err)
	}
	return &state, true, nil
}

func (c *StateCache) Set(ctx context.Context, id string, state *executor.AgentRunState, ttl time.Duration) error {
	raw, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("redislock: encode state %q: %w", id, err)
	}
	if err := c.Client.Set(ctx, c.key(id), raw, ttl).Err(); err != nil {
		return fmt.Errorf("redislock: set state %q: %w", id, err)
	}
	return nil
}

func (c *StateCache) Del(ctx context.Context, id string) error {
	if err := c.Client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("redislock: del state %q: %w", id, err)
	}
	return nil
}

// CancellationCache implements executor.AgentCancellationCache as a
// presence-only Redis key: Set writes a short-lived sentinel value, Get
// reports whether it still exists.
type CancellationCache struct {
	Client    *redis.Client
	KeyPrefix string
	TTL       time.Duration
}

// NewCancellationCache builds a CancellationCache with the
// "agent_run_cancel:" default prefix and a 24 hour TTL, generous enough to
// cover a cancellation request arriving while the run is suspended.
func NewCancellationCache(client *redis.Client, keyPrefix string) *CancellationCache {
	if keyPrefix == "" {
		keyPrefix = "agent_run_cancel:"
	}
	return &CancellationCache{Client: client, KeyPrefix: keyPrefix, TTL: 24 * time.Hour}
}

func (c *CancellationCache) key(id string) string {
	return fmt.Sprintf("%s%s", c.KeyPrefix, id)
}

func (c *CancellationCache) Get(ctx context.Context, id string) (bool, error) {
	exists, err := c.Client.Exists(ctx, c.key(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redislock: get cancellation %q: %w", id, err)
	}
	return exists > 0, nil
}

func (c *CancellationCache) Set(ctx context.Context, id string) error {
	if err := c.Client.Set(ctx, c.key(id), "1", c.TTL).Err(); err != nil {
		return fmt.Errorf("redislock: set cancellation %q: %w", id, err)
	}
	return nil
}

func (c *CancellationCache) Del(ctx context.Context, id string) error {
	if err := c.Client.Del(ctx, c.key(id)).Err(); err != nil {
		return fmt.Errorf("redislock: del cancellation %q: %w", id, err)
	}
	return nil
}
