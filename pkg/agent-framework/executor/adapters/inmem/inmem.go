// Package inmem implements AgentStateCache, AgentRunLock and
// AgentCancellationCache entirely in memory, for LocalRuntime and for
// tests. None of it survives a process restart.
//
// Grounded on the same collaborator shapes redislock implements against
// Redis; here a sync.Mutex-guarded map stands in for the distributed store.
package inmem

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/curaious/uno/pkg/agent-framework/executor"
)

// StateCache is an in-memory executor.AgentStateCache. Entries carrying a
// non-zero TTL are lazily evicted on Get, not by a background sweep.
type StateCache struct {
	mu      sync.Mutex
	entries map[string]stateEntry
}

type stateEntry struct {
	state    *executor.AgentRunState
	expireAt time.Time
}

// NewStateCache builds an empty StateCache.
func NewStateCache() *StateCache {
	return &StateCache{entries: make(map[string]stateEntry)}
}

func (c *StateCache) Get(ctx context.Context, id string) (*executor.AgentRunState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[id]
	if !ok {
		return nil, false, nil
	}
	if !entry.expireAt.IsZero() && time.Now().After(entry.expireAt) {
		delete(c.entries, id)
		return nil, false, nil
	}
	return entry.state, true, nil
}

func (c *StateCache) Set(ctx context.Context, id string, state *executor.AgentRunState, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	var expireAt time.Time
	if ttl > 0 {
		expireAt = time.Now().Add(ttl)
	}
	c.entries[id] = stateEntry{state: state, expireAt: expireAt}
	return nil
}

func (c *StateCache) Del(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
	return nil
}

// RunLock is an in-memory executor.AgentRunLock: one goroutine holds a named
// lock at a time, enforced by a plain map of held keys.
type RunLock struct {
	mu   sync.Mutex
	held map[string]struct{}
}

// NewRunLock builds an empty RunLock.
func NewRunLock() *RunLock {
	return &RunLock{held: make(map[string]struct{})}
}

func (l *RunLock) Acquire(ctx context.Context, id string) (executor.LockHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, busy := l.held[id]; busy {
		return nil, nil
	}
	l.held[id] = struct{}{}
	return &lockHandle{lock: l, id: id}, nil
}

type lockHandle struct {
	lock *RunLock
	id   string
}

func (h *lockHandle) Release(ctx context.Context) error {
	h.lock.mu.Lock()
	defer h.lock.mu.Unlock()
	delete(h.lock.held, h.id)
	return nil
}

// CancellationCache is an in-memory executor.AgentCancellationCache.
type CancellationCache struct {
	mu        sync.Mutex
	cancelled map[string]struct{}
}

// NewCancellationCache builds an empty CancellationCache.
func NewCancellationCache() *CancellationCache {
	return &CancellationCache{cancelled: make(map[string]struct{})}
}

func (c *CancellationCache) Get(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, cancelled := c.cancelled[id]
	return cancelled, nil
}

func (c *CancellationCache) Set(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled[id] = struct{}{}
	return nil
}

func (c *CancellationCache) Del(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cancelled, id)
	return nil
}

// Logger is a minimal executor.Logger backed by fmt.Println, for local
// runs and tests where wiring a full slog.Logger is unnecessary ceremony.
type Logger struct{}

func (Logger) Info(ctx context.Context, msg string, args ...any) {
	fmt.Println(append([]any{"INFO", msg}, args...)...)
}

func (Logger) Error(ctx context.Context, msg string, args ...any) {
	fmt.Println(append([]any{"ERROR", msg}, args...)...)
}

func (Logger) Debug(ctx context.Context, msg string, args ...any) {
	fmt.Println(append([]any{"DEBUG", msg}, args...)...)
}
