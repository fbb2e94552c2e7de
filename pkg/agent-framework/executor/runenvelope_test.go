package executor

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testStateCache, testRunLock and testCancellationCache are minimal
// in-package fakes of the three AgentStateCache/AgentRunLock/
// AgentCancellationCache collaborators — kept local to the test file (rather
// than reusing adapters/inmem) since that package imports executor and an
// internal _test.go file importing it back would be a cycle.
type testStateCache struct {
	mu    sync.Mutex
	state map[string]*AgentRunState
}

func newTestStateCache() *testStateCache {
	return &testStateCache{state: map[string]*AgentRunState{}}
}

func (c *testStateCache) Get(ctx context.Context, id string) (*AgentRunState, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	s, ok := c.state[id]
	return s, ok, nil
}

func (c *testStateCache) Set(ctx context.Context, id string, state *AgentRunState, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state[id] = state
	return nil
}

func (c *testStateCache) Del(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.state, id)
	return nil
}

type testRunLock struct {
	mu   sync.Mutex
	held map[string]bool
}

func newTestRunLock() *testRunLock { return &testRunLock{held: map[string]bool{}} }

func (l *testRunLock) Acquire(ctx context.Context, id string) (LockHandle, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held[id] {
		return nil, nil
	}
	l.held[id] = true
	return &testLockHandle{lock: l, id: id}, nil
}

type testLockHandle struct {
	lock *testRunLock
	id   string
}

func (h *testLockHandle) Release(ctx context.Context) error {
	h.lock.mu.Lock()
	defer h.lock.mu.Unlock()
	delete(h.lock.held, h.id)
	return nil
}

type testCancellationCache struct {
	mu        sync.Mutex
	cancelled map[string]bool
}

func newTestCancellationCache() *testCancellationCache {
	return &testCancellationCache{cancelled: map[string]bool{}}
}

func (c *testCancellationCache) Get(ctx context.Context, id string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cancelled[id], nil
}

func (c *testCancellationCache) Set(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cancelled[id] = true
	return nil
}

func (c *testCancellationCache) Del(ctx context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.cancelled, id)
	return nil
}

func newTestEnvelope() (*RunEnvelope, *testStateCache, *testRunLock, *testCancellationCache) {
	sc := newTestStateCache()
	lock := newTestRunLock()
	cancel := newTestCancellationCache()
	return &RunEnvelope{Lock: lock, StateCache: sc, Cancellation: cancel}, sc, lock, cancel
}

func TestRunEnvelope_CompletesAndPersists(t *testing.T) {
	manifest := &AgentManifest{ID: "assistant", Version: "v1", OnTextOnly: OnTextOnlyStop}
	envelope, stateCache, _, _ := newTestEnvelope()
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("hi")}}

	state := NewRunState("run-1", "run-1", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 32)
	go func() {
		for range events {
		}
	}()

	result := envelope.Execute(context.Background(), manifest, state, nil, &StepStreamer{Gateway: gw}, events)

	require.Equal(t, ResultComplete, result.Kind)
	persisted, ok, err := stateCache.Get(context.Background(), "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, RunStatusCompleted, persisted.Status)
}

func TestRunEnvelope_LockContentionReportsAlreadyRunning(t *testing.T) {
	manifest := &AgentManifest{ID: "assistant", Version: "v1", OnTextOnly: OnTextOnlyStop}
	envelope, _, lock, _ := newTestEnvelope()
	handle, err := lock.Acquire(context.Background(), "run-2")
	require.NoError(t, err)
	require.NotNil(t, handle)
	defer handle.Release(context.Background())

	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("hi")}}
	state := NewRunState("run-2", "run-2", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 8)
	go func() {
		for range events {
		}
	}()

	result := envelope.Execute(context.Background(), manifest, state, nil, &StepStreamer{Gateway: gw}, events)

	assert.Equal(t, ResultAlreadyRunning, result.Kind)
}

func TestRunEnvelope_SuspendedRunPersistsSuspensions(t *testing.T) {
	manifest := &AgentManifest{
		ID:      "assistant",
		Version: "v1",
		Tools:   []string{"delete_file"},
		HumanInTheLoop: HumanInTheLoop{
			AlwaysRequireApproval: []string{"delete_file"},
		},
	}
	envelope, stateCache, _, _ := newTestEnvelope()
	call := ToolCall{ID: "c1", Name: "delete_file"}
	gw := &scriptedGateway{scripts: [][]StreamPart{toolCallThenStop(call)}}

	state := NewRunState("run-3", "run-3", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 8)
	go func() {
		for range events {
		}
	}()

	result := envelope.Execute(context.Background(), manifest, state, nil, &StepStreamer{Gateway: gw}, events)

	require.Equal(t, ResultSuspended, result.Kind)
	require.Len(t, result.Suspensions, 1)
	persisted, ok, err := stateCache.Get(context.Background(), "run-3")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, RunStatusSuspended, persisted.Status)
	require.Len(t, persisted.Suspensions, 1)
	assert.Equal(t, "delete_file", persisted.Suspensions[0].ToolName)
}

func TestRunEnvelope_FiresTerminalHooks(t *testing.T) {
	manifest := &AgentManifest{ID: "assistant", Version: "v1", OnTextOnly: OnTextOnlyStop}
	var startFired, completeFired bool
	manifest.Hooks.OnAgentStart = func(ctx context.Context, in HookInput) (HookOutput, error) {
		startFired = true
		return HookOutput{}, nil
	}
	manifest.Hooks.OnAgentComplete = func(ctx context.Context, in HookInput) (HookOutput, error) {
		completeFired = true
		require.NotNil(t, in.Result)
		assert.Equal(t, ResultComplete, in.Result.Kind)
		return HookOutput{}, nil
	}
	envelope, _, _, _ := newTestEnvelope()
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("hi")}}

	state := NewRunState("run-4", "run-4", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 8)
	go func() {
		for range events {
		}
	}()

	envelope.Execute(context.Background(), manifest, state, nil, &StepStreamer{Gateway: gw}, events)

	assert.True(t, startFired)
	assert.True(t, completeFired)
}
