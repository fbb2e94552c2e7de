package executor

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var envelopeTracer = otel.Tracer("Executor.RunEnvelope")

// stateTTL is how long a persisted AgentRunState, terminal or not, survives
// in the state cache.
const stateTTL = 24 * time.Hour

// RunEnvelope guards one Step Loop invocation with the distributed lock,
// state cache, cancellation cache and lifecycle hooks/events spec.md §4.5
// requires. It owns acquiring and releasing the named lock for RunID
// regardless of how the Step Loop exits.
//
// Grounded on pkg/agent-framework/agents.DurableAgent.Execute's
// lock-then-load-then-run-then-save shape (itself backed by
// core.DurableExecutor.Run for idempotent side effects), generalized from the
// teacher's single Redis client reference into the AgentRunLock/
// AgentStateCache/AgentCancellationCache collaborator interfaces so the
// envelope can be driven by any backing store, not just the teacher's
// concrete Redis wiring.
type RunEnvelope struct {
	Lock        AgentRunLock
	StateCache  AgentStateCache
	Cancellation AgentCancellationCache
	Log         Logger
}

// Execute runs manifest/state to a terminal AgentRunResult, emitting
// lifecycle events on events. Execute never closes events — a run's
// lifetime may span several Execute calls (one per resume), so only the
// Orchestrator that owns the channel's creation decides when to close it.
func (e *RunEnvelope) Execute(
	ctx context.Context,
	manifest *AgentManifest,
	state *AgentRunState,
	toolsMap map[string]ToolExecutor,
	stepStreamer *StepStreamer,
	events chan<- AgentEvent,
) AgentRunResult {
	ctx, span := envelopeTracer.Start(ctx, "Executor.RunEnvelope.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("agent.run_id", state.RunID))

	// 1. Acquire the named run lock.
	handle, err := e.Lock.Acquire(ctx, state.RunID)
	if err != nil {
		result := e.fail(ctx, manifest, state, events, NewInternalError("failed to acquire run lock", err))
		return result
	}
	if handle == nil {
		result := AgentRunResult{Kind: ResultAlreadyRunning, RunID: state.RunID}
		events <- AgentEvent{
			Type:       EventAgentError,
			ManifestID: manifest.ID,
			Timestamp:  time.Now(),
			StateID:    state.RunID,
			Result:     &result,
			ErrorCode:  ErrCodeLockBusy.Code,
			ErrorMsg:   "run already in progress",
		}
		return result
	}
	defer func() {
		if releaseErr := handle.Release(context.WithoutCancel(ctx)); releaseErr != nil && e.Log != nil {
			e.Log.Error(ctx, "failed to release run lock", "run_id", state.RunID, "error", releaseErr)
		}
	}()

	// 2. Fire the start/resume hook and emit the lifecycle-started event.
	isResume := state.CurrentStepNumber > 0 || state.IsSuspended()
	hook := manifest.Hooks.OnAgentStart
	if isResume {
		hook = manifest.Hooks.OnAgentResume
	}
	if hook != nil {
		if _, err := hook(ctx, HookInput{State: state}); err != nil {
			return e.fail(ctx, manifest, state, events, NewInternalError("agent start/resume hook failed", err))
		}
	}
	state.Status = RunStatusRunning
	state.Suspensions = nil
	state.SuspensionStacks = nil

	events <- AgentEvent{
		Type:       EventAgentStarted,
		ManifestID: manifest.ID,
		Timestamp:  time.Now(),
		StateID:    state.RunID,
	}

	// Clear any stale cancellation signal from a previous resume cycle.
	if err := e.Cancellation.Del(ctx, state.RunID); err != nil && e.Log != nil {
		e.Log.Error(ctx, "failed to clear cancellation signal", "run_id", state.RunID, "error", err)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	go e.pollCancellation(runCtx, cancel, state.RunID)

	loop := &StepLoop{
		Manifest:       manifest,
		ToolsMap:       toolsMap,
		StepStreamer:   stepStreamer,
		ToolDispatcher: &ToolDispatcher{ToolsMap: toolsMap},
	}

	// 3. Drive the Step Loop.
	loopResult := loop.Run(&Context{Context: runCtx, RunID: state.RunID, StateID: state.RunID}, state, events)

	// 4. Clear the cancellation signal now that the loop has returned
	// (whether or not it was the cause).
	if err := e.Cancellation.Del(context.WithoutCancel(ctx), state.RunID); err != nil && e.Log != nil {
		e.Log.Error(ctx, "failed to clear cancellation signal after run", "run_id", state.RunID, "error", err)
	}

	state.ElapsedExecutionMs += time.Since(state.StartTime).Milliseconds()
	state.UpdatedAt = time.Now()

	var result AgentRunResult
	switch loopResult.Kind {
	case LoopComplete:
		state.Status = RunStatusCompleted
		result = *loopResult.Result
		e.fireTerminalHook(ctx, manifest.Hooks.OnAgentComplete, state, &result, nil)
		e.persist(ctx, state, 0)
		events <- AgentEvent{Type: EventAgentDone, ManifestID: manifest.ID, Timestamp: time.Now(), StateID: state.RunID, Result: &result}

	case LoopSuspended:
		state.Status = RunStatusSuspended
		state.Suspensions = loopResult.OwnSuspensions
		state.PendingToolResults = loopResult.CompletedToolResults
		stacks := BuildSuspensionStacks(manifest.ID, manifest.Version, state.RunID, loopResult.SubAgentBranches)
		state.SuspensionStacks = append(state.SuspensionStacks, stacks...)

		allSuspensions := append(append([]ToolApprovalSuspension{}, state.Suspensions...), suspensionLeaves(stacks)...)
		result = AgentRunResult{
			Kind:             ResultSuspended,
			RunID:            state.RunID,
			Suspensions:      allSuspensions,
			SuspensionStacks: state.SuspensionStacks,
		}
		e.fireTerminalHook(ctx, manifest.Hooks.OnAgentSuspend, state, &result, nil)
		e.persist(ctx, state, stateTTL)
		events <- AgentEvent{Type: EventAgentSuspended, ManifestID: manifest.ID, Timestamp: time.Now(), StateID: state.RunID, Result: &result}

	case LoopCancelled:
		state.Status = RunStatusCancelled
		result = AgentRunResult{Kind: ResultCancelled, RunID: state.RunID}
		e.fireTerminalHook(ctx, manifest.Hooks.OnAgentCancelled, state, &result, nil)
		e.persist(ctx, state, 0)
		events <- AgentEvent{Type: EventAgentCancelled, ManifestID: manifest.ID, Timestamp: time.Now(), StateID: state.RunID, Result: &result}

	case LoopError:
		return e.fail(ctx, manifest, state, events, asExecutorError(loopResult.Err))
	}

	return result
}

func (e *RunEnvelope) fail(ctx context.Context, manifest *AgentManifest, state *AgentRunState, events chan<- AgentEvent, execErr *ExecutorError) AgentRunResult {
	state.Status = RunStatusFailed
	state.UpdatedAt = time.Now()
	result := AgentRunResult{Kind: ResultError, RunID: state.RunID, Err: execErr}
	e.fireTerminalHook(ctx, manifest.Hooks.OnAgentError, state, &result, execErr)
	e.persist(ctx, state, 0)
	events <- AgentEvent{
		Type:       EventAgentError,
		ManifestID: manifest.ID,
		Timestamp:  time.Now(),
		StateID:    state.RunID,
		Result:     &result,
		ErrorCode:  execErr.Code.Code,
		ErrorMsg:   execErr.Error(),
	}
	return result
}

func (e *RunEnvelope) fireTerminalHook(ctx context.Context, hook Hook, state *AgentRunState, result *AgentRunResult, err error) {
	if hook == nil {
		return
	}
	if _, hookErr := hook(ctx, HookInput{State: state, Suspensions: state.Suspensions, Result: result, Err: err}); hookErr != nil && e.Log != nil {
		e.Log.Error(ctx, "terminal lifecycle hook failed", "run_id", state.RunID, "error", hookErr)
	}
}

// persist writes state to the state cache. A ttl of 0 is replaced by
// stateTTL rather than deleting the record outright, since callers (e.g. a
// status-polling endpoint) expect a completed run's final state to remain
// readable for some time after it finishes.
func (e *RunEnvelope) persist(ctx context.Context, state *AgentRunState, ttl time.Duration) {
	if ttl == 0 {
		ttl = stateTTL
	}
	if err := e.StateCache.Set(ctx, state.RunID, state, ttl); err != nil && e.Log != nil {
		e.Log.Error(ctx, "failed to persist run state", "run_id", state.RunID, "error", err)
	}
}

// pollCancellation watches the cancellation cache and cancels runCtx the
// moment a cancellation signal for runID appears, or when ctx itself ends.
//
// Grounded on internal/pubsub.pubsub's subscribe-and-forward pattern,
// rendered here as polling since AgentCancellationCache is a plain
// key-value contract rather than a pub/sub channel — the teacher's
// message bus is not in this package's collaborator surface.
func (e *RunEnvelope) pollCancellation(ctx context.Context, cancel context.CancelFunc, runID string) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			cancelled, err := e.Cancellation.Get(ctx, runID)
			if err != nil {
				continue
			}
			if cancelled {
				cancel()
				return
			}
		}
	}
}

func suspensionLeaves(stacks []SuspensionStack) []ToolApprovalSuspension {
	leaves := make([]ToolApprovalSuspension, 0, len(stacks))
	for _, s := range stacks {
		leaves = append(leaves, s.LeafSuspension)
	}
	return leaves
}

func asExecutorError(err error) *ExecutorError {
	if execErr, ok := err.(*ExecutorError); ok {
		return execErr
	}
	return NewInternalError("agent run failed", err)
}
