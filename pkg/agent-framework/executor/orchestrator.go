package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Orchestrator is the executor's single entry point (§4.7): it classifies an
// AgentInput into request/reply/approval/continue, materializes a run's
// tools map (declared tool executors, sub-agents wrapped as tools, and any
// MCP-backed tools the manifest names), and drives either a fresh run or a
// resume through RunEnvelope/ResumeDispatcher.
//
// Grounded on pkg/agent-framework/agents.Agent.PrepareMCPTools (toolsMap
// materialization unioning declared tools with MCP-discovered ones) and
// agents.Registry (manifest-id-to-agent lookup generalized here into
// ManifestSet). The request/reply/approval/continue classification itself
// has no direct teacher analogue — agents.Agent only ever distinguishes
// "fresh call" from "resume with an approval" — so it is new code built from
// spec.md §4.7, reusing the teacher's collaborators rather than its control
// flow.
type Orchestrator struct {
	Manifests  *ManifestSet
	Gateway    CompletionsGateway
	Envelope   *RunEnvelope
	StateCache AgentStateCache
	NewRunID   func() string
}

// NewOrchestrator wires an Orchestrator with uuid.NewString as its run-id
// generator, matching google/uuid's use elsewhere in the teacher for
// request- and trace-scoped identifiers.
func NewOrchestrator(manifests *ManifestSet, gateway CompletionsGateway, envelope *RunEnvelope, stateCache AgentStateCache) *Orchestrator {
	return &Orchestrator{
		Manifests:  manifests,
		Gateway:    gateway,
		Envelope:   envelope,
		StateCache: stateCache,
		NewRunID:   uuid.NewString,
	}
}

// Execute classifies input and drives it to a terminal AgentRunResult,
// streaming every AgentEvent produced along the way on the returned channel.
// The final outcome is not returned separately — it is carried on the
// terminal lifecycle event's Result field (agent-done/-suspended/-cancelled/
// -error), matching how RunEnvelope.Execute already reports it. The channel
// is closed once that terminal event has been sent.
func (o *Orchestrator) Execute(ctx context.Context, input AgentInput) <-chan AgentEvent {
	events := make(chan AgentEvent, 16)

	// sink is what dispatch writes into. When the caller supplied a
	// Callback, writes go to an internal channel first so every event can be
	// handed to the callback before it reaches the channel the caller reads
	// — mirroring agents.Agent.ExecuteWithExecutor's `cb(chunk)` called
	// inline at the point each chunk is produced, generalized here to one
	// forwarding point since AgentEvents fan in from several nested
	// collaborators rather than a single accumulator loop.
	sink := events
	if input.Callback != nil {
		internal := make(chan AgentEvent, 16)
		sink = internal
		go func() {
			defer close(events)
			for ev := range internal {
				input.Callback(ev)
				events <- ev
			}
		}()
	}

	go func() {
		defer func() {
			if sink != events {
				close(sink)
			} else {
				close(events)
			}
		}()
		_, err := o.dispatch(ctx, input, sink)
		if err != nil {
			execErr := asExecutorError(err)
			sink <- AgentEvent{
				Type:      EventAgentError,
				Timestamp: time.Now(),
				Result:    &AgentRunResult{Kind: ResultError, RunID: input.RunID, Err: execErr},
				ErrorCode: execErr.Code.Code,
				ErrorMsg:  execErr.Error(),
			}
		}
	}()

	return events
}

func (o *Orchestrator) dispatch(ctx context.Context, input AgentInput, events chan<- AgentEvent) (AgentRunResult, error) {
	switch input.Kind {
	case InputRequest:
		return o.handleRequest(ctx, input, events)
	case InputApproval:
		dispatcher := &ResumeDispatcher{StateCache: o.StateCache, Manifests: o.Manifests, Orchestrator: o}
		return dispatcher.Resume(ctx, input, events)
	case InputReply, InputContinue:
		state, found, err := o.StateCache.Get(ctx, input.RunID)
		if err != nil {
			return AgentRunResult{}, NewInternalError("failed to load run state", err)
		}
		if !found {
			return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("no run state for id %q", input.RunID), nil)
		}
		manifest := o.Manifests.Get(state.ManifestID, state.ManifestVersion)
		if manifest == nil {
			return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("manifest %s:%s not found", state.ManifestID, state.ManifestVersion), nil)
		}
		if input.Kind == InputReply && state.Status != RunStatusCompleted {
			return AgentRunResult{}, NewValidationError(fmt.Sprintf("reply requires status=completed, run %q has status %q", input.RunID, state.Status), nil)
		}
		if input.Kind == InputContinue && (state.Status != RunStatusSuspended || len(state.PendingToolResults) == 0) {
			return AgentRunResult{}, NewValidationError(fmt.Sprintf("continue requires status=suspended with non-empty pendingToolResults, run %q has status %q and %d pending tool results", input.RunID, state.Status, len(state.PendingToolResults)), nil)
		}
		return o.resumeState(ctx, manifest, state, input, nil, events)
	default:
		return AgentRunResult{}, NewValidationError(fmt.Sprintf("unrecognized agent input kind %q", input.Kind), nil)
	}
}

func (o *Orchestrator) handleRequest(ctx context.Context, input AgentInput, events chan<- AgentEvent) (AgentRunResult, error) {
	manifest := o.Manifests.Get(input.ManifestID, input.ManifestVersion)
	if manifest == nil {
		return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("manifest %s:%s not found", input.ManifestID, input.ManifestVersion), nil)
	}

	cloned, err := input.Clone()
	if err != nil {
		return AgentRunResult{}, NewInternalError("failed to clone agent input", err)
	}

	runID := o.NewRunID()
	state := NewRunState(runID, runID, manifest.ID, manifest.Version, time.Now(), manifest.TimeoutMs)
	state.Messages = append(state.Messages, cloned.Prompt...)
	if cloned.RunContext != nil {
		state.Context = cloned.RunContext
	}

	toolsMap := o.toolsMapFor(manifest)
	stepStreamer := &StepStreamer{Gateway: o.Gateway}
	return o.Envelope.Execute(ctx, manifest, state, toolsMap, stepStreamer, events), nil
}

// resumeState re-enters RunEnvelope for an existing state (a suspended run
// being resumed, or a completed run receiving a reply). injected,
// when non-nil, is folded into the state's PendingToolResults before the
// Step Loop resumes — this is how an ancestor frame learns the terminal
// outcome of the sub-agent branch it suspended on.
func (o *Orchestrator) resumeState(ctx context.Context, manifest *AgentManifest, state *AgentRunState, input AgentInput, injected *ToolResult, events chan<- AgentEvent) (AgentRunResult, error) {
	if input.Kind == InputReply {
		state.Messages = append(state.Messages, input.NewMessage)
	}
	if injected != nil {
		state.PendingToolResults = append(state.PendingToolResults, *injected)
	}

	// Fold every pending tool result (from this resume or a prior partial
	// suspension, per the executor's Open Question resolution: pending tool
	// results are carried on the parent state, not re-derived from the
	// suspending step) into the conversation before the loop resumes.
	for _, tr := range state.PendingToolResults {
		state.Messages = append(state.Messages, Message{
			Role:       RoleTool,
			Text:       tr.Output,
			ToolCallID: tr.ToolCallID,
			ToolName:   tr.ToolName,
		})
	}
	state.PendingToolResults = nil

	toolsMap := o.toolsMapFor(manifest)
	stepStreamer := &StepStreamer{Gateway: o.Gateway}
	return o.Envelope.Execute(ctx, manifest, state, toolsMap, stepStreamer, events), nil
}

// toolsMapFor unions a manifest's declared tool executors with its
// sub-agents, each wrapped as a ToolExecutor that recurses into this same
// Orchestrator.
func (o *Orchestrator) toolsMapFor(manifest *AgentManifest) map[string]ToolExecutor {
	toolsMap := make(map[string]ToolExecutor, len(manifest.Hooks.ToolExecutors)+len(manifest.SubAgents))
	for name, exec := range manifest.Hooks.ToolExecutors {
		toolsMap[name] = exec
	}
	for _, sub := range manifest.SubAgents {
		mapper := manifest.Hooks.SubAgentMappers[sub.ToolName]
		toolsMap[sub.ToolName] = &subAgentTool{
			orchestrator:    o,
			sub:             sub,
			mapper:          mapper,
		}
	}
	return toolsMap
}

// subAgentTool adapts a sub-agent manifest into a ToolExecutor so the Tool
// Dispatcher can invoke it exactly like any other tool, surfacing the
// child's suspension as an AgentToolResult of kind "suspended" when the
// recursive run does not complete outright (§4.2's recursion clause).
//
// Grounded on tools/agent_tool.go's AgentTool, which wraps a
// *agents.DurableAgent behind the core.Tool interface; subAgentTool performs
// the same recursive-invocation wrapping against the new Orchestrator
// instead of DurableAgent.Execute, because DurableAgent has no suspension
// return value to propagate.
type subAgentTool struct {
	orchestrator *Orchestrator
	sub          SubAgentRef
	mapper       func(args string) (AgentInput, error)
}

func (t *subAgentTool) Execute(ctx context.Context, call ToolCall, execCtx ToolExecContext) (<-chan Result[AgentEvent], <-chan AgentToolResult) {
	evCh := make(chan Result[AgentEvent])
	resCh := make(chan AgentToolResult, 1)

	go func() {
		defer close(evCh)
		defer close(resCh)

		var input AgentInput
		if t.mapper != nil {
			mapped, err := t.mapper(call.Arguments)
			if err != nil {
				resCh <- AgentToolResult{Kind: ToolResultErrorKind, Err: err, ErrCode: ErrCodeValidation.Code}
				return
			}
			input = mapped
		} else {
			input = AgentInput{Prompt: []Message{{Role: RoleUser, Text: call.Arguments}}}
		}
		input.Kind = InputRequest
		input.ManifestID = t.sub.ManifestID
		input.ManifestVersion = t.sub.ManifestVersion

		childEvents := make(chan AgentEvent, 16)
		resultCh := make(chan struct {
			result AgentRunResult
			err    error
		}, 1)

		go func() {
			manifest := t.orchestrator.Manifests.Get(t.sub.ManifestID, t.sub.ManifestVersion)
			if manifest == nil {
				close(childEvents)
				resultCh <- struct {
					result AgentRunResult
					err    error
				}{err: NewNotFoundError(fmt.Sprintf("manifest %s:%s not found", t.sub.ManifestID, t.sub.ManifestVersion), nil)}
				return
			}
			result, err := t.orchestrator.handleRequest(ctx, input, childEvents)
			close(childEvents)
			resultCh <- struct {
				result AgentRunResult
				err    error
			}{result: result, err: err}
		}()

		for ev := range childEvents {
			ev.ParentManifestID = execCtx.ManifestID
			evCh <- Ok(ev)
		}
		outcome := <-resultCh

		if outcome.err != nil {
			resCh <- AgentToolResult{Kind: ToolResultErrorKind, Err: outcome.err, ErrCode: ErrCodeInternal.Code}
			return
		}

		switch outcome.result.Kind {
		case ResultComplete:
			resCh <- AgentToolResult{Kind: ToolResultSuccess, Value: subAgentOutputText(outcome.result)}
		case ResultSuspended:
			resCh <- AgentToolResult{
				Kind:                ToolResultSuspended,
				ChildRunID:          outcome.result.RunID,
				ChildManifestID:     t.sub.ManifestID,
				ChildManifestVersion: t.sub.ManifestVersion,
				Suspensions:         outcome.result.Suspensions,
				ChildStacks:         outcome.result.SuspensionStacks,
			}
		case ResultError:
			resCh <- AgentToolResult{Kind: ToolResultErrorKind, Err: outcome.result.Err, ErrCode: outcome.result.Err.Code.Code, Retryable: false}
		default:
			resCh <- AgentToolResult{Kind: ToolResultErrorKind, Err: fmt.Errorf("sub-agent ended in unexpected state %q", outcome.result.Kind)}
		}
	}()

	return evCh, resCh
}
