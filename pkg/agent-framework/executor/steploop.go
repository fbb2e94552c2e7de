package executor

import (
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var loopTracer = otel.Tracer("Executor.StepLoop")

// StepLoop drives one AgentRunState to a terminal LoopResult (§4.3).
//
// Grounded on agents.Agent.ExecuteWithExecutor's `for runState.LoopIteration
// < e.maxLoops { switch runState.NextStep() { ... } }` state machine, with
// the additional cancellation/timeout/sub-agent-suspension/output-tool exits
// spec.md requires layered on top of the teacher's StepCallLLM/
// StepExecuteTools/StepAwaitApproval/StepComplete cases.
type StepLoop struct {
	Manifest        *AgentManifest
	ToolsMap        map[string]ToolExecutor
	StepStreamer    *StepStreamer
	ToolDispatcher  *ToolDispatcher
	ParentManifestID string
}

// Run executes iterations until a terminal LoopResult is reached. events is
// the channel configurable AgentEvents are forwarded on; Run never closes it.
func (l *StepLoop) Run(ctx *Context, state *AgentRunState, events chan<- AgentEvent) LoopResult {
	goCtx, span := loopTracer.Start(ctx.Context, "Executor.StepLoop.Run")
	defer span.End()
	span.SetAttributes(attribute.String("agent.manifest_id", l.Manifest.ID))
	ctx.Context = goCtx

stepLoop:
	for {
		// 1. Cancellation check.
		if ctx.Abort() {
			return LoopResult{Kind: LoopCancelled, FinalState: state}
		}

		// 2. Timeout check.
		elapsed := state.ElapsedExecutionMs + time.Since(state.StartTime).Milliseconds()
		if state.TimeoutMs > 0 && elapsed > state.TimeoutMs {
			return LoopResult{
				Kind:       LoopError,
				Err:        NewTimeoutError("agent run exceeded timeout", nil, map[string]interface{}{"elapsed_ms": elapsed, "timeout_ms": state.TimeoutMs}),
				FinalState: state,
			}
		}

		// 3. Advance step number.
		state.CurrentStepNumber++

		// 4. onStepStart hook.
		var overrides *StepStreamOverrides
		if l.Manifest.Hooks.OnStepStart != nil {
			out, err := l.Manifest.Hooks.OnStepStart(ctx.Context, HookInput{State: state})
			if err != nil {
				return LoopResult{Kind: LoopError, Err: err, FinalState: state}
			}
			if out.Messages != nil || out.ToolChoice != "" || len(out.ActiveTools) > 0 {
				overrides = &StepStreamOverrides{Messages: out.Messages, ToolChoice: out.ToolChoice, ActiveTools: out.ActiveTools}
				if out.Messages != nil {
					state.Messages = out.Messages
				}
			}
		}

		if l.Manifest.Streaming.Allows(EventStepStart) {
			events <- AgentEvent{
				Type:             EventStepStart,
				ManifestID:       l.Manifest.ID,
				ParentManifestID: l.ParentManifestID,
				Timestamp:        time.Now(),
				StepNumber:       state.CurrentStepNumber,
			}
		}

		// 5. Stream step.
		agg, err := l.StepStreamer.Stream(ctx.Context, l.Manifest, state.Messages, overrides, state.CurrentStepNumber, l.ParentManifestID, events)
		if err != nil {
			if ctx.Abort() {
				return LoopResult{Kind: LoopCancelled, FinalState: state}
			}
			return LoopResult{Kind: LoopError, Err: NewProviderError("LLM step failed", err), FinalState: state}
		}

		assistantMsg := Message{Role: RoleAssistant, Text: agg.Text, ToolCalls: agg.ToolCalls}

		// 6. Approval gate.
		if len(agg.ApprovalRequests) > 0 {
			state.Messages = append(state.Messages, assistantMsg)
			suspensions := make([]ToolApprovalSuspension, 0, len(agg.ApprovalRequests))
			for _, req := range agg.ApprovalRequests {
				suspensions = append(suspensions, ToolApprovalSuspension{
					ApprovalID:  req.ApprovalID,
					ToolCallID:  req.ToolCallID,
					ToolName:    req.ToolName,
					ToolArgs:    req.Arguments,
					Description: req.Description,
				})
			}
			return LoopResult{
				Kind:           LoopSuspended,
				OwnSuspensions: suspensions,
				FinalState:     state,
			}
		}

		// 7. Tool dispatch.
		verdict := l.ToolDispatcher.Dispatch(ctx.Context, agg.ToolCalls, ToolExecContext{
			RunCtx:           ctx,
			Messages:         state.Messages,
			StepNumber:       state.CurrentStepNumber,
			ManifestID:       l.Manifest.ID,
			ParentManifestID: l.ParentManifestID,
			StateID:          state.RunID,
		}, events)

		// 8. Emit tool-result events for completed results only.
		completedResults := verdict.ToolResultParts
		if verdict.Suspended {
			completedResults = verdict.CompletedToolResultParts
		}
		if l.Manifest.Streaming.Allows(EventToolResult) {
			for _, tr := range completedResults {
				trCopy := tr
				events <- AgentEvent{
					Type:             EventToolResult,
					ManifestID:       l.Manifest.ID,
					ParentManifestID: l.ParentManifestID,
					Timestamp:        time.Now(),
					StepNumber:       state.CurrentStepNumber,
					ToolResult:       &trCopy,
				}
			}
		}

		// 9. Sub-agent suspension.
		if verdict.Suspended {
			state.Messages = append(state.Messages, assistantMsg)
			return LoopResult{
				Kind:                 LoopSuspended,
				SubAgentBranches:     verdict.Branches,
				CompletedToolResults: verdict.CompletedToolResultParts,
				FinalState:           state,
			}
		}

		// 10. Output-tool validation.
		if l.Manifest.OutputTool != nil {
			for _, call := range agg.ToolCalls {
				if call.Name != l.Manifest.OutputTool.ToolName {
					continue
				}
				outVerdict, reason, verr := validateOutputTool(l.Manifest.OutputTool, call, state.OutputValidationRetries)
				if verr != nil {
					return LoopResult{Kind: LoopError, Err: NewInternalError("output validation failed", verr), FinalState: state}
				}
				switch outVerdict {
				case OutputMaxRetriesExceeded:
					return LoopResult{
						Kind: LoopError,
						Err: NewValidationError("output-tool validation retries exhausted", nil, map[string]interface{}{
							"retries": state.OutputValidationRetries,
						}),
						FinalState: state,
					}
				case OutputInvalid:
					state.OutputValidationRetries++
					state.Messages = append(state.Messages,
						assistantMsg,
						Message{Role: RoleUser, Text: fmt.Sprintf("Your structured output was invalid: %s. Please try again.", reason)},
					)
					continue stepLoop
				}
			}
		}

		// 11. Record step.
		state.Steps = append(state.Steps, StepRecord{
			StepNumber:            state.CurrentStepNumber,
			Text:                  agg.Text,
			ToolCalls:             agg.ToolCalls,
			CompletedToolResults:  verdict.ToolResultParts,
			FinishReason:          agg.FinishReason,
			Usage:                 agg.Usage,
		})
		state.UpdatedAt = time.Now()

		// 12. onStepFinish hook.
		if l.Manifest.Hooks.OnStepFinish != nil {
			if _, err := l.Manifest.Hooks.OnStepFinish(ctx.Context, HookInput{State: state}); err != nil {
				return LoopResult{Kind: LoopError, Err: err, FinalState: state}
			}
		}

		if l.Manifest.Streaming.Allows(EventStepFinish) {
			events <- AgentEvent{
				Type:             EventStepFinish,
				ManifestID:       l.Manifest.ID,
				ParentManifestID: l.ParentManifestID,
				Timestamp:        time.Now(),
				StepNumber:       state.CurrentStepNumber,
			}
		}

		// 13. Stop condition.
		if l.stopConditionMet(state, agg) {
			return LoopResult{
				Kind:       LoopComplete,
				Result:     buildAgentResult(state),
				FinalState: state,
			}
		}

		// 14. Append iteration messages and continue.
		state.Messages = append(state.Messages, assistantMsg)
		for _, tr := range verdict.ToolResultParts {
			state.Messages = append(state.Messages, Message{
				Role:       RoleTool,
				Text:       tr.Output,
				ToolCallID: tr.ToolCallID,
				ToolName:   tr.ToolName,
			})
		}
	}
}

func (l *StepLoop) stopConditionMet(state *AgentRunState, agg *StepAggregate) bool {
	for _, cond := range l.Manifest.StopWhen {
		if cond.StepCount > 0 && state.CurrentStepNumber >= cond.StepCount {
			return true
		}
		if cond.ToolName != "" {
			for _, tc := range agg.ToolCalls {
				if tc.Name == cond.ToolName {
					return true
				}
			}
		}
	}
	if len(agg.ToolCalls) == 0 && agg.FinishReason == FinishStop && l.Manifest.OnTextOnly == OnTextOnlyStop {
		return true
	}
	return false
}

func buildAgentResult(state *AgentRunState) *AgentRunResult {
	return &AgentRunResult{
		Kind:   ResultComplete,
		RunID:  state.RunID,
		Output: state.Messages,
	}
}
