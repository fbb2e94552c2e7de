package executor

import (
	"context"
	"fmt"
)

// ManifestResolver resolves a manifest by id:version, mirroring ManifestSet's
// own signature so the Resume Dispatcher can be driven by a static
// ManifestSet or by a registry-backed lookup (§4.6 requires walking ancestor
// frames whose manifests may belong to a different run's ManifestSet).
type ManifestResolver interface {
	Get(manifestID, version string) *AgentManifest
}

// ResumeDispatcher implements §4.6: routing an approval AgentInput to the
// correct frame of a potentially
// nested SuspensionStack, re-invoking the Orchestrator for every frame from
// the leaf back up to the root.
//
// Not grounded in the teacher — agents/agent.go's resume path
// (`core.RunState.IsAwaitingApproval` + a single `ApprovalID` field) only
// ever resumes its own top-level state; there is no ancestor chain to walk.
// The frame-by-frame replay here is new code built directly from spec.md
// §4.6, using the teacher's AgentStateCache/AgentRunLock collaborators
// (already generalized in runenvelope.go) as its only grounded borrowing.
type ResumeDispatcher struct {
	StateCache AgentStateCache
	Manifests  ManifestResolver
	Orchestrator *Orchestrator
}

// Resume routes an approval response addressed to input.Response.ApprovalID
// within input.RunID. For a leaf suspension (found directly on the target
// state's own Suspensions) it resumes that state in place. For a suspension
// nested inside a SuspensionStack, it resumes the leaf frame first and then
// walks back up the stack, feeding each ancestor the child's terminal result
// as its pending tool call's output, until the root run is reached.
func (d *ResumeDispatcher) Resume(ctx context.Context, input AgentInput, events chan<- AgentEvent) (AgentRunResult, error) {
	approvalID := input.Response.ApprovalID
	state, found, err := d.StateCache.Get(ctx, input.RunID)
	if err != nil {
		return AgentRunResult{}, NewInternalError("failed to load run state for resume", err)
	}
	if !found {
		return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("no run state for id %q", input.RunID), nil)
	}
	if !state.IsSuspended() {
		return AgentRunResult{}, NewValidationError(fmt.Sprintf("run %q is not suspended", input.RunID), nil)
	}

	if _, ok := state.FindOwnSuspension(approvalID); ok {
		return d.resumeLeaf(ctx, state, input, nil, events)
	}

	stack, ok := state.FindStackSuspension(approvalID)
	if !ok {
		return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("no pending suspension for approval %q", approvalID), nil)
	}
	return d.resumeStack(ctx, stack, input, events)
}

// resumeLeaf resumes a state whose own step loop is directly awaiting
// approval. Per §4.6 step 2, the approval outcome is spliced into the
// resumed conversation as a synthetic tool-result: an approved call actually
// executes the gated tool and its real output becomes the tool-result; a
// rejected call never executes — its tool-result carries a denial. injected,
// when already non-nil (an already-answered ancestor's pending sub-agent
// call), is preserved and the approval's own result is queued alongside it
// on PendingToolResults rather than overwriting it.
func (d *ResumeDispatcher) resumeLeaf(ctx context.Context, state *AgentRunState, input AgentInput, injected *ToolResult, events chan<- AgentEvent) (AgentRunResult, error) {
	manifest := d.Manifests.Get(state.ManifestID, state.ManifestVersion)
	if manifest == nil {
		return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("manifest %s:%s not found", state.ManifestID, state.ManifestVersion), nil)
	}

	if susp, ok := state.FindOwnSuspension(input.Response.ApprovalID); ok {
		state.Suspensions = removeSuspension(state.Suspensions, input.Response.ApprovalID)
		resolved, err := d.resolveApproval(ctx, manifest, state, susp, input.Response, events)
		if err != nil {
			return AgentRunResult{}, err
		}
		if injected == nil {
			injected = resolved
		} else {
			state.PendingToolResults = append(state.PendingToolResults, *resolved)
		}
	}

	return d.Orchestrator.resumeState(ctx, manifest, state, input, injected, events)
}

// resolveApproval turns one answered ToolApprovalSuspension into the
// ToolResult the step loop will see as if the gated tool had run inline.
// Grounded directly on spec.md §4.6 step 2's approved/rejected split; the
// teacher has no equivalent since its tools never gate on approval before
// executing.
func (d *ResumeDispatcher) resolveApproval(ctx context.Context, manifest *AgentManifest, state *AgentRunState, susp ToolApprovalSuspension, resp ContinueResponse, events chan<- AgentEvent) (*ToolResult, error) {
	if !resp.Approved {
		reason := resp.Reason
		if reason == "" {
			reason = "denied by approver"
		}
		return &ToolResult{
			ToolCallID: susp.ToolCallID,
			ToolName:   susp.ToolName,
			Output:     fmt.Sprintf("tool call denied: %s", reason),
			IsError:    true,
		}, nil
	}

	toolsMap := d.Orchestrator.toolsMapFor(manifest)
	dispatcher := &ToolDispatcher{ToolsMap: toolsMap}
	verdict := dispatcher.Dispatch(ctx, []ToolCall{{ID: susp.ToolCallID, Name: susp.ToolName, Arguments: susp.ToolArgs}}, ToolExecContext{
		Messages:   state.Messages,
		StepNumber: state.CurrentStepNumber,
		ManifestID: manifest.ID,
		StateID:    state.RunID,
	}, events)

	if verdict.Suspended {
		// The approved tool is itself a sub-agent call that suspended again
		// on its very first execution. Re-suspending mid-resume would need a
		// fresh SuspensionStack folded onto a state that is already in the
		// middle of resuming one — a case spec.md's worked examples never
		// exercise. Surface it plainly rather than silently dropping the
		// nested suspension.
		return nil, NewInternalError("approved tool suspended again on execution; nested re-suspension during an approval resume is not supported", nil)
	}
	if len(verdict.ToolResultParts) == 0 {
		return nil, NewInternalError("approved tool produced no result", nil)
	}
	return &verdict.ToolResultParts[0], nil
}

// resumeStack resumes a suspension nested at the bottom of stack.Agents,
// replaying each ancestor frame in turn once its child below has produced a
// terminal result.
func (d *ResumeDispatcher) resumeStack(ctx context.Context, stack SuspensionStack, input AgentInput, events chan<- AgentEvent) (AgentRunResult, error) {
	if len(stack.Agents) == 0 {
		return AgentRunResult{}, NewInternalError("suspension stack has no frames", nil)
	}

	leaf := stack.Agents[len(stack.Agents)-1]
	leafState, found, err := d.StateCache.Get(ctx, leaf.StateID)
	if err != nil {
		return AgentRunResult{}, NewInternalError("failed to load leaf run state", err)
	}
	if !found {
		return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("no run state for leaf %q", leaf.StateID), nil)
	}

	result, err := d.resumeLeaf(ctx, leafState, input, nil, events)
	if err != nil {
		return AgentRunResult{}, err
	}

	// Walk back up the stack (excluding the leaf, already resumed), feeding
	// each ancestor a continuation built from the child immediately below it.
	for i := len(stack.Agents) - 2; i >= 0; i-- {
		frame := stack.Agents[i]
		parentState, found, err := d.StateCache.Get(ctx, frame.StateID)
		if err != nil {
			return AgentRunResult{}, NewInternalError("failed to load ancestor run state", err)
		}
		if !found {
			return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("no run state for ancestor %q", frame.StateID), nil)
		}
		parentManifest := d.Manifests.Get(frame.ManifestID, frame.ManifestVersion)
		if parentManifest == nil {
			return AgentRunResult{}, NewNotFoundError(fmt.Sprintf("manifest %s:%s not found", frame.ManifestID, frame.ManifestVersion), nil)
		}

		parentState.SuspensionStacks = dropChildStack(parentState.SuspensionStacks, stack.LeafSuspension.ApprovalID)
		injected := &ToolResult{
			ToolCallID: frame.PendingToolCallID,
			Output:     subAgentOutputText(result),
			IsError:    result.Kind == ResultError,
		}

		result, err = d.Orchestrator.resumeState(ctx, parentManifest, parentState, AgentInput{Kind: InputContinue, RunID: frame.StateID}, injected, events)
		if err != nil {
			return AgentRunResult{}, err
		}
	}

	return result, nil
}

func removeSuspension(suspensions []ToolApprovalSuspension, approvalID string) []ToolApprovalSuspension {
	out := make([]ToolApprovalSuspension, 0, len(suspensions))
	for _, s := range suspensions {
		if s.ApprovalID != approvalID {
			out = append(out, s)
		}
	}
	return out
}

func dropChildStack(stacks []SuspensionStack, approvalID string) []SuspensionStack {
	out := make([]SuspensionStack, 0, len(stacks))
	for _, s := range stacks {
		if s.LeafSuspension.ApprovalID != approvalID {
			out = append(out, s)
		}
	}
	return out
}

func subAgentOutputText(result AgentRunResult) string {
	switch result.Kind {
	case ResultComplete:
		if len(result.Output) == 0 {
			return ""
		}
		return result.Output[len(result.Output)-1].Text
	case ResultError:
		if result.Err != nil {
			return result.Err.Error()
		}
		return "sub-agent failed"
	default:
		return ""
	}
}
