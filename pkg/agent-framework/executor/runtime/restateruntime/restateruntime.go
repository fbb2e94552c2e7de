// Package restateruntime drives Executor.Orchestrator inside a Restate
// workflow, for durable, crash-recoverable execution.
//
// Grounded on pkg/agent-framework/runtime/restate_runtime: RestateRuntime's
// ingress.Client/ingress.Workflow request pattern, and
// AgentWorkflow.Run/RestateExecutor's restate.Run wrapping of every
// side-effecting call. The new executor already persists AgentRunState to
// AgentStateCache after every step (RunEnvelope.persist) and guards
// concurrent access with AgentRunLock, so this package wraps one whole
// Orchestrator.Execute invocation in a single restate.Run rather than
// wrapping each LLM call and tool call individually the way
// RestateExecutor.NewStreamingResponses/CallTool do — Restate's journal
// gives "replay this step if the workflow crashes mid-run" durability at
// the run granularity, while the executor's own state cache still gives
// "resume a suspended run as a fresh invocation" durability at the step
// granularity. The teacher's per-call restate.Run wrapping is not carried
// over: the new executor's tool calls can themselves recurse into
// sub-agent runs, and durability there is provided by AgentStateCache, not
// by nesting additional restate.Run calls around ToolDispatcher.
//
// Event streaming does not cross the Restate ingress boundary, matching the
// teacher's own documented limitation ("the callback won't work across
// process boundaries") — Run returns only the terminal AgentRunResult.
package restateruntime

import (
	"context"
	"fmt"

	restate "github.com/restatedev/sdk-go"
	"github.com/restatedev/sdk-go/ingress"

	"github.com/curaious/uno/pkg/agent-framework/executor"
)

// WorkflowInput is the Restate workflow's request payload.
type WorkflowInput struct {
	ManifestID      string         `json:"manifest_id"`
	ManifestVersion string         `json:"manifest_version"`
	Prompt          []executor.Message `json:"prompt"`
	RunContext      map[string]any `json:"run_context"`
}

// Runtime invokes the "AgentWorkflow" Restate service over ingress.
type Runtime struct {
	client *ingress.Client
}

// NewRuntime builds a Runtime pointed at a Restate ingress endpoint.
func NewRuntime(endpoint string) *Runtime {
	return &Runtime{client: ingress.NewClient(endpoint)}
}

// Run starts a new agent run as a durable Restate workflow and blocks until
// it completes, suspends or fails.
func (r *Runtime) Run(ctx context.Context, input WorkflowInput, runID string) (*executor.AgentRunResult, error) {
	return ingress.Workflow[*WorkflowInput, *executor.AgentRunResult](
		r.client,
		"AgentWorkflow",
		runID,
		"Run",
	).Request(ctx, &input)
}

// AgentWorkflow is the Restate-registered workflow object. Manifests and
// Gateway are wired once at service-registration time, matching how
// restate_runtime.AgentWorkflow.Run looks the agent up from a
// process-global registry rather than taking it as workflow input.
type AgentWorkflow struct {
	Manifests *executor.ManifestSet
	Gateway   executor.CompletionsGateway
	Envelope  *executor.RunEnvelope
	NewRunID  func() string
}

// Run executes one agent run to completion inside the Restate workflow
// context, replaying from the journal on worker crash rather than
// re-invoking the LLM or tools that already completed.
func (w AgentWorkflow) Run(workflowCtx restate.WorkflowContext, input *WorkflowInput) (*executor.AgentRunResult, error) {
	if w.Manifests.Get(input.ManifestID, input.ManifestVersion) == nil {
		return nil, fmt.Errorf("restateruntime: manifest %s:%s not found", input.ManifestID, input.ManifestVersion)
	}

	orchestrator := executor.NewOrchestrator(w.Manifests, w.Gateway, w.Envelope, w.Envelope.StateCache)

	return restate.Run(workflowCtx, func(runCtx restate.RunContext) (*executor.AgentRunResult, error) {
		agentInput := executor.AgentInput{
			Kind:            executor.InputRequest,
			ManifestID:      input.ManifestID,
			ManifestVersion: input.ManifestVersion,
			Prompt:          input.Prompt,
			RunContext:      input.RunContext,
		}

		events := orchestrator.Execute(runCtx, agentInput)

		var result *executor.AgentRunResult
		for ev := range events {
			if ev.Result != nil {
				result = ev.Result
			}
		}
		if result == nil {
			return nil, fmt.Errorf("restateruntime: run ended without a terminal result")
		}
		return result, nil
	})
}
