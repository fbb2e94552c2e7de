// Package temporalruntime drives Executor.Orchestrator as a Temporal
// workflow, for durable, crash-recoverable execution.
//
// Grounded on pkg/agent-framework/runtime/temporal_runtime: TemporalRuntime's
// client.ExecuteWorkflow/run.Get request pattern, and
// TemporalExecutor/TemporalAgent's workflow.ExecuteActivity wrapping of
// every side-effecting call (LoadMessages, NewStreamingResponses, CallTool,
// ...) behind per-agent-named activities.
//
// A Temporal workflow function must be deterministic single-threaded code;
// the Orchestrator's step loop is not — it fans tool calls out across
// goroutines and drives a streaming gateway over channels. So rather than
// port TemporalExecutor's one-activity-per-collaborator-method split (which
// would require rewriting the step loop itself to run inside
// workflow.Context), this package collapses one whole Orchestrator.Execute
// invocation into a single activity, ExecuteAgentRunActivity, exactly as
// restateruntime collapses it into one restate.Run block. The workflow
// function itself is a thin, deterministic wrapper that starts that
// activity and waits for it.
package temporalruntime

import (
	"context"
	"fmt"
	"time"

	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/workflow"

	"github.com/curaious/uno/pkg/agent-framework/executor"
)

// WorkflowName is the Temporal workflow type this package registers.
const WorkflowName = "AgentWorkflow"

// ActivityName is the Temporal activity type this package registers.
const ActivityName = "ExecuteAgentRunActivity"

// Input is the workflow's request payload.
type Input struct {
	ManifestID      string
	ManifestVersion string
	Prompt          []executor.Message
	RunContext      map[string]any
}

// Runtime starts AgentWorkflow executions against a Temporal server.
type Runtime struct {
	client client.Client
}

// NewRuntime dials a Temporal server at endpoint.
func NewRuntime(endpoint string) (*Runtime, error) {
	c, err := client.Dial(client.Options{HostPort: endpoint})
	if err != nil {
		return nil, fmt.Errorf("temporalruntime: dial %q: %w", endpoint, err)
	}
	return &Runtime{client: c}, nil
}

// Run starts a new agent run as a Temporal workflow and blocks until it
// completes, suspends or fails.
func (r *Runtime) Run(ctx context.Context, input Input, taskQueue string) (*executor.AgentRunResult, error) {
	run, err := r.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{TaskQueue: taskQueue}, WorkflowName, input)
	if err != nil {
		return nil, fmt.Errorf("temporalruntime: start workflow: %w", err)
	}
	var result executor.AgentRunResult
	if err := run.Get(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// AgentWorkflow is the deterministic workflow function: it starts
// ExecuteAgentRunActivity and returns its result.
func AgentWorkflow(ctx workflow.Context, input Input) (*executor.AgentRunResult, error) {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Minute,
		HeartbeatTimeout:    30 * time.Second,
	})

	var result executor.AgentRunResult
	if err := workflow.ExecuteActivity(ctx, ActivityName, input).Get(ctx, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// Activities wires the collaborators ExecuteAgentRunActivity needs; Register
// it against a worker with RegisterActivityWithOptions(a.ExecuteAgentRunActivity,
// activity.RegisterOptions{Name: ActivityName}).
type Activities struct {
	Manifests *executor.ManifestSet
	Gateway   executor.CompletionsGateway
	Envelope  *executor.RunEnvelope
}

// ExecuteAgentRunActivity drives one agent run to a terminal AgentRunResult.
// Temporal's activity heartbeat/retry mechanics provide this activity's own
// durability; within it, the executor's RunEnvelope still guards the run
// with its distributed lock and persists AgentRunState after every step, so
// a suspended run can be resumed by a later, independent activity
// invocation rather than by replaying this one.
func (a *Activities) ExecuteAgentRunActivity(ctx context.Context, input Input) (*executor.AgentRunResult, error) {
	if a.Manifests.Get(input.ManifestID, input.ManifestVersion) == nil {
		return nil, fmt.Errorf("temporalruntime: manifest %s:%s not found", input.ManifestID, input.ManifestVersion)
	}

	orchestrator := executor.NewOrchestrator(a.Manifests, a.Gateway, a.Envelope, a.Envelope.StateCache)

	events := orchestrator.Execute(ctx, executor.AgentInput{
		Kind:            executor.InputRequest,
		ManifestID:      input.ManifestID,
		ManifestVersion: input.ManifestVersion,
		Prompt:          input.Prompt,
		RunContext:      input.RunContext,
	})

	var result *executor.AgentRunResult
	for ev := range events {
		if ev.Result != nil {
			result = ev.Result
		}
	}
	if result == nil {
		return nil, fmt.Errorf("temporalruntime: run ended without a terminal result")
	}
	return result, nil
}
