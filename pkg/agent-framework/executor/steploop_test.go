package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoop(gateway CompletionsGateway, manifest *AgentManifest, toolsMap map[string]ToolExecutor) *StepLoop {
	return &StepLoop{
		Manifest:       manifest,
		ToolsMap:       toolsMap,
		StepStreamer:   &StepStreamer{Gateway: gateway},
		ToolDispatcher: &ToolDispatcher{ToolsMap: toolsMap},
	}
}

func TestStepLoop_CompletesOnTextOnlyStop(t *testing.T) {
	manifest := &AgentManifest{
		ID:         "assistant",
		Version:    "v1",
		OnTextOnly: OnTextOnlyStop,
	}
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("hello there")}}
	loop := newTestLoop(gw, manifest, nil)

	state := NewRunState("run-1", "run-1", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 64)
	go func() { <-time.After(time.Second); close(events) }()

	result := loop.Run(&Context{Context: context.Background(), RunID: state.RunID}, state, events)

	require.Equal(t, LoopComplete, result.Kind)
	require.NotNil(t, result.Result)
	assert.Equal(t, ResultComplete, result.Result.Kind)
	assert.Equal(t, 1, state.CurrentStepNumber)
	assert.Len(t, state.Steps, 1)
}

func TestStepLoop_StopsAfterStepCount(t *testing.T) {
	manifest := &AgentManifest{
		ID:       "assistant",
		Version:  "v1",
		StopWhen: []StopCondition{{StepCount: 2}},
	}
	gw := &scriptedGateway{scripts: [][]StreamPart{
		textThenStop("one"),
		textThenStop("two"),
	}}
	loop := newTestLoop(gw, manifest, nil)
	state := NewRunState("run-2", "run-2", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 64)
	go func() {
		for range events {
		}
	}()

	result := loop.Run(&Context{Context: context.Background(), RunID: state.RunID}, state, events)

	require.Equal(t, LoopComplete, result.Kind)
	assert.Equal(t, 2, state.CurrentStepNumber)
}

func TestStepLoop_SuspendsForApproval(t *testing.T) {
	manifest := &AgentManifest{
		ID:      "assistant",
		Version: "v1",
		Tools:   []string{"delete_file"},
		HumanInTheLoop: HumanInTheLoop{
			AlwaysRequireApproval: []string{"delete_file"},
		},
	}
	call := ToolCall{ID: "call-1", Name: "delete_file", Arguments: `{"path":"/tmp/x"}`}
	gw := &scriptedGateway{scripts: [][]StreamPart{toolCallThenStop(call)}}
	tool := &fakeTool{value: "deleted"}
	toolsMap := map[string]ToolExecutor{"delete_file": tool}
	loop := newTestLoop(gw, manifest, toolsMap)
	state := NewRunState("run-3", "run-3", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 64)
	go func() {
		for range events {
		}
	}()

	result := loop.Run(&Context{Context: context.Background(), RunID: state.RunID}, state, events)

	require.Equal(t, LoopSuspended, result.Kind)
	require.Len(t, result.OwnSuspensions, 1)
	assert.Equal(t, "delete_file", result.OwnSuspensions[0].ToolName)
	assert.Equal(t, "call-1", result.OwnSuspensions[0].ToolCallID)
	// The gated tool must never have executed.
	assert.Empty(t, state.Steps)
	assert.Equal(t, int32(0), tool.executed)
}

func TestStepLoop_SuspendsForSubAgentBranch(t *testing.T) {
	manifest := &AgentManifest{
		ID:      "parent",
		Version: "v1",
		Tools:   []string{"ask_specialist"},
	}
	call := ToolCall{ID: "call-1", Name: "ask_specialist", Arguments: `{}`}
	gw := &scriptedGateway{scripts: [][]StreamPart{toolCallThenStop(call)}}
	suspended := &AgentToolResult{
		Kind:            ToolResultSuspended,
		ChildRunID:      "child-run",
		ChildManifestID: "specialist",
		Suspensions:     []ToolApprovalSuspension{{ApprovalID: "appr-1", ToolName: "risky_op"}},
	}
	toolsMap := map[string]ToolExecutor{"ask_specialist": &fakeTool{suspended: suspended}}
	loop := newTestLoop(gw, manifest, toolsMap)
	state := NewRunState("run-4", "run-4", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 64)
	go func() {
		for range events {
		}
	}()

	result := loop.Run(&Context{Context: context.Background(), RunID: state.RunID}, state, events)

	require.Equal(t, LoopSuspended, result.Kind)
	require.Len(t, result.SubAgentBranches, 1)
	assert.Equal(t, "child-run", result.SubAgentBranches[0].ChildStateID)
}

func TestStepLoop_OutputValidationRetriesThenExhausts(t *testing.T) {
	manifest := &AgentManifest{
		ID:      "structured",
		Version: "v1",
		OutputTool: &OutputToolSpec{
			ToolName: "emit_result",
			Schema: map[string]any{
				"type":     "object",
				"required": []any{"answer"},
				"properties": map[string]any{
					"answer": map[string]any{"type": "string"},
				},
			},
		},
	}
	badCall := ToolCall{ID: "c", Name: "emit_result", Arguments: `{}`}
	scripts := make([][]StreamPart, 0, 4)
	for i := 0; i < 4; i++ {
		scripts = append(scripts, toolCallThenStop(badCall))
	}
	gw := &scriptedGateway{scripts: scripts}
	loop := newTestLoop(gw, manifest, nil)
	state := NewRunState("run-5", "run-5", manifest.ID, manifest.Version, time.Now(), 0)
	events := make(chan AgentEvent, 64)
	go func() {
		for range events {
		}
	}()

	result := loop.Run(&Context{Context: context.Background(), RunID: state.RunID}, state, events)

	require.Equal(t, LoopError, result.Kind)
	require.Error(t, result.Err)
	assert.Equal(t, 3, state.OutputValidationRetries)
}

func TestStepLoop_CancellationAborts(t *testing.T) {
	manifest := &AgentManifest{ID: "assistant", Version: "v1"}
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("never reached")}}
	loop := newTestLoop(gw, manifest, nil)
	state := NewRunState("run-6", "run-6", manifest.ID, manifest.Version, time.Now(), 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	events := make(chan AgentEvent, 64)
	go func() {
		for range events {
		}
	}()

	result := loop.Run(&Context{Context: ctx, RunID: state.RunID}, state, events)

	assert.Equal(t, LoopCancelled, result.Kind)
}

func TestStepLoop_TimeoutExceeded(t *testing.T) {
	manifest := &AgentManifest{ID: "assistant", Version: "v1"}
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("late")}}
	loop := newTestLoop(gw, manifest, nil)
	state := NewRunState("run-7", "run-7", manifest.ID, manifest.Version, time.Now().Add(-time.Hour), 10)
	state.StartTime = time.Now().Add(-time.Hour)
	events := make(chan AgentEvent, 64)
	go func() {
		for range events {
		}
	}()

	result := loop.Run(&Context{Context: context.Background(), RunID: state.RunID}, state, events)

	require.Equal(t, LoopError, result.Kind)
	var execErr *ExecutorError
	require.ErrorAs(t, result.Err, &execErr)
	assert.Equal(t, ErrCodeTimeout, execErr.Code)
}
