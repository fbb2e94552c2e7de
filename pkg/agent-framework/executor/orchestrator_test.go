package executor

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestOrchestrator(t *testing.T, gw CompletionsGateway, manifests ...*AgentManifest) *Orchestrator {
	t.Helper()
	set, err := NewManifestSet(manifests...)
	require.NoError(t, err)
	envelope, stateCache, _, _ := newTestEnvelope()
	return NewOrchestrator(set, gw, envelope, stateCache)
}

func TestOrchestrator_HappyPathRequestCompletes(t *testing.T) {
	manifest := &AgentManifest{ID: "assistant", Version: "v1", OnTextOnly: OnTextOnlyStop}
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("hello")}}
	orch := newTestOrchestrator(t, gw, manifest)

	events := orch.Execute(context.Background(), AgentInput{
		Kind:            InputRequest,
		ManifestID:      "assistant",
		ManifestVersion: "v1",
		Prompt:          []Message{{Role: RoleUser, Text: "hi"}},
	})

	seen := drainEvents(events)
	result := lastResult(seen)
	require.NotNil(t, result)
	assert.Equal(t, ResultComplete, result.Kind)
}

func TestOrchestrator_UnknownManifestErrors(t *testing.T) {
	orch := newTestOrchestrator(t, &scriptedGateway{}, &AgentManifest{ID: "a", Version: "v1"})

	events := orch.Execute(context.Background(), AgentInput{Kind: InputRequest, ManifestID: "missing", ManifestVersion: "v1"})

	seen := drainEvents(events)
	require.Len(t, seen, 1)
	assert.Equal(t, EventAgentError, seen[0].Type)
	assert.Equal(t, ErrCodeNotFound.Code, seen[0].ErrorCode)
}

func TestOrchestrator_ApprovalResumeExecutesApprovedTool(t *testing.T) {
	manifest := &AgentManifest{
		ID:         "assistant",
		Version:    "v1",
		Tools:      []string{"delete_file"},
		OnTextOnly: OnTextOnlyStop,
		HumanInTheLoop: HumanInTheLoop{
			AlwaysRequireApproval: []string{"delete_file"},
		},
		Hooks: Hooks{
			ToolExecutors: map[string]ToolExecutor{"delete_file": &fakeTool{value: "file deleted"}},
		},
	}
	gw := &scriptedGateway{scripts: [][]StreamPart{
		toolCallThenStop(ToolCall{ID: "c1", Name: "delete_file", Arguments: `{"path":"/tmp/x"}`}),
		textThenStop("done"),
	}}
	orch := newTestOrchestrator(t, gw, manifest)

	events := orch.Execute(context.Background(), AgentInput{
		Kind:            InputRequest,
		ManifestID:      "assistant",
		ManifestVersion: "v1",
		Prompt:          []Message{{Role: RoleUser, Text: "delete it"}},
	})
	seen := drainEvents(events)
	suspended := lastResult(seen)
	require.NotNil(t, suspended)
	require.Equal(t, ResultSuspended, suspended.Kind)
	require.Len(t, suspended.Suspensions, 1)
	approvalID := suspended.Suspensions[0].ApprovalID

	resumeEvents := orch.Execute(context.Background(), AgentInput{
		Kind:     InputApproval,
		RunID:    suspended.RunID,
		Response: ContinueResponse{ApprovalID: approvalID, Approved: true},
	})
	resumeSeen := drainEvents(resumeEvents)
	final := lastResult(resumeSeen)
	require.NotNil(t, final)
	require.Equal(t, ResultComplete, final.Kind)

	var sawToolResult bool
	for _, m := range final.Output {
		if m.Role == RoleTool && m.Text == "file deleted" {
			sawToolResult = true
		}
	}
	assert.True(t, sawToolResult, "expected the approved tool's real output to appear as a tool message")
}

func TestOrchestrator_ApprovalResumeDeniesWithoutExecutingTool(t *testing.T) {
	tool := &fakeTool{value: "should never run"}
	manifest := &AgentManifest{
		ID:         "assistant",
		Version:    "v1",
		Tools:      []string{"delete_file"},
		OnTextOnly: OnTextOnlyStop,
		HumanInTheLoop: HumanInTheLoop{
			AlwaysRequireApproval: []string{"delete_file"},
		},
		Hooks: Hooks{
			ToolExecutors: map[string]ToolExecutor{"delete_file": tool},
		},
	}
	gw := &scriptedGateway{scripts: [][]StreamPart{
		toolCallThenStop(ToolCall{ID: "c1", Name: "delete_file", Arguments: `{}`}),
		textThenStop("acknowledged"),
	}}
	orch := newTestOrchestrator(t, gw, manifest)

	events := orch.Execute(context.Background(), AgentInput{
		Kind: InputRequest, ManifestID: "assistant", ManifestVersion: "v1",
		Prompt: []Message{{Role: RoleUser, Text: "delete it"}},
	})
	suspended := lastResult(drainEvents(events))
	require.Equal(t, ResultSuspended, suspended.Kind)
	approvalID := suspended.Suspensions[0].ApprovalID

	resumeEvents := orch.Execute(context.Background(), AgentInput{
		Kind:     InputApproval,
		RunID:    suspended.RunID,
		Response: ContinueResponse{ApprovalID: approvalID, Approved: false, Reason: "too risky"},
	})
	final := lastResult(drainEvents(resumeEvents))
	require.NotNil(t, final)
	require.Equal(t, ResultComplete, final.Kind)

	assert.Equal(t, int32(0), tool.executed)
	var sawDenial bool
	for _, m := range final.Output {
		if m.Role == RoleTool && m.Text != "" {
			sawDenial = true
			assert.Contains(t, m.Text, "too risky")
		}
	}
	assert.True(t, sawDenial)
}

func TestOrchestrator_SubAgentSuspensionBuildsStackAndResumes(t *testing.T) {
	specialist := &AgentManifest{
		ID:         "specialist",
		Version:    "v1",
		Tools:      []string{"risky_op"},
		OnTextOnly: OnTextOnlyStop,
		HumanInTheLoop: HumanInTheLoop{
			AlwaysRequireApproval: []string{"risky_op"},
		},
		Hooks: Hooks{
			ToolExecutors: map[string]ToolExecutor{"risky_op": &fakeTool{value: "risky done"}},
		},
	}
	parent := &AgentManifest{
		ID:         "parent",
		Version:    "v1",
		OnTextOnly: OnTextOnlyStop,
		SubAgents:  []SubAgentRef{{ToolName: "ask_specialist", ManifestID: "specialist", ManifestVersion: "v1"}},
	}

	gw := &scriptedGateway{scripts: [][]StreamPart{
		// parent step 1: call the sub-agent tool
		toolCallThenStop(ToolCall{ID: "p1", Name: "ask_specialist", Arguments: `{}`}),
		// specialist step 1: request the gated tool, triggering its own suspension
		toolCallThenStop(ToolCall{ID: "s1", Name: "risky_op", Arguments: `{}`}),
		// specialist step 2, after approval resume
		textThenStop("specialist finished"),
		// parent step 2, after the specialist's terminal result is folded back in
		textThenStop("parent finished"),
	}}
	orch := newTestOrchestrator(t, gw, parent, specialist)

	events := orch.Execute(context.Background(), AgentInput{
		Kind: InputRequest, ManifestID: "parent", ManifestVersion: "v1",
		Prompt: []Message{{Role: RoleUser, Text: "go ask"}},
	})
	suspended := lastResult(drainEvents(events))
	require.NotNil(t, suspended)
	require.Equal(t, ResultSuspended, suspended.Kind)
	require.Len(t, suspended.SuspensionStacks, 1)
	stack := suspended.SuspensionStacks[0]
	require.Len(t, stack.Agents, 2)
	assert.Equal(t, suspended.RunID, stack.Agents[0].StateID)
	assert.Equal(t, "specialist", stack.Agents[1].ManifestID)

	resumeEvents := orch.Execute(context.Background(), AgentInput{
		Kind:     InputApproval,
		RunID:    suspended.RunID,
		Response: ContinueResponse{ApprovalID: stack.LeafSuspension.ApprovalID, Approved: true},
	})
	final := lastResult(drainEvents(resumeEvents))
	require.NotNil(t, final)
	assert.Equal(t, ResultComplete, final.Kind)
}

func TestOrchestrator_CallbackSeesEveryEvent(t *testing.T) {
	manifest := &AgentManifest{ID: "assistant", Version: "v1", OnTextOnly: OnTextOnlyStop}
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("hi")}}
	orch := newTestOrchestrator(t, gw, manifest)

	var viaCallback []AgentEvent
	events := orch.Execute(context.Background(), AgentInput{
		Kind: InputRequest, ManifestID: "assistant", ManifestVersion: "v1",
		Prompt:   []Message{{Role: RoleUser, Text: "hi"}},
		Callback: func(ev AgentEvent) { viaCallback = append(viaCallback, ev) },
	})

	viaChannel := drainEvents(events)

	require.NotEmpty(t, viaCallback)
	assert.Equal(t, len(viaChannel), len(viaCallback))
	assert.Equal(t, ResultComplete, lastResult(viaCallback).Kind)
}

func TestOrchestrator_ReplyToUnknownRunFailsWithNotFound(t *testing.T) {
	manifest := &AgentManifest{ID: "assistant", Version: "v1", OnTextOnly: OnTextOnlyStop}
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("first"), textThenStop("second")}}
	orch := newTestOrchestrator(t, gw, manifest)

	// A reply against a run id with no stored state fails cleanly with a
	// single not-found agent-error event rather than panicking.
	events := orch.Execute(context.Background(), AgentInput{
		Kind: InputReply, RunID: "does-not-exist", NewMessage: Message{Role: RoleUser, Text: "more"},
	})
	seen := drainEvents(events)
	require.Len(t, seen, 1)
	assert.Equal(t, EventAgentError, seen[0].Type)
	assert.Equal(t, ErrCodeNotFound.Code, seen[0].ErrorCode)
	_ = time.Second
}
