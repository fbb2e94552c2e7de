package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToolDispatcher_AllCompleteInCallOrder(t *testing.T) {
	toolsMap := map[string]ToolExecutor{
		"a": &fakeTool{value: "A-out"},
		"b": &fakeTool{value: "B-out"},
	}
	d := &ToolDispatcher{ToolsMap: toolsMap}
	calls := []ToolCall{
		{ID: "1", Name: "a"},
		{ID: "2", Name: "b"},
	}
	events := make(chan AgentEvent, 16)
	go func() {
		for range events {
		}
	}()

	verdict := d.Dispatch(context.Background(), calls, ToolExecContext{}, events)

	require.False(t, verdict.Suspended)
	require.Len(t, verdict.ToolResultParts, 2)
	assert.Equal(t, "A-out", verdict.ToolResultParts[0].Output)
	assert.Equal(t, "B-out", verdict.ToolResultParts[1].Output)
}

func TestToolDispatcher_UnknownToolBecomesErrorResult(t *testing.T) {
	d := &ToolDispatcher{ToolsMap: map[string]ToolExecutor{}}
	calls := []ToolCall{{ID: "1", Name: "missing"}}
	events := make(chan AgentEvent, 4)
	go func() {
		for range events {
		}
	}()

	verdict := d.Dispatch(context.Background(), calls, ToolExecContext{}, events)

	require.False(t, verdict.Suspended)
	require.Len(t, verdict.ToolResultParts, 1)
	assert.True(t, verdict.ToolResultParts[0].IsError)
}

func TestToolDispatcher_OneSuspensionFoldsWholeStepToSuspended(t *testing.T) {
	suspended := &AgentToolResult{Kind: ToolResultSuspended, ChildRunID: "child-1"}
	toolsMap := map[string]ToolExecutor{
		"quick":  &fakeTool{value: "done"},
		"gated":  &fakeTool{suspended: suspended},
	}
	d := &ToolDispatcher{ToolsMap: toolsMap}
	calls := []ToolCall{
		{ID: "1", Name: "quick"},
		{ID: "2", Name: "gated"},
	}
	events := make(chan AgentEvent, 16)
	go func() {
		for range events {
		}
	}()

	verdict := d.Dispatch(context.Background(), calls, ToolExecContext{}, events)

	require.True(t, verdict.Suspended)
	require.Len(t, verdict.Branches, 1)
	assert.Equal(t, "child-1", verdict.Branches[0].ChildStateID)
	require.Len(t, verdict.CompletedToolResultParts, 1)
	assert.Equal(t, "done", verdict.CompletedToolResultParts[0].Output)
}

func TestToolDispatcher_NoCallsReturnsEmptyVerdict(t *testing.T) {
	d := &ToolDispatcher{ToolsMap: map[string]ToolExecutor{}}
	events := make(chan AgentEvent, 1)

	verdict := d.Dispatch(context.Background(), nil, ToolExecContext{}, events)

	assert.False(t, verdict.Suspended)
	assert.Empty(t, verdict.ToolResultParts)
}
