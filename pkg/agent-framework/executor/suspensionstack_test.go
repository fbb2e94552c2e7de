package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildSuspensionStacks_DirectChildSuspension(t *testing.T) {
	branches := []SuspendedBranch{
		{
			ToolCallID:      "call-1",
			ChildStateID:    "child-run",
			ChildManifestID: "specialist",
			ChildManifestVersion: "v1",
			Suspensions: []ToolApprovalSuspension{
				{ApprovalID: "A1", ToolName: "delete"},
			},
		},
	}

	stacks := BuildSuspensionStacks("parent", "v1", "parent-run", branches)

	require.Len(t, stacks, 1)
	assert.Equal(t, "A1", stacks[0].LeafSuspension.ApprovalID)
	require.Len(t, stacks[0].Agents, 2)
	assert.Equal(t, "parent", stacks[0].Agents[0].ManifestID)
	assert.Equal(t, "parent-run", stacks[0].Agents[0].StateID)
	assert.Equal(t, "call-1", stacks[0].Agents[0].PendingToolCallID)
	assert.Equal(t, "specialist", stacks[0].Agents[1].ManifestID)
	assert.Equal(t, "child-run", stacks[0].Agents[1].StateID)
}

func TestBuildSuspensionStacks_DeeperNestingPrependsCurrentFrame(t *testing.T) {
	inner := SuspensionStack{
		Agents: []StackFrame{
			{ManifestID: "specialist", StateID: "specialist-run"},
			{ManifestID: "sub-specialist", StateID: "sub-run"},
		},
		LeafSuspension: ToolApprovalSuspension{ApprovalID: "A2", ToolName: "wire_transfer"},
	}
	branches := []SuspendedBranch{
		{
			ToolCallID:  "call-1",
			ChildStacks: []SuspensionStack{inner},
		},
	}

	stacks := BuildSuspensionStacks("parent", "v1", "parent-run", branches)

	require.Len(t, stacks, 1)
	assert.Equal(t, "A2", stacks[0].LeafSuspension.ApprovalID)
	require.Len(t, stacks[0].Agents, 3)
	assert.Equal(t, "parent", stacks[0].Agents[0].ManifestID)
	assert.Equal(t, "specialist", stacks[0].Agents[1].ManifestID)
	assert.Equal(t, "sub-specialist", stacks[0].Agents[2].ManifestID)
}

func TestBuildSuspensionStacks_MultipleSuspensionsOnOneBranch(t *testing.T) {
	branches := []SuspendedBranch{
		{
			ToolCallID:      "call-1",
			ChildStateID:    "child-run",
			ChildManifestID: "specialist",
			Suspensions: []ToolApprovalSuspension{
				{ApprovalID: "A1"},
				{ApprovalID: "A2"},
			},
		},
	}

	stacks := BuildSuspensionStacks("parent", "v1", "parent-run", branches)

	require.Len(t, stacks, 2)
	assert.Equal(t, "A1", stacks[0].LeafSuspension.ApprovalID)
	assert.Equal(t, "A2", stacks[1].LeafSuspension.ApprovalID)
}

func TestBuildSuspensionStacks_NoBranchesReturnsNil(t *testing.T) {
	stacks := BuildSuspensionStacks("parent", "v1", "parent-run", nil)
	assert.Nil(t, stacks)
}
