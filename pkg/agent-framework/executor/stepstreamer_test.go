package executor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStreamer_AccumulatesTextAndFinishReason(t *testing.T) {
	gw := &scriptedGateway{scripts: [][]StreamPart{textThenStop("hello world")}}
	streamer := &StepStreamer{Gateway: gw}
	manifest := &AgentManifest{ID: "assistant", Version: "v1", Streaming: StreamingConfig{}}
	events := make(chan AgentEvent, 8)

	agg, err := streamer.Stream(context.Background(), manifest, nil, nil, 1, "", events)
	close(events)

	require.NoError(t, err)
	assert.Equal(t, "hello world", agg.Text)
	assert.Equal(t, FinishStop, agg.FinishReason)
	assert.Empty(t, agg.ApprovalRequests)
}

func TestStepStreamer_GatesApprovalForPolicyMatchedTool(t *testing.T) {
	gw := &scriptedGateway{scripts: [][]StreamPart{
		toolCallThenStop(ToolCall{ID: "c1", Name: "delete_file", Arguments: `{}`}),
	}}
	streamer := &StepStreamer{Gateway: gw}
	manifest := &AgentManifest{
		ID:      "assistant",
		Version: "v1",
		Tools:   []string{"delete_file"},
		HumanInTheLoop: HumanInTheLoop{
			AlwaysRequireApproval: []string{"delete_file"},
		},
	}
	events := make(chan AgentEvent, 8)

	agg, err := streamer.Stream(context.Background(), manifest, nil, nil, 1, "", events)
	close(events)

	require.NoError(t, err)
	require.Len(t, agg.ApprovalRequests, 1)
	assert.Equal(t, "delete_file", agg.ApprovalRequests[0].ToolName)
	assert.Equal(t, "c1", agg.ApprovalRequests[0].ToolCallID)
	assert.NotEmpty(t, agg.ApprovalRequests[0].ApprovalID)
}

func TestStepStreamer_UngatedToolRaisesNoApproval(t *testing.T) {
	gw := &scriptedGateway{scripts: [][]StreamPart{
		toolCallThenStop(ToolCall{ID: "c1", Name: "read_file", Arguments: `{}`}),
	}}
	streamer := &StepStreamer{Gateway: gw}
	manifest := &AgentManifest{ID: "assistant", Version: "v1", Tools: []string{"read_file"}}
	events := make(chan AgentEvent, 8)

	agg, err := streamer.Stream(context.Background(), manifest, nil, nil, 1, "", events)
	close(events)

	require.NoError(t, err)
	assert.Empty(t, agg.ApprovalRequests)
	require.Len(t, agg.ToolCalls, 1)
}

func TestStepStreamer_ProviderErrorAbortsAggregation(t *testing.T) {
	gw := &erroringGateway{err: assert.AnError}
	streamer := &StepStreamer{Gateway: gw}
	manifest := &AgentManifest{ID: "assistant", Version: "v1"}
	events := make(chan AgentEvent, 8)

	agg, err := streamer.Stream(context.Background(), manifest, nil, nil, 1, "", events)
	close(events)

	assert.Error(t, err)
	assert.Nil(t, agg)
}

// erroringGateway streams a single error Result before closing.
type erroringGateway struct{ err error }

func (g *erroringGateway) StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Result[StreamPart], error) {
	out := make(chan Result[StreamPart], 1)
	out <- Fail[StreamPart](g.err)
	close(out)
	return out, nil
}
