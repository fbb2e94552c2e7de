package executor

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var stepTracer = otel.Tracer("Executor.StepStreamer")

// StepAggregate is the terminal value of one streamed step: the accumulated
// text, tool calls, approval requests, finish reason and usage, regardless
// of which of those were forwarded as events.
type StepAggregate struct {
	Text             string
	ToolCalls        []ToolCall
	ApprovalRequests []ToolApprovalRequest
	FinishReason     FinishReason
	Usage            Usage
}

// StepStreamOverrides lets an onStepStart hook replace the messages fed to
// this step only, or constrain tool choice/active tools.
type StepStreamOverrides struct {
	Messages    []Message
	ToolChoice  string
	ActiveTools []string
}

// StepStreamer drives one LLM step (§4.1): it opens a streaming completion,
// forwards filtered events, accumulates text/tool-calls/approval-requests/
// usage/finish-reason, and returns the aggregate.
//
// Grounded on pkg/agent-framework/agents.Accumulator.ReadStream: that method
// ranges over a chan *responses.ResponseChunk, forwards every chunk to the
// caller's callback, and accumulates message/reasoning/function-call/
// image-generation output items into a *responses.Response. StepStreamer
// generalizes the same shape to the provider-agnostic StreamPart union and
// makes forwarding conditional on the manifest's allowed event-type set,
// which the teacher's unconditional `cb(chunk)` does not do.
type StepStreamer struct {
	Gateway CompletionsGateway
}

// Stream executes one step, forwarding the events the manifest allows on
// events as they arrive, and returns the terminal aggregate once the
// gateway's stream has ended, or the first provider error. It never closes
// events.
func (s *StepStreamer) Stream(
	ctx context.Context,
	manifest *AgentManifest,
	messages []Message,
	overrides *StepStreamOverrides,
	stepNumber int,
	parentManifestID string,
	events chan<- AgentEvent,
) (*StepAggregate, error) {
	ctx, span := stepTracer.Start(ctx, "Executor.StepStreamer.Stream")
	defer span.End()
	span.SetAttributes(
		attribute.String("agent.manifest_id", manifest.ID),
		attribute.Int("agent.step_number", stepNumber),
	)

	req := CompletionRequest{
		Provider: manifest.Provider,
		Messages: messages,
		StopWhen: []StopCondition{{StepCount: 1}},
	}
	toolDefs := make([]ToolDef, 0, len(manifest.Tools))
	for _, name := range manifest.Tools {
		toolDefs = append(toolDefs, ToolDef{Name: name})
	}
	req.ToolDefs = toolDefs

	if overrides != nil {
		if overrides.Messages != nil {
			req.Messages = overrides.Messages
		}
		req.ToolChoice = overrides.ToolChoice
		req.ActiveTools = overrides.ActiveTools
	}

	stream, err := s.Gateway.StreamCompletion(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	agg := &StepAggregate{}
	now := time.Now

	for res := range stream {
		if res.Err != nil {
			// On first provider error, return that error as the terminal
			// value — no partial success (§4.1 step 3).
			span.RecordError(res.Err)
			return nil, res.Err
		}
		part := res.Value

		switch part.Type {
		case StreamPartTextDelta:
			agg.Text += part.TextDelta
			if manifest.Streaming.Allows(EventTextDelta) {
				events <- AgentEvent{
					Type:             EventTextDelta,
					ManifestID:       manifest.ID,
					ParentManifestID: parentManifestID,
					Timestamp:        now(),
					StepNumber:       stepNumber,
					TextDelta:        part.TextDelta,
				}
			}

		case StreamPartToolCall:
			call := part.ToolCall
			agg.ToolCalls = append(agg.ToolCalls, call)
			if manifest.Streaming.Allows(EventToolCall) {
				events <- AgentEvent{
					Type:             EventToolCall,
					ManifestID:       manifest.ID,
					ParentManifestID: parentManifestID,
					Timestamp:        now(),
					StepNumber:       stepNumber,
					ToolCall:         &call,
				}
			}

		case StreamPartApprovalAsk:
			agg.ApprovalRequests = append(agg.ApprovalRequests, part.ApprovalRequest)

		case StreamPartFinishStep:
			agg.FinishReason = part.FinishReason
			agg.Usage = part.Usage
		}
	}

	// A gateway that natively flags approval-required calls populates
	// agg.ApprovalRequests via StreamPartApprovalAsk; on top of that, the
	// manifest's human-in-the-loop policy is applied to every tool call this
	// step requested (our completions gateways never flag approvals natively).
	agg.ApprovalRequests = append(agg.ApprovalRequests, approvalsFor(manifest, agg.ToolCalls)...)

	return agg, nil
}

// approvalsFor returns a ToolApprovalRequest for every call in calls whose
// tool name the manifest's human-in-the-loop policy gates.
func approvalsFor(manifest *AgentManifest, calls []ToolCall) []ToolApprovalRequest {
	var reqs []ToolApprovalRequest
	for _, call := range calls {
		if !manifest.HumanInTheLoop.NeedsApproval(call.Name) {
			continue
		}
		reqs = append(reqs, ToolApprovalRequest{
			ApprovalID: uuid.NewString(),
			ToolCallID: call.ID,
			ToolName:   call.Name,
			Arguments:  call.Arguments,
		})
	}
	return reqs
}
