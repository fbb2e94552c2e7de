// Package gatewayadapter implements executor.CompletionsGateway on top of
// pkg/llm.Provider, the teacher's own multi-provider LLM gateway. It
// translates executor.CompletionRequest into a *responses.Request and
// replays the provider's chan *responses.ResponseChunk as
// executor.StreamPart values.
//
// Grounded on pkg/gateway/providers/gemini/gemini_responses's
// MessagesToNativeMessages/ToNativeMessage (message-to-InputMessageUnion
// conversion) and pkg/llm/llm_provider.go's Provider interface. The
// human-in-the-loop approval gate is not modeled here: approval-request
// stream parts are synthesized by Executor.StepStreamer from the manifest's
// HumanInTheLoop policy, since none of the pack's providers surface a
// native "requires approval" chunk type.
package gatewayadapter

import (
	"context"
	"fmt"

	"github.com/curaious/uno/pkg/llm"
	"github.com/curaious/uno/pkg/llm/constants"
	"github.com/curaious/uno/pkg/llm/responses"

	"github.com/curaious/uno/pkg/agent-framework/executor"
)

func ptr[T any](v T) *T { return &v }

// Gateway implements executor.CompletionsGateway by dispatching to one of
// several underlying llm.Provider instances, keyed by provider name.
//
// Grounded on internal/adapters.InternalLLMGateway's providerName-keyed
// dispatch, generalized here to a plain map rather than a registry service
// since the executor package has no HTTP-facing configuration to serve.
type Gateway struct {
	Providers map[llm.ProviderName]llm.Provider
}

// NewGateway builds a Gateway over the given provider set.
func NewGateway(providers map[llm.ProviderName]llm.Provider) *Gateway {
	return &Gateway{Providers: providers}
}

// StreamCompletion implements executor.CompletionsGateway.
func (g *Gateway) StreamCompletion(ctx context.Context, req executor.CompletionRequest) (<-chan executor.Result[executor.StreamPart], error) {
	providerName := llm.ProviderName(req.Provider.Name)
	provider, ok := g.Providers[providerName]
	if !ok {
		return nil, executor.NewProviderError(fmt.Sprintf("no provider wired for %q", req.Provider.Name), nil)
	}

	nativeReq := toNativeRequest(req)

	chunks, err := provider.NewStreamingResponses(ctx, nativeReq)
	if err != nil {
		return nil, executor.NewProviderError("failed to open streaming completion", err)
	}

	out := make(chan executor.Result[executor.StreamPart])
	go func() {
		defer close(out)
		for chunk := range chunks {
			part, matched := fromChunk(chunk)
			if !matched {
				continue
			}
			select {
			case out <- executor.Ok(part):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, nil
}

// toNativeRequest translates a CompletionRequest into the wire-level
// *responses.Request the provider clients expect. System messages are
// folded into Instructions; every other message becomes one or more entries
// in an InputMessageList, mirroring gemini_responses.Content.ToNativeMessage's
// per-part expansion of text, function-call and function-call-output
// content into distinct InputMessageUnion entries.
func toNativeRequest(req executor.CompletionRequest) *responses.Request {
	var instructions string
	items := responses.InputMessageList{}

	for _, msg := range req.Messages {
		switch msg.Role {
		case executor.RoleSystem:
			if instructions != "" {
				instructions += "\n\n"
			}
			instructions += msg.Text

		case executor.RoleUser, executor.RoleAssistant:
			if msg.Text != "" {
				items = append(items, responses.InputMessageUnion{
					OfInputMessage: &responses.InputMessage{
						Role: nativeRole(msg.Role),
						Content: responses.InputContent{
							{OfInputText: &responses.InputTextContent{Type: "input_text", Text: msg.Text}},
						},
					},
				})
			}
			for _, tc := range msg.ToolCalls {
				items = append(items, responses.InputMessageUnion{
					OfFunctionCall: &responses.FunctionCallMessage{
						CallID:    tc.ID,
						Name:      tc.Name,
						Arguments: tc.Arguments,
					},
				})
			}

		case executor.RoleTool:
			items = append(items, responses.InputMessageUnion{
				OfFunctionCallOutput: &responses.FunctionCallOutputMessage{
					CallID: msg.ToolCallID,
					Output: responses.FunctionCallOutputContentUnion{
						OfString: ptr(msg.Text),
					},
				},
			})
		}
	}

	nativeReq := &responses.Request{
		Model: req.Provider.Model,
		Input: responses.InputUnion{OfInputMessageList: items},
	}
	if instructions != "" {
		nativeReq.Instructions = ptr(instructions)
	}

	if len(req.ToolDefs) > 0 {
		tools := make([]responses.ToolUnion, 0, len(req.ToolDefs))
		for _, def := range req.ToolDefs {
			tools = append(tools, responses.ToolUnion{
				OfFunction: &responses.FunctionTool{
					Type:        "function",
					Name:        def.Name,
					Description: ptr(def.Description),
					Parameters:  def.Parameters,
				},
			})
		}
		nativeReq.Tools = tools
	}

	return nativeReq
}

func nativeRole(r executor.Role) constants.Role {
	switch r {
	case executor.RoleAssistant:
		return constants.RoleAssistant
	default:
		return constants.RoleUser
	}
}

// fromChunk converts one *responses.ResponseChunk into a StreamPart.
// matched reports whether the chunk type carries a StreamPart at all (many
// chunk types — content-part markers, reasoning deltas, image-generation
// progress — have no executor-level representation and are dropped).
func fromChunk(chunk *responses.ResponseChunk) (part executor.StreamPart, matched bool) {
	switch {
	case chunk.OfOutputTextDelta != nil:
		return executor.StreamPart{
			Type:      executor.StreamPartTextDelta,
			TextDelta: chunk.OfOutputTextDelta.Delta,
		}, true

	case chunk.OfOutputItemDone != nil && chunk.OfOutputItemDone.Item.Type == "function_call":
		item := chunk.OfOutputItemDone.Item
		call := executor.ToolCall{}
		if item.CallID != nil {
			call.ID = *item.CallID
		}
		if item.Name != nil {
			call.Name = *item.Name
		}
		if item.Arguments != nil {
			call.Arguments = *item.Arguments
		}
		return executor.StreamPart{Type: executor.StreamPartToolCall, ToolCall: call}, true

	case chunk.OfResponseCompleted != nil:
		data := chunk.OfResponseCompleted.Response
		return executor.StreamPart{
			Type:         executor.StreamPartFinishStep,
			FinishReason: finishReasonFor(data.Status),
			Usage: executor.Usage{
				InputTokens:  data.Usage.InputTokens,
				OutputTokens: data.Usage.OutputTokens,
				TotalTokens:  data.Usage.TotalTokens,
			},
		}, true

	default:
		return executor.StreamPart{}, false
	}
}

func finishReasonFor(status string) executor.FinishReason {
	switch status {
	case "incomplete":
		return executor.FinishLength
	case "failed":
		return executor.FinishError
	default:
		return executor.FinishStop
	}
}
