package cmd

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/spf13/cobra"

	"github.com/curaious/uno/pkg/agent-framework/executor"
	"github.com/curaious/uno/pkg/agent-framework/executor/adapters/gatewayadapter"
	"github.com/curaious/uno/pkg/agent-framework/executor/runtime/localruntime"
	"github.com/curaious/uno/pkg/llm"
	"github.com/curaious/uno/pkg/llm/chat_completion"
	"github.com/curaious/uno/pkg/llm/constants"
	"github.com/curaious/uno/pkg/llm/embeddings"
	"github.com/curaious/uno/pkg/llm/responses"
)

// agentRunCmd drives one manifest through Executor.Orchestrator end to end,
// the single reachable demonstration path spec.md's runtime-packaging
// section calls for: LocalRuntime over an in-memory StateCache/RunLock,
// fronted by gatewayadapter.Gateway against a scripted in-process Provider
// so the command needs no network access or API key to run.
var agentRunCmd = &cobra.Command{
	Use:   "agent-run",
	Short: "Drive a demo agent manifest through the executor's Orchestrator end to end",
	Run: func(cmd *cobra.Command, args []string) {
		prompt, _ := cmd.Flags().GetString("prompt")
		if prompt == "" {
			prompt = "say hello and then shout it"
		}
		if err := runDemoAgent(prompt); err != nil {
			log.Fatalln(err.Error())
		}
	},
}

func init() {
	agentRunCmd.Flags().String("prompt", "", "user prompt to send the demo agent")
	rootCmd.AddCommand(agentRunCmd)
}

func runDemoAgent(prompt string) error {
	manifest := &executor.AgentManifest{
		ID:      "demo-agent",
		Version: "v1",
		Provider: executor.ProviderSettings{
			Name:  string(llm.ProviderNameOpenAI),
			Model: "demo-echo",
		},
		Instructions: "You are a terse demo assistant that shouts things back.",
		Tools:        []string{"shout"},
		OnTextOnly:   executor.OnTextOnlyStop,
		Hooks: executor.Hooks{
			ToolExecutors: map[string]executor.ToolExecutor{
				"shout": &shoutTool{},
			},
		},
	}

	manifests, err := executor.NewManifestSet(manifest)
	if err != nil {
		return fmt.Errorf("agent-run: build manifest set: %w", err)
	}

	gateway := gatewayadapter.NewGateway(map[llm.ProviderName]llm.Provider{
		llm.ProviderNameOpenAI: &scriptedProvider{},
	})

	runtime := localruntime.New(manifests, gateway)

	events := runtime.Execute(context.Background(), executor.AgentInput{
		Kind:            executor.InputRequest,
		ManifestID:      manifest.ID,
		ManifestVersion: manifest.Version,
		Prompt:          []executor.Message{{Role: executor.RoleUser, Text: prompt}},
	})

	for ev := range events {
		printEvent(ev)
	}
	return nil
}

func printEvent(ev executor.AgentEvent) {
	switch ev.Type {
	case executor.EventTextDelta:
		fmt.Print(ev.TextDelta)
	case executor.EventToolCall:
		fmt.Printf("\n[tool-call] %s(%s)\n", ev.ToolCall.Name, ev.ToolCall.Arguments)
	case executor.EventToolResult:
		fmt.Printf("[tool-result] %s -> %s\n", ev.ToolResult.ToolName, ev.ToolResult.Output)
	case executor.EventAgentDone, executor.EventAgentSuspended, executor.EventAgentCancelled, executor.EventAgentError:
		fmt.Printf("\n[%s] run %s\n", ev.Type, ev.StateID)
		if ev.Result != nil {
			fmt.Printf("  kind=%s\n", ev.Result.Kind)
			for _, msg := range ev.Result.Output {
				fmt.Printf("  output: %s\n", msg.Text)
			}
		}
	}
}

// shoutTool implements executor.ToolExecutor by uppercasing its {"text":
// "..."} argument, giving the demo run a tool-call round trip to exercise
// alongside the streamed text.
type shoutTool struct{}

type shoutArgs struct {
	Text string `json:"text"`
}

func (t *shoutTool) Execute(ctx context.Context, call executor.ToolCall, execCtx executor.ToolExecContext) (<-chan executor.Result[executor.AgentEvent], <-chan executor.AgentToolResult) {
	evCh := make(chan executor.Result[executor.AgentEvent])
	resCh := make(chan executor.AgentToolResult, 1)

	go func() {
		defer close(evCh)
		defer close(resCh)

		var args shoutArgs
		if err := sonic.Unmarshal([]byte(call.Arguments), &args); err != nil {
			resCh <- executor.AgentToolResult{Kind: executor.ToolResultErrorKind, Err: err, ErrCode: executor.ErrCodeValidation.Code}
			return
		}
		resCh <- executor.AgentToolResult{Kind: executor.ToolResultSuccess, Value: strings.ToUpper(args.Text) + "!"}
	}()

	return evCh, resCh
}

// scriptedProvider implements llm.Provider with a fixed two-turn script: the
// first call always asks to call "shout" with the caller's last user
// message; once it sees a function-call-output for that call already in the
// request's input list, it replies with text and ends the run. No network
// access, no API key — deterministic so the demo always produces the same
// transcript.
type scriptedProvider struct{}

func (p *scriptedProvider) NewStreamingResponses(ctx context.Context, in *responses.Request) (chan *responses.ResponseChunk, error) {
	out := make(chan *responses.ResponseChunk, 4)

	shoutOutput, userText := scanScriptedInput(in)

	go func() {
		defer close(out)
		if shoutOutput == "" {
			callID := "call-1"
			name := "shout"
			argsJSON, _ := sonic.Marshal(shoutArgs{Text: userText})
			arguments := string(argsJSON)
			out <- &responses.ResponseChunk{
				OfOutputItemDone: &responses.ChunkOutputItem[constants.ChunkTypeOutputItemDone]{
					Item: responses.ChunkOutputItemData{
						Type:      "function_call",
						CallID:    &callID,
						Name:      &name,
						Arguments: &arguments,
					},
				},
			}
			out <- &responses.ResponseChunk{
				OfResponseCompleted: &responses.ChunkResponse[constants.ChunkTypeResponseCompleted]{
					Response: responses.ChunkResponseData{Status: "completed"},
				},
			}
			return
		}

		for _, r := range []rune("demo agent heard: " + shoutOutput) {
			out <- &responses.ResponseChunk{
				OfOutputTextDelta: &responses.ChunkOutputText[constants.ChunkTypeOutputTextDelta]{
					Delta: string(r),
				},
			}
		}
		out <- &responses.ResponseChunk{
			OfResponseCompleted: &responses.ChunkResponse[constants.ChunkTypeResponseCompleted]{
				Response: responses.ChunkResponseData{Status: "completed"},
			},
		}
	}()

	return out, nil
}

func (p *scriptedProvider) NewResponses(ctx context.Context, in *responses.Request) (*responses.Response, error) {
	return nil, fmt.Errorf("scriptedProvider: non-streaming responses not implemented by the demo")
}

func (p *scriptedProvider) NewEmbedding(ctx context.Context, in *embeddings.Request) (*embeddings.Response, error) {
	return nil, fmt.Errorf("scriptedProvider: embeddings not implemented by the demo")
}

func (p *scriptedProvider) NewChatCompletion(ctx context.Context, in *chat_completion.Request) (*chat_completion.Response, error) {
	return nil, fmt.Errorf("scriptedProvider: chat completion not implemented by the demo")
}

// scanScriptedInput walks in's input list looking for a function-call-output
// answering the "shout" call and the most recent plain user text.
func scanScriptedInput(in *responses.Request) (shoutOutput, userText string) {
	items := in.Input.OfInputMessageList
	for _, item := range items {
		if item.OfInputMessage != nil {
			for _, part := range item.OfInputMessage.Content {
				if part.OfInputText != nil {
					userText = part.OfInputText.Text
				}
			}
		}
		if item.OfFunctionCallOutput != nil && item.OfFunctionCallOutput.Output.OfString != nil {
			shoutOutput = *item.OfFunctionCallOutput.Output.OfString
		}
	}
	return shoutOutput, userText
}
