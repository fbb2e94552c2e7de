package executor

import (
	"context"
	"sync"
	"sync/atomic"
)

// scriptedGateway is a CompletionsGateway whose StreamCompletion calls
// replay one canned []StreamPart per invocation, in order. Grounded on the
// teacher's own table-driven fake-transport style (stretchr/testify mock
// expectations set up per test case) rendered here as a plain struct since
// the gateway contract is a single method.
type scriptedGateway struct {
	mu      sync.Mutex
	scripts [][]StreamPart
	calls   int
}

func (g *scriptedGateway) StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Result[StreamPart], error) {
	g.mu.Lock()
	idx := g.calls
	g.calls++
	g.mu.Unlock()

	var script []StreamPart
	if idx < len(g.scripts) {
		script = g.scripts[idx]
	}

	out := make(chan Result[StreamPart], len(script))
	for _, p := range script {
		out <- Ok(p)
	}
	close(out)
	return out, nil
}

// textThenStop builds a single-step script: a text delta followed by a
// finish-step part with FinishStop.
func textThenStop(text string) []StreamPart {
	return []StreamPart{
		{Type: StreamPartTextDelta, TextDelta: text},
		{Type: StreamPartFinishStep, FinishReason: FinishStop},
	}
}

// toolCallThenStop builds a single-step script requesting one tool call.
func toolCallThenStop(call ToolCall) []StreamPart {
	return []StreamPart{
		{Type: StreamPartToolCall, ToolCall: call},
		{Type: StreamPartFinishStep, FinishReason: FinishToolCalls},
	}
}

// fakeTool is a ToolExecutor that either succeeds immediately with a fixed
// value, errors, or suspends as a sub-agent branch would.
type fakeTool struct {
	value     string
	err       error
	suspended *AgentToolResult
	executed  int32
}

func (t *fakeTool) Execute(ctx context.Context, call ToolCall, execCtx ToolExecContext) (<-chan Result[AgentEvent], <-chan AgentToolResult) {
	atomic.AddInt32(&t.executed, 1)
	evCh := make(chan Result[AgentEvent])
	resCh := make(chan AgentToolResult, 1)
	go func() {
		defer close(evCh)
		defer close(resCh)
		switch {
		case t.suspended != nil:
			resCh <- *t.suspended
		case t.err != nil:
			resCh <- AgentToolResult{Kind: ToolResultErrorKind, Err: t.err, ErrCode: ErrCodeTool.Code}
		default:
			resCh <- AgentToolResult{Kind: ToolResultSuccess, Value: t.value}
		}
	}()
	return evCh, resCh
}

// drainEvents reads every AgentEvent off ch until it closes.
func drainEvents(ch <-chan AgentEvent) []AgentEvent {
	var out []AgentEvent
	for ev := range ch {
		out = append(out, ev)
	}
	return out
}

func lastResult(events []AgentEvent) *AgentRunResult {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Result != nil {
			return events[i].Result
		}
	}
	return nil
}
