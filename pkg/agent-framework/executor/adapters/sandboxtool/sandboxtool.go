// Package sandboxtool adapts a per-run sandbox pod into an
// executor.ToolExecutor that runs arbitrary bash commands, via
// github.com/curaious/uno/pkg/sandbox's Manager/Client pair.
//
// Grounded directly on tools.SandboxTool.Execute: CreateSandbox then POST to
// the sandbox daemon's /exec/bash endpoint. Rewritten against pkg/sandbox's
// own Client.RunBashCommand (the teacher's tools.SandboxTool rolled its own
// http.Post+sonic round trip inline; the sandbox package now exposes that as
// a typed client method) and against executor.ToolExecutor's lazy-sequence
// contract instead of core.Tool's single Execute/Tool pair. This is the one
// place in the module that exercises pkg/sandbox's Kubernetes-backed
// implementation (k8s.io/client-go et al.) as a real tool a manifest can
// declare, rather than leaving that dependency unwired.
package sandboxtool

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"

	"github.com/curaious/uno/pkg/agent-framework/executor"
	"github.com/curaious/uno/pkg/sandbox"
)

// Tool runs bash commands inside the session's sandbox pod, creating it on
// first use if it does not already exist.
type Tool struct {
	Manager sandbox.Manager
	Image   string
}

// New wires a Tool against a sandbox.Manager (the one k8s_sandbox.NewManager
// returns in production, a fake in tests) and the container image sandboxes
// should run.
func New(manager sandbox.Manager, image string) *Tool {
	return &Tool{Manager: manager, Image: image}
}

type execArgs struct {
	Code string `json:"code"`
}

// Execute implements executor.ToolExecutor. call.Arguments must decode to
// {"code": "<bash command>"}.
func (t *Tool) Execute(ctx context.Context, call executor.ToolCall, execCtx executor.ToolExecContext) (<-chan executor.Result[executor.AgentEvent], <-chan executor.AgentToolResult) {
	evCh := make(chan executor.Result[executor.AgentEvent])
	resCh := make(chan executor.AgentToolResult, 1)

	go func() {
		defer close(evCh)
		defer close(resCh)

		var args execArgs
		if err := sonic.Unmarshal([]byte(call.Arguments), &args); err != nil {
			resCh <- executor.AgentToolResult{Kind: executor.ToolResultErrorKind, Err: err, ErrCode: executor.ErrCodeValidation.Code}
			return
		}

		handle, err := t.Manager.CreateSandbox(ctx, t.Image, execCtx.ManifestID, "", execCtx.StateID)
		if err != nil {
			resCh <- executor.AgentToolResult{Kind: executor.ToolResultErrorKind, Err: fmt.Errorf("sandboxtool: create sandbox: %w", err), ErrCode: executor.ErrCodeTool.Code, Retryable: true}
			return
		}

		client := sandbox.NewClient(handle)
		result, err := client.RunBashCommand(ctx, args.Code, nil, "", 0)
		if err != nil {
			resCh <- executor.AgentToolResult{Kind: executor.ToolResultErrorKind, Err: fmt.Errorf("sandboxtool: exec: %w", err), ErrCode: executor.ErrCodeTool.Code, Retryable: true}
			return
		}

		out, err := sonic.Marshal(result)
		if err != nil {
			resCh <- executor.AgentToolResult{Kind: executor.ToolResultErrorKind, Err: err, ErrCode: executor.ErrCodeInternal.Code}
			return
		}
		resCh <- executor.AgentToolResult{Kind: executor.ToolResultSuccess, Value: string(out)}
	}()

	return evCh, resCh
}
