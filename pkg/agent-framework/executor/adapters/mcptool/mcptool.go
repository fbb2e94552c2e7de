// Package mcptool adapts an MCP server's tools into executor.ToolExecutor,
// via github.com/mark3labs/mcp-go.
//
// Grounded directly on tools.McpTool/NewMcpTool/MCPServer.GetTools: the
// client.Initialize-then-ListTools handshake, sonic round-tripping the raw
// JSON-schema input schema, and CallTool/mcp.TextContent result handling.
// The teacher's own pkg/agent-framework/mcpclient package (referenced from
// agents/helper.go as the concrete transport behind MCPServer.Client) was
// not present in the retrieved pack, so this adapter talks to
// mark3labs/mcp-go's client package directly rather than through that
// missing indirection.
package mcptool

import (
	"context"
	"errors"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/mark3labs/mcp-go/client"
	"github.com/mark3labs/mcp-go/mcp"

	"github.com/curaious/uno/pkg/agent-framework/executor"
)

// Server wraps one initialized MCP client connection and the tools it
// advertises.
type Server struct {
	Client *client.Client
	Tools  []mcp.Tool
	Meta   *mcp.Meta
}

// Connect starts cli, performs the initialize/list-tools handshake, and
// returns the resulting Server.
func Connect(ctx context.Context, cli *client.Client, headers map[string]any) (*Server, error) {
	if err := cli.Start(ctx); err != nil {
		return nil, fmt.Errorf("mcptool: start: %w", err)
	}
	if _, err := cli.Initialize(ctx, mcp.InitializeRequest{Request: mcp.Request{}, Params: mcp.InitializeParams{}}); err != nil {
		return nil, fmt.Errorf("mcptool: initialize: %w", err)
	}
	tools, err := cli.ListTools(ctx, mcp.ListToolsRequest{})
	if err != nil {
		return nil, fmt.Errorf("mcptool: list tools: %w", err)
	}
	return &Server{
		Client: cli,
		Tools:  tools.Tools,
		Meta:   &mcp.Meta{AdditionalFields: headers},
	}, nil
}

// ToolDefs converts the server's advertised tools into executor.ToolDef,
// filtered by allow, if non-empty.
func (s *Server) ToolDefs(allow ...string) []executor.ToolDef {
	defs := make([]executor.ToolDef, 0, len(s.Tools))
	for _, t := range s.Tools {
		if len(allow) > 0 && !contains(allow, t.Name) {
			continue
		}
		defs = append(defs, executor.ToolDef{
			Name:        t.Name,
			Description: t.Description,
			Parameters:  decodeInputSchema(t),
		})
	}
	return defs
}

// ToolExecutors returns one executor.ToolExecutor per advertised tool,
// filtered by allow, if non-empty.
func (s *Server) ToolExecutors(allow ...string) map[string]executor.ToolExecutor {
	out := map[string]executor.ToolExecutor{}
	for _, t := range s.Tools {
		if len(allow) > 0 && !contains(allow, t.Name) {
			continue
		}
		out[t.Name] = &Tool{server: s, name: t.Name}
	}
	return out
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func decodeInputSchema(t mcp.Tool) map[string]any {
	schema := map[string]any{"type": "object", "properties": map[string]any{}}
	raw, err := sonic.Marshal(t.InputSchema)
	if err != nil {
		return schema
	}
	_ = sonic.Unmarshal(raw, &schema)
	return schema
}

// Tool implements executor.ToolExecutor for one MCP-advertised tool name.
type Tool struct {
	server *Server
	name   string
}

func (t *Tool) Execute(ctx context.Context, call executor.ToolCall, execCtx executor.ToolExecContext) (<-chan executor.Result[executor.AgentEvent], <-chan executor.AgentToolResult) {
	evCh := make(chan executor.Result[executor.AgentEvent])
	resCh := make(chan executor.AgentToolResult, 1)

	go func() {
		defer close(evCh)
		defer close(resCh)

		var args map[string]any
		if call.Arguments != "" {
			if err := sonic.Unmarshal([]byte(call.Arguments), &args); err != nil {
				resCh <- executor.AgentToolResult{Kind: executor.ToolResultErrorKind, Err: err, ErrCode: executor.ErrCodeValidation.Code}
				return
			}
		}

		res, err := t.server.Client.CallTool(ctx, mcp.CallToolRequest{
			Request: mcp.Request{},
			Params: mcp.CallToolParams{
				Name:      t.name,
				Arguments: args,
				Meta:      t.server.Meta,
			},
		})
		if err != nil {
			resCh <- executor.AgentToolResult{Kind: executor.ToolResultErrorKind, Err: err, ErrCode: executor.ErrCodeTool.Code, Retryable: true}
			return
		}

		for _, content := range res.Content {
			if text, ok := content.(mcp.TextContent); ok {
				resCh <- executor.AgentToolResult{Kind: executor.ToolResultSuccess, Value: text.Text}
				return
			}
		}

		resCh <- executor.AgentToolResult{Kind: executor.ToolResultErrorKind, Err: errors.New("mcptool: no text content in tool result"), ErrCode: executor.ErrCodeTool.Code}
	}()

	return evCh, resCh
}
