// Package executor implements the agent execution core: the unified step
// loop, parallel tool dispatch, the suspension-stack protocol for nested
// sub-agent approvals, and the run-lifecycle envelope that guards execution
// with a distributed lock, a cancellation signal, and transactional state
// snapshots.
package executor

import (
	"context"
	"time"
)

// Role is the sender of a Message.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// PartType discriminates the kind of content carried by a Part.
type PartType string

const (
	PartText  PartType = "text"
	PartImage PartType = "image"
	PartFile  PartType = "file"
)

// Part is one unit of message content. Binary parts carry either raw bytes
// (pre-persist, live in memory only) or a signed URL plus storage metadata
// (post-persist). A persisted AgentRunState must never contain raw bytes.
type Part struct {
	Type PartType `json:"type"`
	Text string   `json:"text,omitempty"`

	MediaType string `json:"media_type,omitempty"`

	// Pre-persist binary content. Cleared once offloaded to the blob store.
	Bytes []byte `json:"bytes,omitempty"`

	// Post-persist binary content.
	URL             string `json:"url,omitempty"`
	StorageFileID   string `json:"storage_file_id,omitempty"`
	StorageFilename string `json:"storage_filename,omitempty"`
}

// HasRawBytes reports whether this part still carries unpersisted binary
// content.
func (p Part) HasRawBytes() bool {
	return len(p.Bytes) > 0
}

// Message is an ordered conversation entry. Content is either a plain string
// (Text) or a structured Parts slice; exactly one should be set for a given
// message, mirroring the wire union in the provider-facing contract.
type Message struct {
	Role  Role   `json:"role"`
	Text  string `json:"text,omitempty"`
	Parts []Part `json:"parts,omitempty"`

	// ToolCallID correlates a RoleTool message to the FunctionCall that
	// produced it; ToolName records which tool emitted it.
	ToolCallID string `json:"tool_call_id,omitempty"`
	ToolName   string `json:"tool_name,omitempty"`

	// ToolCalls holds the tool calls an assistant message requested, if any.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`
}

// ToolCall is one invocation the LLM requested during a step.
type ToolCall struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolApprovalRequest is a stream part emitted by a provider when a tool call
// requires human approval before it can execute.
type ToolApprovalRequest struct {
	ApprovalID  string `json:"approval_id"`
	ToolCallID  string `json:"tool_call_id"`
	ToolName    string `json:"tool_name"`
	Arguments   string `json:"arguments"`
	Description string `json:"description"`
}

// FinishReason is the provider's reason for ending a step's stream.
type FinishReason string

const (
	FinishStop      FinishReason = "stop"
	FinishToolCalls FinishReason = "tool-calls"
	FinishLength    FinishReason = "length"
	FinishError     FinishReason = "error"
)

// Usage is token accounting for one step.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Add accumulates u2 into u.
func (u *Usage) Add(u2 Usage) {
	u.InputTokens += u2.InputTokens
	u.OutputTokens += u2.OutputTokens
	u.TotalTokens += u2.TotalTokens
}

// StreamPartType discriminates StreamPart, the provider-layer tagged union.
type StreamPartType string

const (
	StreamPartTextDelta     StreamPartType = "text-delta"
	StreamPartToolCall      StreamPartType = "tool-call"
	StreamPartApprovalAsk   StreamPartType = "tool-approval-request"
	StreamPartFinishStep    StreamPartType = "finish-step"
	StreamPartIgnored       StreamPartType = "ignored"
)

// StreamPart is one chunk of a streaming completion, as surfaced by
// CompletionsGateway.StreamCompletion.
type StreamPart struct {
	Type StreamPartType

	TextDelta string

	ToolCall ToolCall

	ApprovalRequest ToolApprovalRequest

	FinishReason FinishReason
	Usage        Usage
}

// EventType is one of the externally visible AgentEvent kinds.
type EventType string

const (
	// Configurable — filtered per-manifest by the manifest's StreamingConfig.
	EventToolCall   EventType = "tool-call"
	EventToolResult EventType = "tool-result"
	EventTextDelta  EventType = "text-delta"
	EventStepStart  EventType = "step-start"
	EventStepFinish EventType = "step-finish"

	// Lifecycle — always emitted, never filtered.
	EventAgentStarted   EventType = "agent-started"
	EventAgentDone      EventType = "agent-done"
	EventAgentSuspended EventType = "agent-suspended"
	EventAgentError     EventType = "agent-error"
	EventAgentCancelled EventType = "agent-cancelled"
)

// AgentEvent is one externally visible event on the run stream.
type AgentEvent struct {
	Type              EventType `json:"type"`
	ManifestID        string    `json:"manifest_id"`
	ParentManifestID  string    `json:"parent_manifest_id,omitempty"`
	Timestamp         time.Time `json:"timestamp"`
	StepNumber        int       `json:"step_number"`

	// Configurable event payloads.
	TextDelta  string      `json:"text_delta,omitempty"`
	ToolCall   *ToolCall   `json:"tool_call,omitempty"`
	ToolResult *ToolResult `json:"tool_result,omitempty"`

	// Lifecycle event payloads.
	StateID     string              `json:"state_id,omitempty"`
	Result      *AgentRunResult     `json:"result,omitempty"`
	Suspension  *ToolApprovalSuspension `json:"suspension,omitempty"`
	ErrorCode   string              `json:"error_code,omitempty"`
	ErrorMsg    string              `json:"error_message,omitempty"`
}

// ToolResult is the per-call outcome the LLM is fed back, either a success
// value or an error message; never a loop failure.
type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	ToolName   string `json:"tool_name"`
	Output     string `json:"output"`
	IsError    bool   `json:"is_error"`
}

// ToolApprovalSuspension records one pending human-in-the-loop approval gate.
type ToolApprovalSuspension struct {
	ApprovalID  string `json:"approval_id"`
	ToolCallID  string `json:"tool_call_id"`
	ToolName    string `json:"tool_name"`
	ToolArgs    string `json:"tool_args"`
	Description string `json:"description"`
}

// SuspendedBranch is one suspended sub-tool-call record produced by the Tool
// Dispatcher when a sub-agent tool suspends instead of completing.
type SuspendedBranch struct {
	ToolCallID        string                   `json:"tool_call_id"`
	ChildStateID      string                   `json:"child_state_id"`
	ChildManifestID   string                   `json:"child_manifest_id"`
	ChildManifestVersion string                `json:"child_manifest_version"`
	Suspensions       []ToolApprovalSuspension `json:"suspensions"`
	ChildStacks       []SuspensionStack        `json:"child_stacks,omitempty"`
}

// StackFrame is one ancestor in a SuspensionStack's agent chain.
type StackFrame struct {
	ManifestID        string `json:"manifest_id"`
	ManifestVersion   string `json:"manifest_version"`
	StateID           string `json:"state_id"`
	PendingToolCallID string `json:"pending_tool_call_id,omitempty"`
}

// SuspensionStack is an ordered ancestor chain from the root run down to one
// leaf suspension, used to route an approval response to the frame it
// applies to.
type SuspensionStack struct {
	Agents         []StackFrame           `json:"agents"`
	LeafSuspension ToolApprovalSuspension `json:"leaf_suspension"`
}

// RunStatus is the lifecycle status of an AgentRunState.
type RunStatus string

const (
	RunStatusRunning   RunStatus = "running"
	RunStatusCompleted RunStatus = "completed"
	RunStatusSuspended RunStatus = "suspended"
	RunStatusCancelled RunStatus = "cancelled"
	RunStatusFailed    RunStatus = "failed"
)

// Context carries per-run cancellation signalling and identifiers across the
// step loop. It embeds a context.Context and adds Abort(), a non-blocking
// check of whether that context has been cancelled.
type Context struct {
	context.Context
	RunID      string
	StateID    string
	ParentCtx  map[string]any
}

// Abort reports whether the run's context has been cancelled.
func (c *Context) Abort() bool {
	if c.Context == nil {
		return false
	}
	select {
	case <-c.Context.Done():
		return true
	default:
		return false
	}
}
