package executor

import (
	"context"
	"time"
)

// Result is a generic success-or-error value, used for the lazy sequences
// the provider and tool layers hand back (§9 "lazy event streams with
// terminal return"). Implemented here as a struct rather than a channel-of-
// interfaces so producers can range over a typed channel without a type
// switch at every receive.
type Result[T any] struct {
	Value T
	Err   error
}

// Ok wraps a value as a successful Result.
func Ok[T any](v T) Result[T] { return Result[T]{Value: v} }

// Fail wraps an error as a failed Result.
func Fail[T any](err error) Result[T] { return Result[T]{Err: err} }

// CompletionsGateway is the streaming-LLM collaborator. Implementations must
// honor ctx cancellation.
type CompletionsGateway interface {
	StreamCompletion(ctx context.Context, req CompletionRequest) (<-chan Result[StreamPart], error)
}

// CompletionRequest is the input to one StreamCompletion call.
type CompletionRequest struct {
	Provider    ProviderSettings
	Messages    []Message
	ToolDefs    []ToolDef
	StopWhen    []StopCondition
	ToolChoice  string
	ActiveTools []string
}

// ToolDef is the wire-facing description of one callable tool.
type ToolDef struct {
	Name        string
	Description string
	Parameters  map[string]any
}

// AgentToolResultKind discriminates AgentToolResult's union.
type AgentToolResultKind string

const (
	ToolResultSuccess   AgentToolResultKind = "success"
	ToolResultErrorKind AgentToolResultKind = "error"
	ToolResultSuspended AgentToolResultKind = "suspended"
)

// AgentToolResult is the terminal value a ToolExecutor's lazy event sequence
// ends with.
type AgentToolResult struct {
	Kind AgentToolResultKind

	// Success
	Value string

	// Error — tool errors never fail the loop; they become LLM-visible
	// tool-result parts.
	Err       error
	ErrCode   string
	Retryable bool

	// Suspended — a sub-agent tool call suspended instead of completing.
	ChildRunID          string
	ChildManifestID     string
	ChildManifestVersion string
	Suspensions         []ToolApprovalSuspension
	ChildStacks         []SuspensionStack
}

// ToolExecContext is the execution context passed to a ToolExecutor.
type ToolExecContext struct {
	RunCtx           *Context
	Messages         []Message
	StepNumber       int
	ManifestID       string
	ParentManifestID string
	StateID          string
}

// ToolExecutor is the tool-invocation collaborator. It returns a lazy
// sequence of events terminated by an AgentToolResult.
type ToolExecutor interface {
	Execute(ctx context.Context, call ToolCall, execCtx ToolExecContext) (<-chan Result[AgentEvent], <-chan AgentToolResult)
}

// AgentStateCache is the key-value state-cache collaborator.
type AgentStateCache interface {
	Get(ctx context.Context, id string) (*AgentRunState, bool, error)
	Set(ctx context.Context, id string, state *AgentRunState, ttl time.Duration) error
	Del(ctx context.Context, id string) error
}

// LockHandle is returned by AgentRunLock.Acquire; Release is idempotent and
// best-effort.
type LockHandle interface {
	Release(ctx context.Context) error
}

// AgentRunLock is the distributed named-lock collaborator. Acquire returns a
// nil handle (not an error) when the lock is already held by someone else.
type AgentRunLock interface {
	Acquire(ctx context.Context, id string) (LockHandle, error)
}

// AgentCancellationCache is the cancellation-signal collaborator. Presence
// of a key signifies "cancel requested."
type AgentCancellationCache interface {
	Get(ctx context.Context, id string) (bool, error)
	Set(ctx context.Context, id string) error
	Del(ctx context.Context, id string) error
}

// StorageService is the blob-store collaborator for binary message content.
type StorageService interface {
	UploadStream(ctx context.Context, folder string, payload BlobPayload) error
	GetDownloadURL(ctx context.Context, fileID, folder, filename string, expiresIn time.Duration) (string, error)
}

// BlobPayload describes one binary upload.
type BlobPayload struct {
	ID        string
	Filename  string
	MediaType string
	Bytes     []byte
}

// Logger is the structured-logging collaborator. Implementations should
// wrap log/slog, per the teacher's slog.ErrorContext/InfoContext idiom.
type Logger interface {
	Info(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)
	Debug(ctx context.Context, msg string, args ...any)
}
