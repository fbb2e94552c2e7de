package executor

import "time"

// StepRecord is one completed step in a run's history.
type StepRecord struct {
	StepNumber         int          `json:"step_number"`
	Text               string       `json:"text,omitempty"`
	ToolCalls          []ToolCall   `json:"tool_calls,omitempty"`
	CompletedToolResults []ToolResult `json:"completed_tool_results,omitempty"`
	FinishReason       FinishReason `json:"finish_reason,omitempty"`
	Usage              Usage        `json:"usage"`
}

// AgentRunState is the per-run mutable snapshot. It is exclusively owned by
// the executor while the run lock is held, and otherwise owned by the state
// cache.
//
// Grounded on the teacher's core.RunState (reconstructed from its call sites
// in agents/agent.go and agents/durable_agent.go — NextStep/
// TransitionToExecuteTools/TransitionToAwaitApproval/TransitionToComplete/
// ToMeta/LoadRunStateFromMeta), extended with the `suspended` (sub-agent) and
// `cancelled` exits spec.md requires that the teacher's single-level HITL
// state machine does not model.
type AgentRunState struct {
	RunID           string `json:"run_id"`
	RootManifestID  string `json:"root_manifest_id"`
	ManifestID      string `json:"manifest_id"`
	ManifestVersion string `json:"manifest_version"`

	ParentContext map[string]any `json:"parent_context,omitempty"`

	Messages []Message    `json:"messages"`
	Steps    []StepRecord `json:"steps"`

	CurrentStepNumber int `json:"current_step_number"`

	Suspensions      []ToolApprovalSuspension `json:"suspensions,omitempty"`
	SuspensionStacks []SuspensionStack        `json:"suspension_stacks,omitempty"`
	PendingToolResults []ToolResult           `json:"pending_tool_results,omitempty"`

	Status RunStatus `json:"status"`

	StartedAt *time.Time `json:"started_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`

	ElapsedExecutionMs int64 `json:"elapsed_execution_ms"`

	ChildStateIDs []string `json:"child_state_ids,omitempty"`

	SchemaVersion int `json:"schema_version"`

	Context map[string]any `json:"context,omitempty"`

	// OutputValidationRetries tracks how many times the output-tool
	// validator has rejected the assistant's structured output this run.
	OutputValidationRetries int `json:"output_validation_retries"`

	// Internal loop bookkeeping, not part of the persisted invariant surface
	// but carried on the same struct for round-trip simplicity.
	StartTime time.Time `json:"-"`
	TimeoutMs int64     `json:"-"`
}

const CurrentSchemaVersion = 1

// NewRunState creates a fresh, running AgentRunState for a new run.
func NewRunState(runID, rootManifestID, manifestID, manifestVersion string, now time.Time, timeoutMs int64) *AgentRunState {
	return &AgentRunState{
		RunID:           runID,
		RootManifestID:  rootManifestID,
		ManifestID:      manifestID,
		ManifestVersion: manifestVersion,
		Status:          RunStatusRunning,
		StartedAt:       &now,
		CreatedAt:       now,
		UpdatedAt:       now,
		SchemaVersion:   CurrentSchemaVersion,
		StartTime:       now,
		TimeoutMs:       timeoutMs,
	}
}

// IsTerminal reports whether status is a terminal (non-running,
// non-suspended) state.
func (s *AgentRunState) IsTerminal() bool {
	switch s.Status {
	case RunStatusCompleted, RunStatusCancelled, RunStatusFailed:
		return true
	default:
		return false
	}
}

// IsSuspended reports whether the run is currently paused awaiting external
// input.
func (s *AgentRunState) IsSuspended() bool {
	return s.Status == RunStatusSuspended
}

// FindOwnSuspension searches this state's own suspensions list (as opposed
// to its children's SuspensionStacks) for approvalID, returning the match
// and whether one was found.
func (s *AgentRunState) FindOwnSuspension(approvalID string) (ToolApprovalSuspension, bool) {
	for _, susp := range s.Suspensions {
		if susp.ApprovalID == approvalID {
			return susp, true
		}
	}
	return ToolApprovalSuspension{}, false
}

// FindStackSuspension searches SuspensionStacks for a leaf suspension
// matching approvalID, returning the owning stack.
func (s *AgentRunState) FindStackSuspension(approvalID string) (SuspensionStack, bool) {
	for _, stack := range s.SuspensionStacks {
		if stack.LeafSuspension.ApprovalID == approvalID {
			return stack, true
		}
	}
	return SuspensionStack{}, false
}

// AgentRunResult is the external terminal value of one Orchestrator
// invocation.
type AgentRunResult struct {
	Kind AgentRunResultKind `json:"kind"`

	RunID string `json:"run_id"`

	// Complete
	Output []Message `json:"output,omitempty"`

	// Suspended
	Suspensions      []ToolApprovalSuspension `json:"suspensions,omitempty"`
	SuspensionStacks []SuspensionStack        `json:"suspension_stacks,omitempty"`

	// Error
	Err *ExecutorError `json:"error,omitempty"`
}

// AgentRunResultKind discriminates AgentRunResult's union.
type AgentRunResultKind string

const (
	ResultComplete       AgentRunResultKind = "complete"
	ResultSuspended      AgentRunResultKind = "suspended"
	ResultCancelled      AgentRunResultKind = "cancelled"
	ResultError          AgentRunResultKind = "error"
	ResultAlreadyRunning AgentRunResultKind = "already-running"
)

// LoopResultKind discriminates LoopResult, the Step Loop's internal terminal
// value (distinct from AgentRunResult, which is the Run Envelope's external
// terminal value).
type LoopResultKind string

const (
	LoopComplete  LoopResultKind = "complete"
	LoopSuspended LoopResultKind = "suspended"
	LoopCancelled LoopResultKind = "cancelled"
	LoopError     LoopResultKind = "error"
)

// LoopResult is the Step Loop's (§4.3) terminal value.
type LoopResult struct {
	Kind LoopResultKind

	// Complete
	Result *AgentRunResult

	// Suspended
	OwnSuspensions     []ToolApprovalSuspension
	SubAgentBranches   []SuspendedBranch
	CompletedToolResults []ToolResult

	// Error
	Err error

	FinalState *AgentRunState
}
