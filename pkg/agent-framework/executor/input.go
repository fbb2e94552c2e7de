package executor

import "github.com/bytedance/sonic"

// AgentInputKind discriminates AgentInput's union (§4.7).
type AgentInputKind string

const (
	InputRequest  AgentInputKind = "request"
	InputReply    AgentInputKind = "reply"
	InputApproval AgentInputKind = "approval"
	InputContinue AgentInputKind = "continue"
)

// ContinueResponse is the payload of an approval AgentInput.
type ContinueResponse struct {
	ApprovalID string
	Approved   bool
	Reason     string
}

// AgentInput is the orchestrator's single entry-point payload, classified by
// Kind into one of request/reply/approval/continue.
type AgentInput struct {
	Kind AgentInputKind

	// request
	ManifestID      string
	ManifestVersion string
	Prompt          []Message
	RunContext      map[string]any

	// reply / approval / continue
	RunID string

	// reply
	NewMessage Message

	// approval
	Response ContinueResponse

	// Callback receives every AgentEvent as it is produced, in addition to
	// whatever the caller later reads off the returned channel. Optional.
	Callback func(AgentEvent)
}

// Clone deep-copies the Prompt/NewMessage slices so messages are never
// aliased between the caller and the executor, per §3's value-ownership
// invariant. Marshal-then-unmarshal mirrors the teacher's
// sonic.Marshal/sonic.Unmarshal round-trip used to cross the
// DurableExecutor.Run boundary in agents/agent.go.
func (in AgentInput) Clone() (AgentInput, error) {
	buf, err := sonic.Marshal(in.Prompt)
	if err != nil {
		return AgentInput{}, err
	}
	var prompt []Message
	if err := sonic.Unmarshal(buf, &prompt); err != nil {
		return AgentInput{}, err
	}
	msgBuf, err := sonic.Marshal(in.NewMessage)
	if err != nil {
		return AgentInput{}, err
	}
	var newMessage Message
	if err := sonic.Unmarshal(msgBuf, &newMessage); err != nil {
		return AgentInput{}, err
	}
	out := in
	out.Prompt = prompt
	out.NewMessage = newMessage
	return out, nil
}
