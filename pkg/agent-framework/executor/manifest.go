package executor

import (
	"context"
	"fmt"
)

// OnTextOnly controls step-loop behavior when a step finishes with text and
// no tool calls.
type OnTextOnly string

const (
	OnTextOnlyStop     OnTextOnly = "stop"
	OnTextOnlyContinue OnTextOnly = "continue"
)

// StopCondition is one clause of a manifest's StopWhen list.
type StopCondition struct {
	// StepCount stops the loop once this many steps have run, if non-zero.
	StepCount int

	// ToolName stops the loop once a tool call of this name has been made,
	// if non-empty.
	ToolName string
}

// ProviderSettings names the model and provider-specific knobs for a step.
type ProviderSettings struct {
	Name     string
	Model    string
	Settings map[string]any
}

// HumanInTheLoop configures which tools require approval before execution.
type HumanInTheLoop struct {
	AlwaysRequireApproval  []string
	DefaultRequiresApproval bool
}

// NeedsApproval reports whether a tool call to toolName requires a
// human-in-the-loop approval gate under this configuration.
func (h HumanInTheLoop) NeedsApproval(toolName string) bool {
	for _, name := range h.AlwaysRequireApproval {
		if name == toolName {
			return true
		}
	}
	return h.DefaultRequiresApproval
}

// StreamingConfig selects which configurable event types are forwarded on
// the public event stream. Lifecycle events are always emitted regardless.
type StreamingConfig struct {
	Events map[EventType]bool
}

// Allows reports whether et is in the allowed configurable event set.
func (s StreamingConfig) Allows(et EventType) bool {
	if s.Events == nil {
		return true
	}
	return s.Events[et]
}

// Hook is a manifest-supplied lifecycle callback. Every hook is optional;
// implementers model "no hook" as a nil func value and call-site nil-check,
// per the teacher's capability-not-inheritance convention.
type Hook func(ctx context.Context, in HookInput) (HookOutput, error)

// HookInput is the payload passed to a lifecycle hook.
type HookInput struct {
	State       *AgentRunState
	Suspensions []ToolApprovalSuspension
	Result      *AgentRunResult
	Err         error
}

// HookOutput is what a lifecycle hook may return to influence the step that
// invoked it.
type HookOutput struct {
	// Messages, ToolChoice and ActiveTools override the step-only inputs
	// when returned from an onStepStart hook.
	Messages    []Message
	ToolChoice  string
	ActiveTools []string
}

// Hooks groups the optional manifest callbacks.
type Hooks struct {
	OnAgentStart    Hook
	OnAgentResume   Hook
	OnStepStart     Hook
	OnStepFinish    Hook
	OnAgentSuspend  Hook
	OnAgentComplete Hook
	OnAgentCancelled Hook
	OnAgentError    Hook

	// ToolExecutors maps a declared tool name to its executor function.
	ToolExecutors map[string]ToolExecutor

	// SubAgentMappers maps a declared sub-agent tool name to a function that
	// builds that sub-agent's AgentInput from the parent's tool-call
	// arguments.
	SubAgentMappers map[string]func(args string) (AgentInput, error)
}

// SubAgentRef names a sub-agent the manifest can invoke as a tool.
type SubAgentRef struct {
	ToolName        string
	ManifestID      string
	ManifestVersion string
}

// OutputToolSpec names the manifest's structured-output tool, if any.
type OutputToolSpec struct {
	ToolName string
	Schema   map[string]any
}

// AgentManifest is the immutable declarative spec for one agent. id:version
// must be unique within a run; every SubAgents[i] must resolve to another
// manifest in the run's manifest map; the sub-agent graph must be acyclic.
type AgentManifest struct {
	ID      string
	Version string

	Provider     ProviderSettings
	Instructions string

	Tools      []string
	SubAgents  []SubAgentRef
	OutputTool *OutputToolSpec

	StopWhen   []StopCondition
	OnTextOnly OnTextOnly

	TimeoutMs int64

	HumanInTheLoop HumanInTheLoop
	Streaming      StreamingConfig

	Hooks Hooks
}

// Key returns the manifest's unique id:version identity.
func (m *AgentManifest) Key() string {
	return fmt.Sprintf("%s:%s", m.ID, m.Version)
}

// ManifestSet resolves sub-agent references across a run's manifests and
// validates the acyclicity invariant from §3.
type ManifestSet struct {
	byKey map[string]*AgentManifest
}

// NewManifestSet builds a ManifestSet from a flat list, keyed by id:version.
func NewManifestSet(manifests ...*AgentManifest) (*ManifestSet, error) {
	set := &ManifestSet{byKey: map[string]*AgentManifest{}}
	for _, m := range manifests {
		key := m.Key()
		if _, exists := set.byKey[key]; exists {
			return nil, fmt.Errorf("duplicate manifest id:version %q", key)
		}
		set.byKey[key] = m
	}
	for _, m := range manifests {
		for _, sub := range m.SubAgents {
			subKey := fmt.Sprintf("%s:%s", sub.ManifestID, sub.ManifestVersion)
			if _, ok := set.byKey[subKey]; !ok {
				return nil, fmt.Errorf("manifest %q references unresolved sub-agent %q", m.Key(), subKey)
			}
		}
	}
	if err := set.checkAcyclic(); err != nil {
		return nil, err
	}
	return set, nil
}

// Get resolves a manifest by id:version.
func (s *ManifestSet) Get(manifestID, version string) *AgentManifest {
	return s.byKey[fmt.Sprintf("%s:%s", manifestID, version)]
}

func (s *ManifestSet) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(s.byKey))
	var visit func(key string) error
	visit = func(key string) error {
		switch color[key] {
		case gray:
			return fmt.Errorf("sub-agent graph has a cycle through %q", key)
		case black:
			return nil
		}
		color[key] = gray
		m := s.byKey[key]
		for _, sub := range m.SubAgents {
			subKey := fmt.Sprintf("%s:%s", sub.ManifestID, sub.ManifestVersion)
			if err := visit(subKey); err != nil {
				return err
			}
		}
		color[key] = black
		return nil
	}
	for key := range s.byKey {
		if err := visit(key); err != nil {
			return err
		}
	}
	return nil
}
