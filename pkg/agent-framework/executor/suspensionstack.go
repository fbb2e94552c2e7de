package executor

// BuildSuspensionStacks implements §4.4: given the current manifest/state id
// and the SuspendedBranches produced by a step's Tool Dispatch, emit one
// SuspensionStack per distinct leaf suspension.
//
// Not present in the teacher — agent_tool.go's AgentTool.Execute invokes a
// sub-agent synchronously and has no representation for "this sub-agent
// suspended," so there is nothing to generalize here. The shape (a frame
// list of {manifestId, manifestVersion, stateId}) is grounded on the
// teacher's meta round-trip (core.RunState.ToMeta/LoadRunStateFromMeta);
// the recursive-descent algorithm itself is new, built directly from spec.md
// §4.4.
func BuildSuspensionStacks(manifestID, manifestVersion, stateID string, branches []SuspendedBranch) []SuspensionStack {
	var stacks []SuspensionStack

	for _, branch := range branches {
		current := StackFrame{
			ManifestID:        manifestID,
			ManifestVersion:   manifestVersion,
			StateID:           stateID,
			PendingToolCallID: branch.ToolCallID,
		}

		if len(branch.ChildStacks) > 0 {
			// Deeper nesting: prepend the current-agent entry onto each
			// child stack and republish its leaf.
			for _, child := range branch.ChildStacks {
				agents := make([]StackFrame, 0, len(child.Agents)+1)
				agents = append(agents, current)
				agents = append(agents, child.Agents...)
				stacks = append(stacks, SuspensionStack{
					Agents:         agents,
					LeafSuspension: child.LeafSuspension,
				})
			}
			continue
		}

		// Direct child suspension: one stack per suspension the child
		// itself raised.
		childEntry := StackFrame{
			ManifestID:      branch.ChildManifestID,
			ManifestVersion: branch.ChildManifestVersion,
			StateID:         branch.ChildStateID,
		}
		for _, susp := range branch.Suspensions {
			stacks = append(stacks, SuspensionStack{
				Agents:         []StackFrame{current, childEntry},
				LeafSuspension: susp,
			})
		}
	}

	return stacks
}
