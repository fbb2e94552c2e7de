// Package localruntime wires Executor.Orchestrator entirely in-process: an
// in-memory state cache, run lock and cancellation cache, suitable for a
// single-process deployment or for tests that don't need a distributed
// backing store.
//
// Grounded on pkg/agent-framework/runtime's runtime-selection pattern (one
// package per backing execution model — Restate, Temporal — each wiring the
// same agents.Agent against a different durability substrate); LocalRuntime
// is the executor package's equivalent non-durable option.
package localruntime

import (
	"context"

	"github.com/curaious/uno/pkg/agent-framework/executor"
	"github.com/curaious/uno/pkg/agent-framework/executor/adapters/inmem"
)

// Runtime drives the Orchestrator with purely in-memory collaborators.
type Runtime struct {
	Orchestrator *executor.Orchestrator
	StateCache   *inmem.StateCache
	Lock         *inmem.RunLock
	Cancellation *inmem.CancellationCache
}

// New builds a Runtime for the given manifest set and completions gateway.
func New(manifests *executor.ManifestSet, gateway executor.CompletionsGateway) *Runtime {
	stateCache := inmem.NewStateCache()
	lock := inmem.NewRunLock()
	cancellation := inmem.NewCancellationCache()

	envelope := &executor.RunEnvelope{
		Lock:         lock,
		StateCache:   stateCache,
		Cancellation: cancellation,
		Log:          inmem.Logger{},
	}

	return &Runtime{
		Orchestrator: executor.NewOrchestrator(manifests, gateway, envelope, stateCache),
		StateCache:   stateCache,
		Lock:         lock,
		Cancellation: cancellation,
	}
}

// Execute starts or resumes a run, streaming every AgentEvent on the
// returned channel until the run reaches a terminal or suspended state.
func (r *Runtime) Execute(ctx context.Context, input executor.AgentInput) <-chan executor.AgentEvent {
	return r.Orchestrator.Execute(ctx, input)
}

// Cancel requests cancellation of an in-flight run. It is observed by the
// run's RunEnvelope within its cancellation poll interval, not immediately.
func (r *Runtime) Cancel(ctx context.Context, runID string) error {
	return r.Cancellation.Set(ctx, runID)
}
