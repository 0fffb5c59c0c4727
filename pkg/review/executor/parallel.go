package executor

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
	"github.com/reviewfleet/reviewfleet/pkg/review/telemetry"
)

// Parallel runs every agent within a phase concurrently as sibling tasks
// under one task group; a phase completes only when every sibling finishes
// or the group is cancelled. Phases themselves still run strictly in
// order.
type Parallel struct {
	Runner AgentRunner
}

// NewParallel builds a Parallel executor around runner.
func NewParallel(runner AgentRunner) *Parallel {
	return &Parallel{Runner: runner}
}

// Run executes contexts phase by phase. On shutdown, the currently running
// phase's task group is cancelled (already-completed results are
// retained), and subsequent phases are not started.
func (e *Parallel) Run(ctx context.Context, contexts []model.AgentExecutionContext, shutdown *Shutdown, sink *Sink) []model.AgentResult {
	for _, group := range GroupByPhase(contexts) {
		if shutdown.IsSet() {
			return sink.Snapshot()
		}
		e.runPhase(ctx, group, shutdown, sink)
		if shutdown.IsSet() {
			return sink.Snapshot()
		}
	}
	return sink.Snapshot()
}

// runPhase runs one phase's agents as sibling tasks under an errgroup,
// with a phase-scoped context cancelled the instant shutdown fires so any
// agent still honoring it unwinds without waiting for its own timeout.
func (e *Parallel) runPhase(ctx context.Context, group []model.AgentExecutionContext, shutdown *Shutdown, sink *Sink) {
	ctx, span := telemetry.StartPhaseSpan(ctx, group[0].Phase, len(group))
	defer span.End()

	phaseCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-shutdown.Done():
			cancel()
		case <-phaseCtx.Done():
		}
	}()

	var g errgroup.Group
	for _, execCtx := range group {
		execCtx := execCtx
		g.Go(func() error {
			resultCh := make(chan model.AgentResult, 1)
			go func() { resultCh <- e.Runner.Run(phaseCtx, execCtx) }()
			select {
			case result := <-resultCh:
				sink.Append(result)
			case <-shutdown.Done():
				// Dropped: shutdown fired before this agent's run
				// completed, so it contributes no result.
			}
			return nil
		})
	}
	_ = g.Wait()
}
