package executor

import (
	"context"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
	"github.com/reviewfleet/reviewfleet/pkg/review/telemetry"
)

// Sequential runs one agent at a time, phase by phase, agent by agent in
// lexicographic name order within a phase. Before each agent it checks
// shutdown; if set, it stops and returns whatever has been collected so
// far — it never interrupts an agent already running, since there is at
// most one in flight.
type Sequential struct {
	Runner AgentRunner
}

// NewSequential builds a Sequential executor around runner.
func NewSequential(runner AgentRunner) *Sequential {
	return &Sequential{Runner: runner}
}

// Run executes contexts and returns the accumulated results via sink.
func (e *Sequential) Run(ctx context.Context, contexts []model.AgentExecutionContext, shutdown *Shutdown, sink *Sink) []model.AgentResult {
	for _, group := range GroupByPhase(contexts) {
		phaseCtx, span := telemetry.StartPhaseSpan(ctx, group[0].Phase, len(group))
		for _, execCtx := range group {
			if shutdown.IsSet() {
				span.End()
				return sink.Snapshot()
			}
			result := e.Runner.Run(phaseCtx, execCtx)
			sink.Append(result)
		}
		span.End()
	}
	return sink.Snapshot()
}
