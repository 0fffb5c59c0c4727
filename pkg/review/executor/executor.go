// Package executor implements the two scheduling strategies — sequential
// and parallel-within-phase — that run a set of resolved agent execution
// contexts, both honoring a shared shutdown signal.
package executor

import (
	"context"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// AgentRunner runs exactly one agent to completion and classifies its
// outcome. *runner.Runner satisfies this interface; tests substitute a
// stub.
type AgentRunner interface {
	Run(ctx context.Context, execCtx model.AgentExecutionContext) model.AgentResult
}
