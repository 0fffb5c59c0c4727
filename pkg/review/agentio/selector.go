package agentio

import (
	"context"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// SelectorOutput is the structured result of one selector invocation.
type SelectorOutput struct {
	Result  model.SelectorOutput
	Usage   Usage
	Cleanup func() error
}

// SelectorAgent is the abstract boundary for the selector meta-agent,
// mirroring Agent but returning the selector's own structured shape instead
// of a flat issue list.
type SelectorAgent interface {
	Run(ctx context.Context, execCtx model.AgentExecutionContext) (SelectorOutput, error)
}

// SelectorAgentFunc adapts a plain function to SelectorAgent.
type SelectorAgentFunc func(ctx context.Context, execCtx model.AgentExecutionContext) (SelectorOutput, error)

func (f SelectorAgentFunc) Run(ctx context.Context, execCtx model.AgentExecutionContext) (SelectorOutput, error) {
	return f(ctx, execCtx)
}
