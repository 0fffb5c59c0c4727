package agentio

import (
	"context"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// AggregatorOutput is the structured result of one aggregator invocation.
type AggregatorOutput struct {
	Result  model.AggregatedReport
	Usage   Usage
	Cleanup func() error
}

// AggregatorAgent is the abstract boundary for the aggregator meta-agent.
type AggregatorAgent interface {
	Run(ctx context.Context, execCtx model.AgentExecutionContext) (AggregatorOutput, error)
}

// AggregatorAgentFunc adapts a plain function to AggregatorAgent.
type AggregatorAgentFunc func(ctx context.Context, execCtx model.AgentExecutionContext) (AggregatorOutput, error)

func (f AggregatorAgentFunc) Run(ctx context.Context, execCtx model.AgentExecutionContext) (AggregatorOutput, error) {
	return f(ctx, execCtx)
}
