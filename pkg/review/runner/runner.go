// Package runner implements the Agent Runner: it runs exactly one agent
// under a wall-clock deadline and a usage-limit budget, and classifies the
// outcome into the four AgentResult variants.
package runner

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/reviewfleet/reviewfleet/pkg/review/agentio"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
	"github.com/reviewfleet/reviewfleet/pkg/review/telemetry"
)

// Runner runs one agent at a time; it holds no per-invocation state, so a
// single Runner is safe to share across concurrently running agents.
type Runner struct {
	Agent  agentio.Agent
	Logger *slog.Logger
}

// New builds a Runner around agent.
func New(agent agentio.Agent, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{Agent: agent, Logger: logger}
}

type outcome struct {
	output agentio.Output
	err    error
}

// Run executes execCtx's agent. It never panics and never returns an error
// — every failure mode becomes a concrete AgentResult variant instead.
func (r *Runner) Run(ctx context.Context, execCtx model.AgentExecutionContext) model.AgentResult {
	ctx, span := telemetry.StartAgentSpan(ctx, execCtx)
	result := r.run(ctx, execCtx)
	telemetry.EndAgentSpan(span, result)
	return result
}

func (r *Runner) run(ctx context.Context, execCtx model.AgentExecutionContext) model.AgentResult {
	deadline := time.Duration(execCtx.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	resultCh := make(chan outcome, 1)
	start := time.Now()

	go func() {
		output, err := r.Agent.Run(runCtx, execCtx)
		resultCh <- outcome{output, err}
	}()

	select {
	case res := <-resultCh:
		return r.classify(execCtx, res, time.Since(start))
	case <-runCtx.Done():
		// A result may have landed in the same instant the deadline fired;
		// prefer it over reporting a spurious timeout.
		select {
		case res := <-resultCh:
			return r.classify(execCtx, res, time.Since(start))
		default:
		}
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return model.TimeoutResult{AgentName: execCtx.AgentName, TimeoutSeconds: execCtx.TimeoutSeconds}
		}
		return model.ErrorResult{AgentName: execCtx.AgentName, ErrorMessage: runCtx.Err().Error()}
	}
}

func (r *Runner) classify(execCtx model.AgentExecutionContext, res outcome, elapsed time.Duration) model.AgentResult {
	resultObserved := res.err == nil
	if res.output.Cleanup != nil {
		if cleanupErr := res.output.Cleanup(); cleanupErr != nil {
			if errors.Is(cleanupErr, agentio.ErrCancelScope) {
				if resultObserved {
					r.Logger.Warn("runner: swallowing cancel-scope cleanup error after observed result",
						"agent", execCtx.AgentName, "error", cleanupErr)
				} else {
					res.err = cleanupErr
				}
			} else if !resultObserved {
				res.err = cleanupErr
			}
		}
	}

	if res.err == nil {
		return model.SuccessResult{
			AgentName: execCtx.AgentName,
			Issues:    res.output.Issues,
			Elapsed:   elapsed,
			Cost:      costOf(res.output.Usage),
		}
	}

	var usageErr *agentio.ErrUsageLimitExceeded
	if errors.As(res.err, &usageErr) {
		return model.TruncatedResult{
			AgentName:     execCtx.AgentName,
			Issues:        usageErr.Issues,
			Elapsed:       elapsed,
			TurnsConsumed: execCtx.MaxTurns,
		}
	}

	if errors.Is(res.err, context.DeadlineExceeded) {
		return model.TimeoutResult{AgentName: execCtx.AgentName, TimeoutSeconds: execCtx.TimeoutSeconds}
	}

	return model.ErrorResult{AgentName: execCtx.AgentName, ErrorMessage: res.err.Error()}
}

func costOf(usage agentio.Usage) *model.Cost {
	if !usage.HasCost {
		return nil
	}
	return &model.Cost{InputTokens: usage.InputTokens, OutputTokens: usage.OutputTokens}
}
