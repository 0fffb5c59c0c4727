// Package selector runs the selector meta-agent: the LLM call that decides
// which review agents apply to a change and emits structured context for
// them.
package selector

import (
	"context"
	"errors"
	"time"

	"github.com/reviewfleet/reviewfleet/pkg/review/agentio"
	"github.com/reviewfleet/reviewfleet/pkg/review/instruction"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
	"github.com/reviewfleet/reviewfleet/pkg/review/prefetch"
)

// Selector runs the selector agent once per review.
type Selector struct {
	Agent agentio.SelectorAgent
}

// New builds a Selector around agent.
func New(agent agentio.SelectorAgent) *Selector {
	return &Selector{Agent: agent}
}

// Run resolves the selector's effective model/timeout/max_turns
// (config.selector > definition > global), builds its instruction (the
// base review instruction, the agent roster, the pre-fetched context, and
// the guardrail appended), and invokes the agent under its own deadline.
//
// An empty SelectedAgents is a successful result, not an error — the
// caller decides what "nothing applies" means. Any other failure is
// returned as *Error.
func (s *Selector) Run(
	ctx context.Context,
	cfg *model.Config,
	def model.SelectorDefinition,
	target model.ReviewTarget,
	resolvedContent string,
	agents []instruction.AgentSummary,
	prefetched prefetch.PrefetchedContext,
) (model.SelectorOutput, *Error) {
	// Precedence lowest to highest: global < definition < config.selector.
	resolvedModel := resolveString(cfg.Model, def.Model, cfg.Selector.Model)
	timeout := resolveIntPtr(cfg.Timeout, def.Timeout, cfg.Selector.Timeout)
	maxTurns := resolveIntPtr(cfg.MaxTurns, def.MaxTurns, cfg.Selector.MaxTurns)

	base := instruction.BuildReviewInstruction(target, resolvedContent)
	userMessage := instruction.BuildSelectorInstruction(base, agents, prefetched) + BuildGuardrail(prefetched)

	execCtx := model.AgentExecutionContext{
		AgentName:      "selector",
		Model:          resolvedModel,
		SystemPrompt:   def.SystemPrompt,
		UserMessage:    userMessage,
		AllowedTools:   def.AllowedTools,
		TimeoutSeconds: timeout,
		MaxTurns:       maxTurns,
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	output, err := s.Agent.Run(runCtx, execCtx)
	if output.Cleanup != nil {
		if cleanupErr := output.Cleanup(); cleanupErr != nil && err == nil {
			if !errors.Is(cleanupErr, agentio.ErrCancelScope) {
				err = cleanupErr
			}
		}
	}
	if err != nil {
		return model.SelectorOutput{}, classify(err, runCtx)
	}

	return output.Result, nil
}

func classify(err error, runCtx context.Context) *Error {
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return &Error{Message: "selector timed out", ErrorKind: "timeout"}
	}
	return &Error{Message: err.Error(), ErrorKind: "error"}
}

func resolveString(overrides ...string) string {
	var v string
	for _, o := range overrides {
		if o != "" {
			v = o
		}
	}
	return v
}

func resolveIntPtr(fallback int, overrides ...*int) int {
	v := fallback
	for _, o := range overrides {
		if o != nil {
			v = *o
		}
	}
	return v
}
