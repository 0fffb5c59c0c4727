// Package aggregator runs the aggregator meta-agent: the LLM call that
// deduplicates findings across all collected agent results into one
// AggregatedReport.
package aggregator

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/reviewfleet/reviewfleet/pkg/review/agentio"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// Aggregator runs the aggregator agent once per review.
type Aggregator struct {
	Agent agentio.AggregatorAgent
}

// New builds an Aggregator around agent.
func New(agent agentio.AggregatorAgent) *Aggregator {
	return &Aggregator{Agent: agent}
}

// ShouldRun reports whether the aggregator should be invoked at all, per
// the policy in §4.10: skipped when aggregation is disabled, when there are
// no Success/Truncated results, or when there is exactly one such result
// (nothing to deduplicate).
func ShouldRun(cfg model.AggregationConfig, results []model.AgentResult) bool {
	if !cfg.Enabled {
		return false
	}
	return countTerminal(results) >= 2
}

func countTerminal(results []model.AgentResult) int {
	n := 0
	for _, r := range results {
		if model.IsTerminal(r) {
			n++
		}
	}
	return n
}

// Error is raised for any aggregator failure; the engine records it on the
// report as AggregationError and never degrades the exit code for it.
type Error struct {
	Message string
}

func (e *Error) Error() string { return e.Message }

// Run resolves the aggregator's effective model/timeout/max_turns
// (config.aggregation > definition > global), builds its input message
// (every agent's issues plus the list of failed agents), and invokes the
// agent under its own deadline.
func (a *Aggregator) Run(
	ctx context.Context,
	cfg *model.Config,
	def model.AggregatorDefinition,
	results []model.AgentResult,
) (model.AggregatedReport, *Error) {
	resolvedModel := resolveString(cfg.Model, def.Model, cfg.Aggregation.Model)
	timeout := resolveIntPtr(cfg.Timeout, def.Timeout, cfg.Aggregation.Timeout)
	maxTurns := resolveIntPtr(cfg.MaxTurns, def.MaxTurns, cfg.Aggregation.MaxTurns)

	execCtx := model.AgentExecutionContext{
		AgentName:      "aggregator",
		Model:          resolvedModel,
		SystemPrompt:   def.SystemPrompt,
		UserMessage:    buildInputMessage(results),
		AllowedTools:   def.AllowedTools,
		TimeoutSeconds: timeout,
		MaxTurns:       maxTurns,
	}

	runCtx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	output, err := a.Agent.Run(runCtx, execCtx)
	if output.Cleanup != nil {
		if cleanupErr := output.Cleanup(); cleanupErr != nil && err == nil {
			if !errors.Is(cleanupErr, agentio.ErrCancelScope) {
				err = cleanupErr
			}
		}
	}
	if err != nil {
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			return model.AggregatedReport{}, &Error{Message: "aggregator timed out"}
		}
		return model.AggregatedReport{}, &Error{Message: err.Error()}
	}

	return output.Result, nil
}

// buildInputMessage enumerates each agent's issues (severity, location,
// suggestion, category) and lists failed agents by name and failure kind.
func buildInputMessage(results []model.AgentResult) string {
	var b strings.Builder
	b.WriteString("Deduplicate and synthesize the following review findings.\n\n")

	sorted := make([]model.AgentResult, len(results))
	copy(sorted, results)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name() < sorted[j].Name() })

	b.WriteString("## Findings\n")
	for _, r := range sorted {
		issues := model.IssuesOf(r)
		if len(issues) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n### %s\n", r.Name())
		for _, issue := range issues {
			fmt.Fprintf(&b, "- [%s] %s", issue.Severity, issue.Description)
			if issue.Location != nil {
				fmt.Fprintf(&b, " (%s:%d)", issue.Location.FilePath, issue.Location.LineNumber)
			}
			if issue.Category != "" {
				fmt.Fprintf(&b, " category=%s", issue.Category)
			}
			b.WriteString("\n")
			if issue.Suggestion != "" {
				fmt.Fprintf(&b, "  suggestion: %s\n", issue.Suggestion)
			}
		}
	}

	var failures []string
	for _, r := range sorted {
		switch v := r.(type) {
		case model.TimeoutResult:
			failures = append(failures, fmt.Sprintf("- %s: timeout after %ds", v.AgentName, v.TimeoutSeconds))
		case model.ErrorResult:
			failures = append(failures, fmt.Sprintf("- %s: error: %s", v.AgentName, v.ErrorMessage))
		}
	}
	if len(failures) > 0 {
		b.WriteString("\n## Failed Agents\n")
		b.WriteString(strings.Join(failures, "\n"))
		b.WriteString("\n")
	}

	return b.String()
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
