package engine

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfleet/reviewfleet/pkg/review/agentio"
	"github.com/reviewfleet/reviewfleet/pkg/review/config"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// writeFile writes body under dir/name and returns name, so tests can build
// a model.FileTarget without ever shelling out to git.
func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	full := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
	require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	return name
}

func newEngine(t *testing.T, deps Dependencies) *Engine {
	t.Helper()
	if deps.WorkDir == "" {
		deps.WorkDir = t.TempDir()
	}
	e, err := New(deps)
	require.NoError(t, err)
	return e
}

func TestEngine_EmptySelectionIsSuccessAndSkipsAggregation(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", "package main\n")

	selector := agentio.SelectorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.SelectorOutput, error) {
		return agentio.SelectorOutput{Result: model.SelectorOutput{SelectedAgents: nil}}, nil
	})
	aggregatorCalled := false
	aggAgent := agentio.AggregatorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.AggregatorOutput, error) {
		aggregatorCalled = true
		return agentio.AggregatorOutput{}, nil
	})

	e := newEngine(t, Dependencies{WorkDir: dir, SelectorAgent: selector, AggregatorAgent: aggAgent})
	result := e.Run(context.Background(), model.FileTarget{Paths: []string{path}}, config.Overrides{})

	assert.Equal(t, model.ExitSuccess, result.ExitCode)
	assert.Empty(t, result.Report.Results)
	assert.False(t, aggregatorCalled)
}

func TestEngine_UnknownSelectedAgentNameIsDroppedSilently(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", "package main\n")

	selector := agentio.SelectorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.SelectorOutput, error) {
		return agentio.SelectorOutput{Result: model.SelectorOutput{SelectedAgents: []string{"nonexistent-agent"}}}, nil
	})
	reviewAgent := agentio.AgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.Output, error) {
		t.Fatal("review agent should never be invoked when the only selected name is unknown")
		return agentio.Output{}, nil
	})

	e := newEngine(t, Dependencies{WorkDir: dir, SelectorAgent: selector, ReviewAgent: reviewAgent})
	result := e.Run(context.Background(), model.FileTarget{Paths: []string{path}}, config.Overrides{})

	assert.Equal(t, model.ExitExecutionError, result.ExitCode)
	assert.Empty(t, result.Report.Results)
}

func TestEngine_AllAgentsErrorYieldsExecutionError(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", "package main\n")

	selector := agentio.SelectorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.SelectorOutput, error) {
		return agentio.SelectorOutput{Result: model.SelectorOutput{SelectedAgents: []string{"code-reviewer"}}}, nil
	})
	reviewAgent := agentio.AgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.Output, error) {
		return agentio.Output{}, assertError{}
	})

	e := newEngine(t, Dependencies{WorkDir: dir, SelectorAgent: selector, ReviewAgent: reviewAgent})
	result := e.Run(context.Background(), model.FileTarget{Paths: []string{path}}, config.Overrides{})

	require.Len(t, result.Report.Results, 1)
	assert.Equal(t, "error", result.Report.Results[0].Status())
	assert.Equal(t, model.ExitExecutionError, result.ExitCode)
}

func TestEngine_AggregationSkippedWithFewerThanTwoTerminalResults(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "main.go", "package main\n")

	selector := agentio.SelectorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.SelectorOutput, error) {
		return agentio.SelectorOutput{Result: model.SelectorOutput{SelectedAgents: []string{"code-reviewer"}}}, nil
	})
	reviewAgent := agentio.AgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.Output, error) {
		return agentio.Output{Issues: []model.ReviewIssue{{AgentName: "code-reviewer", Severity: model.Important, Description: "looks off"}}}, nil
	})
	aggregatorCalled := false
	aggAgent := agentio.AggregatorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.AggregatorOutput, error) {
		aggregatorCalled = true
		return agentio.AggregatorOutput{}, nil
	})

	e := newEngine(t, Dependencies{WorkDir: dir, SelectorAgent: selector, ReviewAgent: reviewAgent, AggregatorAgent: aggAgent})
	result := e.Run(context.Background(), model.FileTarget{Paths: []string{path}}, config.Overrides{})

	require.Len(t, result.Report.Results, 1)
	assert.Equal(t, model.ExitImportant, result.ExitCode)
	assert.False(t, aggregatorCalled)
	assert.Nil(t, result.Report.Aggregated)
}

func TestEngine_AggregationRunsWithTwoOrMoreTerminalResultsWhenEnabled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package main\n")

	selector := agentio.SelectorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.SelectorOutput, error) {
		return agentio.SelectorOutput{Result: model.SelectorOutput{SelectedAgents: []string{"code-reviewer", "security-reviewer"}}}, nil
	})
	reviewAgent := agentio.AgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.Output, error) {
		return agentio.Output{Issues: []model.ReviewIssue{{AgentName: execCtx.AgentName, Severity: model.Suggestion, Description: "nit"}}}, nil
	})
	aggregatorCalled := false
	aggAgent := agentio.AggregatorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.AggregatorOutput, error) {
		aggregatorCalled = true
		return agentio.AggregatorOutput{Result: model.AggregatedReport{Strengths: []string{"clean change"}}}, nil
	})

	e := newEngine(t, Dependencies{WorkDir: dir, SelectorAgent: selector, ReviewAgent: reviewAgent, AggregatorAgent: aggAgent})
	result := e.Run(context.Background(), model.FileTarget{Paths: []string{path}}, config.Overrides{})

	require.Len(t, result.Report.Results, 2)
	assert.True(t, aggregatorCalled)
	require.NotNil(t, result.Report.Aggregated)
	assert.Equal(t, []string{"clean change"}, result.Report.Aggregated.Strengths)
}

// TestEngine_ConfigOverridesFlowIntoAgentExecutionContext exercises the
// global-layer fallback: a custom agent definition that leaves timeout
// unset must pick up config.Overrides rather than a built-in default, since
// every built-in agent sets its own timeout and would otherwise mask it.
func TestEngine_ConfigOverridesFlowIntoAgentExecutionContext(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "a.go", "package main\n")
	customDir := filepath.Join(dir, ".hachimoku", "agents")
	writeFile(t, customDir, "code-reviewer.toml", `
name = "code-reviewer"
description = "overrides the built-in for this test"
model = "custom-model"
system_prompt = "review it"

[applicability]
always = true
`)

	var seenTimeout int
	selector := agentio.SelectorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.SelectorOutput, error) {
		return agentio.SelectorOutput{Result: model.SelectorOutput{SelectedAgents: []string{"code-reviewer"}}}, nil
	})
	reviewAgent := agentio.AgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.Output, error) {
		seenTimeout = execCtx.TimeoutSeconds
		return agentio.Output{}, nil
	})

	e := newEngine(t, Dependencies{WorkDir: dir, CustomDefinitionsDir: customDir, SelectorAgent: selector, ReviewAgent: reviewAgent})

	overrideTimeout := 42
	result := e.Run(context.Background(), model.FileTarget{Paths: []string{path}},
		config.Overrides{Timeout: &overrideTimeout})

	require.Len(t, result.Report.Results, 1)
	assert.Equal(t, overrideTimeout, seenTimeout)
}

func TestEngine_FileTargetTruncatedToMaxFilesPerReview(t *testing.T) {
	dir := t.TempDir()
	a := writeFile(t, dir, "a.go", "package main\n")
	writeFile(t, dir, "b.go", "package main\n")

	var seenPayload string
	selector := agentio.SelectorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.SelectorOutput, error) {
		seenPayload = execCtx.UserMessage
		return agentio.SelectorOutput{Result: model.SelectorOutput{SelectedAgents: nil}}, nil
	})

	e := newEngine(t, Dependencies{WorkDir: dir, SelectorAgent: selector})
	limit := 1
	result := e.Run(context.Background(), model.FileTarget{Paths: []string{a, "b.go"}},
		config.Overrides{MaxFilesPerReview: &limit})

	assert.Equal(t, model.ExitSuccess, result.ExitCode)
	assert.Contains(t, seenPayload, "a.go")
	assert.NotContains(t, seenPayload, "b.go")
}

// assertError is a minimal error used to simulate an agent failure without
// importing "errors" just for one sentinel.
type assertError struct{}

func (assertError) Error() string { return "simulated agent failure" }
