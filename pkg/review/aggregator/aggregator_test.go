package aggregator

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfleet/reviewfleet/pkg/review/agentio"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

func baseConfig() *model.Config {
	return &model.Config{
		Model:       "global-model",
		Timeout:     600,
		MaxTurns:    30,
		Aggregation: model.AggregationConfig{Enabled: true},
	}
}

func TestShouldRun_DisabledNeverRuns(t *testing.T) {
	results := []model.AgentResult{
		model.SuccessResult{AgentName: "a"},
		model.SuccessResult{AgentName: "b"},
	}
	assert.False(t, ShouldRun(model.AggregationConfig{Enabled: false}, results))
}

func TestShouldRun_NoTerminalResults(t *testing.T) {
	results := []model.AgentResult{model.ErrorResult{AgentName: "a"}, model.TimeoutResult{AgentName: "b"}}
	assert.False(t, ShouldRun(model.AggregationConfig{Enabled: true}, results))
}

func TestShouldRun_SingleTerminalResultSkipped(t *testing.T) {
	results := []model.AgentResult{model.SuccessResult{AgentName: "a"}}
	assert.False(t, ShouldRun(model.AggregationConfig{Enabled: true}, results))
}

func TestShouldRun_TwoTerminalResultsRuns(t *testing.T) {
	results := []model.AgentResult{
		model.SuccessResult{AgentName: "a"},
		model.TruncatedResult{AgentName: "b"},
	}
	assert.True(t, ShouldRun(model.AggregationConfig{Enabled: true}, results))
}

func TestAggregator_ResolvesModelPrecedence(t *testing.T) {
	var seenModel string
	agent := agentio.AggregatorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.AggregatorOutput, error) {
		seenModel = execCtx.Model
		return agentio.AggregatorOutput{}, nil
	})

	cfg := baseConfig()
	cfg.Aggregation.Model = "aggregation-config-model"
	agg := New(agent)
	_, aggErr := agg.Run(context.Background(), cfg, model.AggregatorDefinition{Model: "def-model", SystemPrompt: "p"}, nil)

	require.Nil(t, aggErr)
	assert.Equal(t, "aggregation-config-model", seenModel)
}

func TestAggregator_InputMessageListsIssuesAndFailures(t *testing.T) {
	var seenMessage string
	agent := agentio.AggregatorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.AggregatorOutput, error) {
		seenMessage = execCtx.UserMessage
		return agentio.AggregatorOutput{}, nil
	})

	results := []model.AgentResult{
		model.SuccessResult{AgentName: "code-reviewer", Issues: []model.ReviewIssue{
			{Severity: model.Critical, Description: "sql injection", Category: "security"},
		}},
		model.TimeoutResult{AgentName: "slow-agent", TimeoutSeconds: 5},
	}

	agg := New(agent)
	_, aggErr := agg.Run(context.Background(), baseConfig(), model.AggregatorDefinition{Model: "def-model", SystemPrompt: "p"}, results)

	require.Nil(t, aggErr)
	assert.Contains(t, seenMessage, "code-reviewer")
	assert.Contains(t, seenMessage, "sql injection")
	assert.Contains(t, seenMessage, "Failed Agents")
	assert.Contains(t, seenMessage, "slow-agent: timeout after 5s")
}

func TestAggregator_FailureReturnsError(t *testing.T) {
	agent := agentio.AggregatorAgentFunc(func(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.AggregatorOutput, error) {
		return agentio.AggregatorOutput{}, errors.New("model process exited non-zero")
	})

	agg := New(agent)
	_, aggErr := agg.Run(context.Background(), baseConfig(), model.AggregatorDefinition{Model: "def-model", SystemPrompt: "p"}, nil)

	require.NotNil(t, aggErr)
	assert.Contains(t, aggErr.Error(), "model process exited non-zero")
}
