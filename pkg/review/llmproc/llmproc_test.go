package llmproc

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

func baseExecCtx() model.AgentExecutionContext {
	return model.AgentExecutionContext{
		AgentName:      "code-reviewer",
		Phase:          model.PhaseMain,
		Model:          "some-model",
		SystemPrompt:   "review it",
		UserMessage:    "diff body",
		TimeoutSeconds: 5,
		MaxTurns:       3,
	}
}

// echoCommand returns a Command that ignores stdin entirely and echoes a
// fixed JSON payload, enough to exercise response decoding without
// depending on any real LLM CLI being installed.
func echoCommand(t *testing.T, json string) Command {
	t.Helper()
	return Command{Name: "sh", Args: []string{"-c", `cat >/dev/null; printf '%s' "$0"`, json}}
}

func TestReviewAgent_DecodesIssuesAndUsage(t *testing.T) {
	cmd := echoCommand(t, `{"issues":[{"severity":"important","description":"missing nil check","file_path":"a.go","line_number":12}],"usage":{"turns":2,"input_tokens":100,"output_tokens":50,"has_cost":true}}`)
	agent := ReviewAgent{Cmd: cmd}

	out, err := agent.Run(context.Background(), baseExecCtx())
	require.NoError(t, err)
	require.Len(t, out.Issues, 1)
	assert.Equal(t, model.Important, out.Issues[0].Severity)
	assert.Equal(t, "code-reviewer", out.Issues[0].AgentName)
	require.NotNil(t, out.Issues[0].Location)
	assert.Equal(t, "a.go", out.Issues[0].Location.FilePath)
	assert.True(t, out.Usage.HasCost)
	assert.Equal(t, 100, out.Usage.InputTokens)
}

func TestReviewAgent_UnknownSeverityIsError(t *testing.T) {
	cmd := echoCommand(t, `{"issues":[{"severity":"apocalyptic","description":"x"}]}`)
	agent := ReviewAgent{Cmd: cmd}

	_, err := agent.Run(context.Background(), baseExecCtx())
	require.Error(t, err)
}

func TestReviewAgent_MissingExecutableFails(t *testing.T) {
	agent := ReviewAgent{Cmd: Command{Name: "definitely-not-a-real-binary-xyz"}}
	_, err := agent.Run(context.Background(), baseExecCtx())
	require.ErrorIs(t, err, ErrMissingExecutable)
}

func TestSelectorAgentAdapter_DecodesSelection(t *testing.T) {
	cmd := echoCommand(t, `{"selected_agents":["code-reviewer","security-reviewer"],"change_intent":"adds a handler"}`)
	agent := SelectorAgentAdapter{Cmd: cmd}

	out, err := agent.Run(context.Background(), baseExecCtx())
	require.NoError(t, err)
	assert.Equal(t, []string{"code-reviewer", "security-reviewer"}, out.Result.SelectedAgents)
	assert.Equal(t, "adds a handler", out.Result.ChangeIntent)
}

func TestAggregatorAgentAdapter_DecodesMergedReport(t *testing.T) {
	cmd := echoCommand(t, `{"issues":[{"severity":"critical","description":"sql injection"}],"strengths":["good tests"],"recommended_actions":[{"description":"fix it","priority":"high"}]}`)
	agent := AggregatorAgentAdapter{Cmd: cmd}

	out, err := agent.Run(context.Background(), baseExecCtx())
	require.NoError(t, err)
	require.Len(t, out.Result.Issues, 1)
	assert.Equal(t, model.Critical, out.Result.Issues[0].Severity)
	assert.Equal(t, []string{"good tests"}, out.Result.Strengths)
	require.Len(t, out.Result.RecommendedActions, 1)
	assert.Equal(t, model.PriorityHigh, out.Result.RecommendedActions[0].Priority)
}
