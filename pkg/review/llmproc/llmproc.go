// Package llmproc is the one concrete agentio adapter this repository
// ships: it shells out to an external, operator-configured command (an LLM
// CLI such as "claude" or "llm") and exchanges JSON over stdin/stdout,
// mirroring how pkg/review/catalog's subprocess tools wrap git/gh rather
// than reimplementing a model wire protocol in-process. The concrete LLM
// client remains a collaborator, never the core — this package only
// exists so cmd/reviewfleet has something real to wire by default.
package llmproc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
	"unicode/utf8"

	"github.com/reviewfleet/reviewfleet/pkg/review/agentio"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// ErrMissingExecutable and ErrNonZeroExit mirror the tool catalog's own
// subprocess error taxonomy for the same two unrecoverable failure modes.
var (
	ErrMissingExecutable = errors.New("llm command not found")
	ErrNonZeroExit       = errors.New("llm command exited non-zero")
	ErrNotUTF8           = errors.New("llm command output was not valid UTF-8")
)

// Command names the external program and fixed leading arguments used to
// invoke the model. Each AgentExecutionContext is marshaled to JSON and
// written to the command's stdin; the command's stdout must be exactly one
// JSON object shaped like Response.
type Command struct {
	Name string
	Args []string
}

// request is the wire shape fed to the external command's stdin. It is a
// flattened view of model.AgentExecutionContext — no behavior lives here,
// only field renaming to a stable external JSON contract.
type request struct {
	AgentName       string   `json:"agent_name"`
	Phase           string   `json:"phase"`
	Model           string   `json:"model"`
	SystemPrompt    string   `json:"system_prompt"`
	UserMessage     string   `json:"user_message"`
	OutputSchemaRef string   `json:"output_schema_ref"`
	AllowedTools    []string `json:"allowed_tools"`
	TimeoutSeconds  int      `json:"timeout_seconds"`
	MaxTurns        int      `json:"max_turns"`
}

func toRequest(execCtx model.AgentExecutionContext) request {
	return request{
		AgentName:       execCtx.AgentName,
		Phase:           execCtx.Phase.String(),
		Model:           execCtx.Model,
		SystemPrompt:    execCtx.SystemPrompt,
		UserMessage:     execCtx.UserMessage,
		OutputSchemaRef: execCtx.OutputSchemaRef,
		AllowedTools:    execCtx.AllowedTools,
		TimeoutSeconds:  execCtx.TimeoutSeconds,
		MaxTurns:        execCtx.MaxTurns,
	}
}

type wireUsage struct {
	Turns        int  `json:"turns"`
	InputTokens  int  `json:"input_tokens"`
	OutputTokens int  `json:"output_tokens"`
	HasCost      bool `json:"has_cost"`
}

func (u wireUsage) toUsage() agentio.Usage {
	return agentio.Usage{Turns: u.Turns, InputTokens: u.InputTokens, OutputTokens: u.OutputTokens, HasCost: u.HasCost}
}

type wireIssue struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
	FilePath    string `json:"file_path"`
	LineNumber  int    `json:"line_number"`
	Suggestion  string `json:"suggestion"`
	Category    string `json:"category"`
}

func (i wireIssue) toReviewIssue(agentName string) (model.ReviewIssue, error) {
	sev, err := model.ParseSeverity(i.Severity)
	if err != nil {
		return model.ReviewIssue{}, fmt.Errorf("decoding issue from %q: %w", agentName, err)
	}
	issue := model.ReviewIssue{
		AgentName:   agentName,
		Severity:    sev,
		Description: i.Description,
		Suggestion:  i.Suggestion,
		Category:    i.Category,
	}
	if i.FilePath != "" {
		issue.Location = &model.FileLocation{FilePath: i.FilePath, LineNumber: i.LineNumber}
	}
	return issue, nil
}

// run invokes cmd with execCtx's request JSON on stdin and decodes stdout
// strictly as JSON into out.
func run(ctx context.Context, cmd Command, execCtx model.AgentExecutionContext, out any) error {
	if _, err := exec.LookPath(cmd.Name); err != nil {
		return fmt.Errorf("%w: %q. Ensure %s is installed and available in PATH", ErrMissingExecutable, cmd.Name, cmd.Name)
	}

	payload, err := json.Marshal(toRequest(execCtx))
	if err != nil {
		return fmt.Errorf("marshaling request for %q: %w", execCtx.AgentName, err)
	}

	deadline := time.Duration(execCtx.TimeoutSeconds) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, deadline)
	defer cancel()

	c := exec.CommandContext(runCtx, cmd.Name, cmd.Args...)
	c.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	c.Stdout = &stdout
	c.Stderr = &stderr

	if runErr := c.Run(); runErr != nil {
		return fmt.Errorf("%w: %s %v: %s", ErrNonZeroExit, cmd.Name, cmd.Args, stderr.String())
	}
	if !utf8.Valid(stdout.Bytes()) {
		return fmt.Errorf("%w: %s %v", ErrNotUTF8, cmd.Name, cmd.Args)
	}
	if err := json.Unmarshal(stdout.Bytes(), out); err != nil {
		return fmt.Errorf("decoding %s response: %w", cmd.Name, err)
	}
	return nil
}

// ReviewAgent invokes Command for the main review-agent role and decodes a
// plain issues list back. It implements agentio.Agent.
type ReviewAgent struct {
	Cmd Command
}

type reviewResponse struct {
	Issues []wireIssue `json:"issues"`
	Usage  wireUsage   `json:"usage"`
}

func (a ReviewAgent) Run(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.Output, error) {
	var resp reviewResponse
	if err := run(ctx, a.Cmd, execCtx, &resp); err != nil {
		return agentio.Output{}, err
	}
	issues := make([]model.ReviewIssue, 0, len(resp.Issues))
	for _, wi := range resp.Issues {
		issue, err := wi.toReviewIssue(execCtx.AgentName)
		if err != nil {
			return agentio.Output{}, err
		}
		issues = append(issues, issue)
	}
	return agentio.Output{Issues: issues, Usage: resp.Usage.toUsage()}, nil
}

// SelectorAgentAdapter invokes Command for the selector role. It implements
// agentio.SelectorAgent.
type SelectorAgentAdapter struct {
	Cmd Command
}

type selectorResponse struct {
	SelectedAgents      []string          `json:"selected_agents"`
	Reasoning           string            `json:"reasoning"`
	ChangeIntent        string            `json:"change_intent"`
	AffectedFiles       []string          `json:"affected_files"`
	RelevantConventions []string          `json:"relevant_conventions"`
	IssueContext        string            `json:"issue_context"`
	ReferencedContent   map[string]string `json:"referenced_content"`
	Usage               wireUsage         `json:"usage"`
}

func (a SelectorAgentAdapter) Run(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.SelectorOutput, error) {
	var resp selectorResponse
	if err := run(ctx, a.Cmd, execCtx, &resp); err != nil {
		return agentio.SelectorOutput{}, err
	}
	return agentio.SelectorOutput{
		Result: model.SelectorOutput{
			SelectedAgents:      resp.SelectedAgents,
			Reasoning:           resp.Reasoning,
			ChangeIntent:        resp.ChangeIntent,
			AffectedFiles:       resp.AffectedFiles,
			RelevantConventions: resp.RelevantConventions,
			IssueContext:        resp.IssueContext,
			ReferencedContent:   resp.ReferencedContent,
		},
		Usage: resp.Usage.toUsage(),
	}, nil
}

// AggregatorAgentAdapter invokes Command for the aggregator role. It
// implements agentio.AggregatorAgent.
type AggregatorAgentAdapter struct {
	Cmd Command
}

type recommendedAction struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type aggregatorResponse struct {
	Issues             []wireIssue         `json:"issues"`
	Strengths          []string            `json:"strengths"`
	RecommendedActions []recommendedAction `json:"recommended_actions"`
	AgentFailures      []struct {
		AgentName string `json:"agent_name"`
		Kind      string `json:"kind"`
		Detail    string `json:"detail"`
	} `json:"agent_failures"`
	Usage wireUsage `json:"usage"`
}

func (a AggregatorAgentAdapter) Run(ctx context.Context, execCtx model.AgentExecutionContext) (agentio.AggregatorOutput, error) {
	var resp aggregatorResponse
	if err := run(ctx, a.Cmd, execCtx, &resp); err != nil {
		return agentio.AggregatorOutput{}, err
	}
	issues := make([]model.ReviewIssue, 0, len(resp.Issues))
	for _, wi := range resp.Issues {
		issue, err := wi.toReviewIssue(execCtx.AgentName)
		if err != nil {
			return agentio.AggregatorOutput{}, err
		}
		issues = append(issues, issue)
	}
	actions := make([]model.RecommendedAction, 0, len(resp.RecommendedActions))
	for _, ra := range resp.RecommendedActions {
		priority, err := model.ParsePriority(ra.Priority)
		if err != nil {
			return agentio.AggregatorOutput{}, fmt.Errorf("decoding aggregator action: %w", err)
		}
		actions = append(actions, model.RecommendedAction{Description: ra.Description, Priority: priority})
	}
	failures := make([]model.AgentFailure, 0, len(resp.AgentFailures))
	for _, f := range resp.AgentFailures {
		failures = append(failures, model.AgentFailure{AgentName: f.AgentName, Kind: f.Kind, Detail: f.Detail})
	}
	return agentio.AggregatorOutput{
		Result: model.AggregatedReport{
			Issues:             issues,
			Strengths:          resp.Strengths,
			RecommendedActions: actions,
			AgentFailures:      failures,
		},
		Usage: resp.Usage.toUsage(),
	}, nil
}
