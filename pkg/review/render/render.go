// Package render turns a final ReviewReport into the operator-facing
// markdown document or a machine-readable JSON object. It is a consumer of
// the report, never part of the pipeline — cmd/reviewfleet picks the
// renderer from config.output_format after the engine returns.
package render

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// Markdown renders report as the human-readable document written to
// stdout. Issues are re-sorted by severity, most urgent first; the
// report's Results list keeps its completion order untouched.
func Markdown(report model.ReviewReport, showCost bool) string {
	var b strings.Builder
	b.WriteString("# Review Report\n\n")

	writeSummary(&b, report.Summary, showCost)
	writeIssues(&b, collectIssues(report.Results))
	writeAggregated(&b, report)
	writeFailures(&b, report.Results)
	writeLoadErrors(&b, report.LoadErrors)

	return b.String()
}

func writeSummary(b *strings.Builder, s model.ReviewSummary, showCost bool) {
	fmt.Fprintf(b, "**Issues:** %d", s.TotalIssues)
	if s.MaxSeverity != nil {
		fmt.Fprintf(b, " (max severity: %s)", s.MaxSeverity)
	}
	b.WriteString("\n")
	fmt.Fprintf(b, "**Elapsed:** %.1fs\n", s.TotalElapsedTime.Seconds())
	if showCost && s.TotalCost != nil {
		fmt.Fprintf(b, "**Tokens:** %d in / %d out\n", s.TotalCost.InputTokens, s.TotalCost.OutputTokens)
	}
	b.WriteString("\n")
}

// collectIssues gathers every issue across results and orders them by
// severity descending, then agent name, for a stable rendered view.
func collectIssues(results []model.AgentResult) []model.ReviewIssue {
	var issues []model.ReviewIssue
	for _, r := range results {
		issues = append(issues, model.IssuesOf(r)...)
	}
	sort.SliceStable(issues, func(i, j int) bool {
		if issues[i].Severity != issues[j].Severity {
			return issues[j].Severity.Less(issues[i].Severity)
		}
		return issues[i].AgentName < issues[j].AgentName
	})
	return issues
}

func writeIssues(b *strings.Builder, issues []model.ReviewIssue) {
	if len(issues) == 0 {
		b.WriteString("No issues found.\n\n")
		return
	}
	b.WriteString("## Issues\n\n")
	for _, issue := range issues {
		writeIssue(b, issue)
	}
	b.WriteString("\n")
}

func writeIssue(b *strings.Builder, issue model.ReviewIssue) {
	fmt.Fprintf(b, "- **%s**", issue.Severity)
	if issue.Location != nil {
		fmt.Fprintf(b, " `%s:%d`", issue.Location.FilePath, issue.Location.LineNumber)
	}
	if issue.Category != "" {
		fmt.Fprintf(b, " [%s]", issue.Category)
	}
	fmt.Fprintf(b, " %s _(%s)_\n", issue.Description, issue.AgentName)
	if issue.Suggestion != "" {
		fmt.Fprintf(b, "  - Suggestion: %s\n", issue.Suggestion)
	}
}

func writeAggregated(b *strings.Builder, report model.ReviewReport) {
	if report.AggregationError != "" {
		fmt.Fprintf(b, "_Aggregation failed: %s_\n\n", report.AggregationError)
	}
	agg := report.Aggregated
	if agg == nil {
		return
	}

	b.WriteString("## Aggregated Findings\n\n")
	for _, issue := range agg.Issues {
		writeIssue(b, issue)
	}
	if len(agg.Issues) > 0 {
		b.WriteString("\n")
	}

	if len(agg.Strengths) > 0 {
		b.WriteString("### Strengths\n\n")
		for _, s := range agg.Strengths {
			fmt.Fprintf(b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	if len(agg.RecommendedActions) > 0 {
		b.WriteString("### Recommended Actions\n\n")
		for _, a := range agg.RecommendedActions {
			fmt.Fprintf(b, "- [%s] %s\n", a.Priority, a.Description)
		}
		b.WriteString("\n")
	}

	if len(agg.AgentFailures) > 0 {
		b.WriteString("### Agent Failures (aggregator view)\n\n")
		for _, f := range agg.AgentFailures {
			fmt.Fprintf(b, "- %s: %s", f.AgentName, f.Kind)
			if f.Detail != "" {
				fmt.Fprintf(b, " (%s)", f.Detail)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
}

func writeFailures(b *strings.Builder, results []model.AgentResult) {
	var lines []string
	for _, r := range results {
		switch v := r.(type) {
		case model.TimeoutResult:
			lines = append(lines, fmt.Sprintf("- %s: timed out after %ds", v.AgentName, v.TimeoutSeconds))
		case model.ErrorResult:
			lines = append(lines, fmt.Sprintf("- %s: %s", v.AgentName, v.ErrorMessage))
		case model.SuccessResult, model.TruncatedResult:
		default:
			panic(fmt.Sprintf("render: unhandled AgentResult variant %T", r))
		}
	}
	if len(lines) == 0 {
		return
	}
	b.WriteString("## Failed Agents\n\n")
	for _, l := range lines {
		b.WriteString(l + "\n")
	}
	b.WriteString("\n")
}

func writeLoadErrors(b *strings.Builder, errs []model.LoadError) {
	if len(errs) == 0 {
		return
	}
	b.WriteString("## Load Errors\n\n")
	for _, e := range errs {
		name := e.Name
		if name == "" {
			name = e.File
		}
		fmt.Fprintf(b, "- %s: %s\n", name, e.Cause)
	}
	b.WriteString("\n")
}

// jsonReport is the stable wire shape for --output-format=json. It mirrors
// the history record's result/summary encoding so both consumers see one
// JSON vocabulary.
type jsonReport struct {
	Results          []jsonResult    `json:"results"`
	Summary          jsonSummary     `json:"summary"`
	Aggregated       *jsonAggregated `json:"aggregated,omitempty"`
	AggregationError string          `json:"aggregation_error,omitempty"`
	LoadErrors       []jsonLoadError `json:"load_errors,omitempty"`
}

type jsonResult struct {
	Status         string      `json:"status"`
	AgentName      string      `json:"agent_name"`
	Issues         []jsonIssue `json:"issues,omitempty"`
	ElapsedSeconds float64     `json:"elapsed_seconds,omitempty"`
	Cost           *jsonCost   `json:"cost,omitempty"`
	TurnsConsumed  int         `json:"turns_consumed,omitempty"`
	TimeoutSeconds int         `json:"timeout_seconds,omitempty"`
	ErrorMessage   string      `json:"error_message,omitempty"`
}

type jsonIssue struct {
	AgentName   string `json:"agent_name"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	FilePath    string `json:"file_path,omitempty"`
	LineNumber  int    `json:"line_number,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
	Category    string `json:"category,omitempty"`
}

type jsonCost struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type jsonSummary struct {
	TotalIssues         int       `json:"total_issues"`
	MaxSeverity         string    `json:"max_severity,omitempty"`
	TotalElapsedSeconds float64   `json:"total_elapsed_seconds"`
	TotalCost           *jsonCost `json:"total_cost,omitempty"`
}

type jsonAggregated struct {
	Issues             []jsonIssue        `json:"issues"`
	Strengths          []string           `json:"strengths,omitempty"`
	RecommendedActions []jsonAction       `json:"recommended_actions,omitempty"`
	AgentFailures      []jsonAgentFailure `json:"agent_failures,omitempty"`
}

type jsonAction struct {
	Description string `json:"description"`
	Priority    string `json:"priority"`
}

type jsonAgentFailure struct {
	AgentName string `json:"agent_name"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
}

type jsonLoadError struct {
	Name  string `json:"name,omitempty"`
	File  string `json:"file,omitempty"`
	Cause string `json:"cause"`
}

// JSON renders report as an indented JSON document.
func JSON(report model.ReviewReport) ([]byte, error) {
	out := jsonReport{
		Results:          toJSONResults(report.Results),
		Summary:          toJSONSummary(report.Summary),
		AggregationError: report.AggregationError,
	}
	if report.Aggregated != nil {
		out.Aggregated = &jsonAggregated{
			Issues:             toJSONIssues(report.Aggregated.Issues),
			Strengths:          report.Aggregated.Strengths,
			RecommendedActions: toJSONActions(report.Aggregated.RecommendedActions),
			AgentFailures:      toJSONAgentFailures(report.Aggregated.AgentFailures),
		}
	}
	for _, e := range report.LoadErrors {
		out.LoadErrors = append(out.LoadErrors, jsonLoadError{Name: e.Name, File: e.File, Cause: e.Cause})
	}
	return json.MarshalIndent(out, "", "  ")
}

func toJSONResults(results []model.AgentResult) []jsonResult {
	out := make([]jsonResult, len(results))
	for i, r := range results {
		out[i] = toJSONResult(r)
	}
	return out
}

func toJSONResult(r model.AgentResult) jsonResult {
	switch v := r.(type) {
	case model.SuccessResult:
		return jsonResult{
			Status:         v.Status(),
			AgentName:      v.AgentName,
			Issues:         toJSONIssues(v.Issues),
			ElapsedSeconds: v.Elapsed.Seconds(),
			Cost:           toJSONCost(v.Cost),
		}
	case model.TruncatedResult:
		return jsonResult{
			Status:         v.Status(),
			AgentName:      v.AgentName,
			Issues:         toJSONIssues(v.Issues),
			ElapsedSeconds: v.Elapsed.Seconds(),
			TurnsConsumed:  v.TurnsConsumed,
		}
	case model.TimeoutResult:
		return jsonResult{Status: v.Status(), AgentName: v.AgentName, TimeoutSeconds: v.TimeoutSeconds}
	case model.ErrorResult:
		return jsonResult{Status: v.Status(), AgentName: v.AgentName, ErrorMessage: v.ErrorMessage}
	default:
		panic(fmt.Sprintf("render: unhandled AgentResult variant %T", r))
	}
}

func toJSONIssues(issues []model.ReviewIssue) []jsonIssue {
	if len(issues) == 0 {
		return nil
	}
	out := make([]jsonIssue, len(issues))
	for i, issue := range issues {
		ji := jsonIssue{
			AgentName:   issue.AgentName,
			Severity:    issue.Severity.String(),
			Description: issue.Description,
			Suggestion:  issue.Suggestion,
			Category:    issue.Category,
		}
		if issue.Location != nil {
			ji.FilePath = issue.Location.FilePath
			ji.LineNumber = issue.Location.LineNumber
		}
		out[i] = ji
	}
	return out
}

func toJSONCost(c *model.Cost) *jsonCost {
	if c == nil {
		return nil
	}
	return &jsonCost{InputTokens: c.InputTokens, OutputTokens: c.OutputTokens}
}

func toJSONSummary(s model.ReviewSummary) jsonSummary {
	out := jsonSummary{
		TotalIssues:         s.TotalIssues,
		TotalElapsedSeconds: s.TotalElapsedTime.Seconds(),
		TotalCost:           toJSONCost(s.TotalCost),
	}
	if s.MaxSeverity != nil {
		out.MaxSeverity = s.MaxSeverity.String()
	}
	return out
}

func toJSONActions(actions []model.RecommendedAction) []jsonAction {
	out := make([]jsonAction, len(actions))
	for i, a := range actions {
		out[i] = jsonAction{Description: a.Description, Priority: string(a.Priority)}
	}
	return out
}

func toJSONAgentFailures(failures []model.AgentFailure) []jsonAgentFailure {
	out := make([]jsonAgentFailure, len(failures))
	for i, f := range failures {
		out[i] = jsonAgentFailure{AgentName: f.AgentName, Kind: f.Kind, Detail: f.Detail}
	}
	return out
}
