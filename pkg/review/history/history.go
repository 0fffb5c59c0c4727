// Package history is the history-writer collaborator from spec.md §6
// "Persisted state": it appends one JSON-object-per-line record to
// <project>/.hachimoku/reviews/{diff.jsonl|files.jsonl|pr-<N>.jsonl}. The
// core engine never imports this package — a caller (cmd/reviewfleet)
// invokes it after a Run call, same as the upstream CLI's own
// _history_writer.py treats it as a post-processing step, not a pipeline
// stage.
package history

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

const gitTimeout = 5 * time.Second

// ErrWriteFailed and ErrGitInfo are the two distinct failure modes a
// history write can raise: the append itself, and (diff/PR modes only)
// resolving the commit hash / branch name it's tagged with.
var (
	ErrWriteFailed = errors.New("history: failed to write review record")
	ErrGitInfo     = errors.New("history: failed to resolve git info")
)

// Writer appends review records under ProjectDir/.hachimoku/reviews/.
type Writer struct {
	ProjectDir string
}

// New builds a Writer rooted at projectDir.
func New(projectDir string) *Writer {
	return &Writer{ProjectDir: projectDir}
}

// record is the on-disk JSON shape for one line. All three review_mode
// variants share one struct with mode-specific fields left at their zero
// value, matching the discriminated-union wire shape spec.md §6 names
// without needing Go-side sum-type machinery for a pure serialization
// record.
type record struct {
	ID               string         `json:"id"`
	ReviewMode       string         `json:"review_mode"`
	ReviewedAt       time.Time      `json:"reviewed_at"`
	CommitHash       string         `json:"commit_hash,omitempty"`
	BranchName       string         `json:"branch_name,omitempty"`
	PRNumber         int            `json:"pr_number,omitempty"`
	FilePaths        []string       `json:"file_paths,omitempty"`
	WorkingDirectory string         `json:"working_directory,omitempty"`
	Results          []resultRecord `json:"results"`
	Summary          summaryRecord  `json:"summary"`
}

type resultRecord struct {
	Status         string        `json:"status"`
	AgentName      string        `json:"agent_name"`
	Issues         []issueRecord `json:"issues,omitempty"`
	ElapsedSeconds float64       `json:"elapsed_seconds,omitempty"`
	Cost           *costRecord   `json:"cost,omitempty"`
	TurnsConsumed  int           `json:"turns_consumed,omitempty"`
	TimeoutSeconds int           `json:"timeout_seconds,omitempty"`
	ErrorMessage   string        `json:"error_message,omitempty"`
}

type issueRecord struct {
	Severity    string `json:"severity"`
	Description string `json:"description"`
	FilePath    string `json:"file_path,omitempty"`
	LineNumber  int    `json:"line_number,omitempty"`
	Suggestion  string `json:"suggestion,omitempty"`
	Category    string `json:"category,omitempty"`
}

type costRecord struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

type summaryRecord struct {
	TotalIssues      int         `json:"total_issues"`
	MaxSeverity      string      `json:"max_severity,omitempty"`
	TotalElapsedTime float64     `json:"total_elapsed_seconds"`
	TotalCost        *costRecord `json:"total_cost,omitempty"`
}

func toIssueRecords(issues []model.ReviewIssue) []issueRecord {
	if len(issues) == 0 {
		return nil
	}
	out := make([]issueRecord, len(issues))
	for i, iss := range issues {
		r := issueRecord{
			Severity:    iss.Severity.String(),
			Description: iss.Description,
			Suggestion:  iss.Suggestion,
			Category:    iss.Category,
		}
		if iss.Location != nil {
			r.FilePath = iss.Location.FilePath
			r.LineNumber = iss.Location.LineNumber
		}
		out[i] = r
	}
	return out
}

func toCostRecord(c *model.Cost) *costRecord {
	if c == nil {
		return nil
	}
	return &costRecord{InputTokens: c.InputTokens, OutputTokens: c.OutputTokens}
}

// toResultRecord flattens one AgentResult variant into its serializable
// shape. Every variant must be handled; an unrecognized one is a
// programming error, matching the panic-on-unhandled-variant convention
// used throughout pkg/review/model.
func toResultRecord(r model.AgentResult) resultRecord {
	switch v := r.(type) {
	case model.SuccessResult:
		return resultRecord{
			Status:         v.Status(),
			AgentName:      v.AgentName,
			Issues:         toIssueRecords(v.Issues),
			ElapsedSeconds: v.Elapsed.Seconds(),
			Cost:           toCostRecord(v.Cost),
		}
	case model.TruncatedResult:
		return resultRecord{
			Status:         v.Status(),
			AgentName:      v.AgentName,
			Issues:         toIssueRecords(v.Issues),
			ElapsedSeconds: v.Elapsed.Seconds(),
			TurnsConsumed:  v.TurnsConsumed,
		}
	case model.TimeoutResult:
		return resultRecord{
			Status:         v.Status(),
			AgentName:      v.AgentName,
			TimeoutSeconds: v.TimeoutSeconds,
		}
	case model.ErrorResult:
		return resultRecord{
			Status:       v.Status(),
			AgentName:    v.AgentName,
			ErrorMessage: v.ErrorMessage,
		}
	default:
		panic(fmt.Sprintf("history: unhandled AgentResult variant %T", r))
	}
}

func toSummaryRecord(s model.ReviewSummary) summaryRecord {
	out := summaryRecord{
		TotalIssues:      s.TotalIssues,
		TotalElapsedTime: s.TotalElapsedTime.Seconds(),
		TotalCost:        toCostRecord(s.TotalCost),
	}
	if s.MaxSeverity != nil {
		out.MaxSeverity = s.MaxSeverity.String()
	}
	return out
}

// Append writes one record for report to the JSONL file target.Mode()
// selects, creating <ProjectDir>/.hachimoku/reviews/ if needed, and
// returns the path written to.
func (w *Writer) Append(ctx context.Context, target model.ReviewTarget, report model.ReviewReport) (string, error) {
	reviewsDir := filepath.Join(w.ProjectDir, ".hachimoku", "reviews")
	if err := os.MkdirAll(reviewsDir, 0o755); err != nil {
		return "", fmt.Errorf("%w: creating %s: %w", ErrWriteFailed, reviewsDir, err)
	}

	rec := record{
		ID:         uuid.NewString(),
		ReviewMode: target.Mode(),
		ReviewedAt: time.Now().UTC(),
		Results:    toResultRecords(report.Results),
		Summary:    toSummaryRecord(report.Summary),
	}

	switch t := target.(type) {
	case model.DiffTarget:
		commitHash, branchName, err := gitInfo(ctx, w.ProjectDir)
		if err != nil {
			return "", err
		}
		rec.CommitHash = commitHash
		rec.BranchName = branchName
	case model.PRTarget:
		commitHash, branchName, err := gitInfo(ctx, w.ProjectDir)
		if err != nil {
			return "", err
		}
		rec.CommitHash = commitHash
		rec.BranchName = branchName
		rec.PRNumber = t.PRNumber
	case model.FileTarget:
		rec.FilePaths = dedupe(t.Paths)
		abs, err := filepath.Abs(w.ProjectDir)
		if err != nil {
			return "", fmt.Errorf("%w: resolving working directory: %w", ErrWriteFailed, err)
		}
		rec.WorkingDirectory = abs
	default:
		panic(fmt.Sprintf("history: unhandled ReviewTarget variant %T", target))
	}

	path := filepath.Join(reviewsDir, filename(target))
	if err := appendLine(path, rec); err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrWriteFailed, path, err)
	}
	return path, nil
}

func toResultRecords(results []model.AgentResult) []resultRecord {
	out := make([]resultRecord, len(results))
	for i, r := range results {
		out[i] = toResultRecord(r)
	}
	return out
}

func dedupe(paths []string) []string {
	seen := make(map[string]bool, len(paths))
	var out []string
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

func filename(target model.ReviewTarget) string {
	switch t := target.(type) {
	case model.DiffTarget:
		return "diff.jsonl"
	case model.FileTarget:
		return "files.jsonl"
	case model.PRTarget:
		return fmt.Sprintf("pr-%d.jsonl", t.PRNumber)
	default:
		panic(fmt.Sprintf("history: unhandled ReviewTarget variant %T", target))
	}
}

func appendLine(path string, rec record) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshaling review record: %w", err)
	}
	data = append(data, '\n')
	_, err = f.Write(data)
	return err
}

// gitInfo resolves the current commit hash and branch name, used only for
// diff/PR mode records. A detached HEAD yields branch name "HEAD", matching
// `git rev-parse --abbrev-ref HEAD`'s own behavior.
func gitInfo(ctx context.Context, dir string) (commitHash, branchName string, err error) {
	commitHash, err = runGit(ctx, dir, "rev-parse", "HEAD")
	if err != nil {
		return "", "", err
	}
	branchName, err = runGit(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return "", "", err
	}
	return commitHash, branchName, nil
}

func runGit(ctx context.Context, dir string, args ...string) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, gitTimeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%w: git %s: %w: %s", ErrGitInfo, strings.Join(args, " "), err, stderr.String())
	}
	return strings.TrimSpace(stdout.String()), nil
}
