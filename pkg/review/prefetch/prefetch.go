// Package prefetch eagerly resolves the Issue/PR/convention-file context a
// selector agent would otherwise spend tool turns fetching for itself.
package prefetch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strconv"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

const (
	issueCharCap      = 5000
	prCharCap         = 3000
	conventionCharCap = 5000
	referencedCharCap = 3000
)

// DefaultConventionFiles are read relative to the working directory when the
// caller doesn't override the list via config.
var DefaultConventionFiles = []string{"CLAUDE.md", ".hachimoku/config.toml"}

// GitHubFetcher fetches Issue bodies and PR metadata. The concrete
// implementation shells out to `gh`; tests substitute a stub.
type GitHubFetcher interface {
	FetchIssue(ctx context.Context, number int) (string, error)
	FetchPR(ctx context.Context, number int) (string, error)
}

// PrefetchedContext is everything eagerly resolved before the selector runs.
type PrefetchedContext struct {
	IssueBody        string
	PRMetadata       string
	ConventionFiles  map[string]string // path -> capped content, insertion order not guaranteed
	ReferencedIssues map[int]string    // issue number -> capped body
}

// Empty reports whether no field carries any data, used to decide whether
// the instruction builder emits a prefetched-context section at all.
func (p PrefetchedContext) Empty() bool {
	return p.IssueBody == "" && p.PRMetadata == "" && len(p.ConventionFiles) == 0 && len(p.ReferencedIssues) == 0
}

// Prefetcher resolves a PrefetchedContext for one target.
type Prefetcher struct {
	WorkDir         string
	Fetcher         GitHubFetcher
	ConventionFiles []string // defaults to DefaultConventionFiles when nil
	Logger          *slog.Logger
}

// New builds a Prefetcher rooted at workDir.
func New(workDir string, fetcher GitHubFetcher, conventionFiles []string, logger *slog.Logger) *Prefetcher {
	if conventionFiles == nil {
		conventionFiles = DefaultConventionFiles
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Prefetcher{WorkDir: workDir, Fetcher: fetcher, ConventionFiles: conventionFiles, Logger: logger}
}

var issueRefPattern = regexp.MustCompile(`#(\d+)`)

// Prefetch runs the four-step eager-fetch sequence described in the
// component design: explicitly named issue, PR metadata, convention files,
// then heuristic #NNN references scanned out of resolvedContent.
//
// Failures fetching the explicitly named issue/PR are returned as errors
// (they abort the pipeline, per the propagation policy); failures reading
// an existing-but-unreadable convention file are returned as errors;
// failures fetching heuristic referenced issues are logged and dropped.
func (p *Prefetcher) Prefetch(ctx context.Context, target model.ReviewTarget, resolvedContent string) (PrefetchedContext, error) {
	var out PrefetchedContext

	if n := target.IssueNumber(); n > 0 {
		body, err := p.Fetcher.FetchIssue(ctx, n)
		if err != nil {
			return PrefetchedContext{}, fmt.Errorf("fetching issue #%d: %w", n, err)
		}
		out.IssueBody = cap_(body, issueCharCap)
	}

	if pr, ok := target.(model.PRTarget); ok {
		meta, err := p.Fetcher.FetchPR(ctx, pr.PRNumber)
		if err != nil {
			return PrefetchedContext{}, fmt.Errorf("fetching PR #%d metadata: %w", pr.PRNumber, err)
		}
		out.PRMetadata = cap_(meta, prCharCap)
	}

	conventions, err := p.readConventionFiles()
	if err != nil {
		return PrefetchedContext{}, err
	}
	out.ConventionFiles = conventions

	out.ReferencedIssues = p.fetchReferencedIssues(ctx, target, resolvedContent)

	return out, nil
}

func (p *Prefetcher) readConventionFiles() (map[string]string, error) {
	result := make(map[string]string)
	for _, rel := range p.ConventionFiles {
		full := filepath.Join(p.WorkDir, rel)
		data, err := os.ReadFile(full)
		if err != nil {
			if os.IsNotExist(err) {
				continue // missing files are skipped silently
			}
			return nil, fmt.Errorf("reading convention file %q: %w", rel, err)
		}
		result[rel] = cap_(string(data), conventionCharCap)
	}
	return result, nil
}

func (p *Prefetcher) fetchReferencedIssues(ctx context.Context, target model.ReviewTarget, resolvedContent string) map[int]string {
	excluded := target.IssueNumber()
	seen := make(map[int]bool)
	result := make(map[int]string)
	for _, m := range issueRefPattern.FindAllStringSubmatch(resolvedContent, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil || n <= 0 || n == excluded || seen[n] {
			continue
		}
		seen[n] = true
		body, err := p.Fetcher.FetchIssue(ctx, n)
		if err != nil {
			p.Logger.Warn("prefetch: dropping heuristic issue reference", "issue", n, "error", err)
			continue
		}
		result[n] = cap_(body, referencedCharCap)
	}
	return result
}

func cap_(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	return fmt.Sprintf("%s... (truncated, original: %d chars)", s[:limit], len(s))
}
