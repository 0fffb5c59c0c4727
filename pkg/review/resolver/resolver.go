// Package resolver turns a ReviewTarget into the raw review payload: a
// unified diff, a PR diff, or concatenated file contents. These subprocess
// calls are the engine's own — distinct from the agent-facing tool catalog.
package resolver

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// ErrEmptyMergeBase, ErrNonUTF8, ErrFileAccess are the typed resolve errors
// the content resolver can raise.
var (
	ErrEmptyMergeBase = errors.New("merge-base resolved to empty output")
	ErrNonUTF8        = errors.New("file is not valid UTF-8")
	ErrFileAccess     = errors.New("file access error")
)

// Resolver resolves a ReviewTarget into review payload text, rooted at
// WorkDir.
type Resolver struct {
	WorkDir string
}

// New builds a Resolver rooted at workDir.
func New(workDir string) *Resolver {
	return &Resolver{WorkDir: workDir}
}

// Resolve dispatches on the target's concrete variant. Every branch is
// covered; an unrecognized variant is a programming error, not a runtime
// one, so it panics rather than returning a silent default.
func (r *Resolver) Resolve(ctx context.Context, target model.ReviewTarget) (string, error) {
	switch t := target.(type) {
	case model.DiffTarget:
		return r.resolveDiff(ctx, t)
	case model.PRTarget:
		return r.resolvePR(ctx, t)
	case model.FileTarget:
		return r.resolveFiles(ctx, t)
	default:
		panic(fmt.Sprintf("resolver: unhandled ReviewTarget variant %T", target))
	}
}

func (r *Resolver) resolveDiff(ctx context.Context, t model.DiffTarget) (string, error) {
	mergeBase, err := r.run(ctx, "git", "merge-base", t.BaseBranch, "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolving merge-base against %q: %w", t.BaseBranch, err)
	}
	mergeBase = strings.TrimSpace(mergeBase)
	if mergeBase == "" {
		return "", fmt.Errorf("%w: base_branch=%q. Ensure the branch exists and shares history with HEAD", ErrEmptyMergeBase, t.BaseBranch)
	}
	diff, err := r.run(ctx, "git", "diff", mergeBase)
	if err != nil {
		return "", fmt.Errorf("computing diff from merge-base %q: %w", mergeBase, err)
	}
	return diff, nil
}

func (r *Resolver) resolvePR(ctx context.Context, t model.PRTarget) (string, error) {
	diff, err := r.run(ctx, "gh", "pr", "diff", fmt.Sprintf("%d", t.PRNumber))
	if err != nil {
		return "", fmt.Errorf("fetching diff for PR #%d: %w. Ensure gh is authenticated", t.PRNumber, err)
	}
	return diff, nil
}

func (r *Resolver) resolveFiles(_ context.Context, t model.FileTarget) (string, error) {
	var buf strings.Builder
	for i, path := range t.Paths {
		full := path
		if !filepath.IsAbs(full) {
			full = filepath.Join(r.WorkDir, path)
		}
		data, err := os.ReadFile(full)
		if err != nil {
			return "", fmt.Errorf("%w: %q: %w. Check the path exists and is readable", ErrFileAccess, path, err)
		}
		if !utf8.Valid(data) {
			return "", fmt.Errorf("%w: %q", ErrNonUTF8, path)
		}
		if i > 0 {
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("--- %s ---\n", path))
		buf.Write(data)
	}
	return buf.String(), nil
}

func (r *Resolver) run(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.WorkDir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("%s %v: %w: %s", name, args, err, stderr.String())
	}
	out := stdout.Bytes()
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: output of %s %v", ErrNonUTF8, name, args)
	}
	return string(out), nil
}
