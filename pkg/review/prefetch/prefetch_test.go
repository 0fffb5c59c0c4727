package prefetch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubFetcher struct {
	issues map[int]string
	prs    map[int]string
	failOn map[int]bool
}

func (s stubFetcher) FetchIssue(_ context.Context, n int) (string, error) {
	if s.failOn[n] {
		return "", errors.New("boom")
	}
	return s.issues[n], nil
}

func (s stubFetcher) FetchPR(_ context.Context, n int) (string, error) {
	return s.prs[n], nil
}

func TestPrefetch_ExplicitIssueCappedAndMarked(t *testing.T) {
	fetcher := stubFetcher{issues: map[int]string{7: strings.Repeat("x", issueCharCap+100)}}
	p := New(t.TempDir(), fetcher, []string{}, nil)

	out, err := p.Prefetch(context.Background(), model.DiffTarget{BaseBranch: "main", IssueNumberOp: 7}, "")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(out.IssueBody, "... (truncated, original: "+strconv.Itoa(issueCharCap+100)+" chars)"))
}

func TestPrefetch_ExplicitIssueFetchFailureAborts(t *testing.T) {
	fetcher := stubFetcher{failOn: map[int]bool{7: true}}
	p := New(t.TempDir(), fetcher, []string{}, nil)

	_, err := p.Prefetch(context.Background(), model.DiffTarget{BaseBranch: "main", IssueNumberOp: 7}, "")
	require.Error(t, err)
}

func TestPrefetch_HeuristicReferenceFailureIsDropped(t *testing.T) {
	fetcher := stubFetcher{issues: map[int]string{42: "referenced body"}, failOn: map[int]bool{99: true}}
	p := New(t.TempDir(), fetcher, []string{}, nil)

	out, err := p.Prefetch(context.Background(), model.DiffTarget{BaseBranch: "main"}, "see #42 and #99")
	require.NoError(t, err)
	assert.Equal(t, "referenced body", out.ReferencedIssues[42])
	assert.NotContains(t, out.ReferencedIssues, 99)
}

func TestPrefetch_HeuristicReferenceExcludesTargetIssueNumber(t *testing.T) {
	fetcher := stubFetcher{issues: map[int]string{7: "explicit", 42: "other"}}
	p := New(t.TempDir(), fetcher, []string{}, nil)

	out, err := p.Prefetch(context.Background(), model.DiffTarget{BaseBranch: "main", IssueNumberOp: 7}, "refs #7 and #42")
	require.NoError(t, err)
	assert.NotContains(t, out.ReferencedIssues, 7)
	assert.Equal(t, "other", out.ReferencedIssues[42])
}

func TestPrefetch_MissingConventionFileSkippedSilently(t *testing.T) {
	p := New(t.TempDir(), stubFetcher{}, []string{"CLAUDE.md"}, nil)
	out, err := p.Prefetch(context.Background(), model.DiffTarget{BaseBranch: "main"}, "")
	require.NoError(t, err)
	assert.Empty(t, out.ConventionFiles)
}

func TestPrefetch_UnreadableExistingConventionFileRaises(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "locked.md")
	require.NoError(t, os.WriteFile(sub, []byte("content"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(sub, 0o644) })

	p := New(dir, stubFetcher{}, []string{"locked.md"}, nil)
	_, err := p.Prefetch(context.Background(), model.DiffTarget{BaseBranch: "main"}, "")
	if os.Getuid() == 0 {
		t.Skip("running as root, permission bits are not enforced")
	}
	require.Error(t, err)
}
