package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_UnknownCategoryFailsFast(t *testing.T) {
	c := New(t.TempDir())
	_, err := c.Resolve([]string{"git_read", "shell_exec"})
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestResolve_SplitsRegularAndBuiltin(t *testing.T) {
	c := New(t.TempDir())
	resolved, err := c.Resolve([]string{"file_read", "web_fetch"})
	require.NoError(t, err)
	assert.Len(t, resolved.Builtin, 1)
	assert.Equal(t, []string{"web_fetch"}, resolved.NativeNames)
	assert.Len(t, resolved.Regular, 2) // read_file + list_directory
}

func TestGitReadHandle_RejectsDisallowedSubcommand(t *testing.T) {
	c := New(t.TempDir())
	resolved, err := c.Resolve([]string{"git_read"})
	require.NoError(t, err)
	require.Len(t, resolved.Regular, 1)

	_, err = resolved.Regular[0].Invoke(context.Background(), []string{"push", "origin", "main"})
	require.ErrorIs(t, err, ErrGitSubcommandNotAllowed)
}

func TestGitReadHandle_AllowsWhitelistedSubcommand(t *testing.T) {
	c := New(".")
	resolved, err := c.Resolve([]string{"git_read"})
	require.NoError(t, err)
	// "status" is allowed by policy even though this directory may not be a
	// git repo; the policy check happens before the subprocess is spawned,
	// so we only assert it gets past the whitelist check.
	_, err = resolved.Regular[0].Invoke(context.Background(), []string{"status"})
	assert.NotErrorIs(t, err, ErrGitSubcommandNotAllowed)
}

func TestCheckGhArgv_RejectsExplicitPOST(t *testing.T) {
	err := checkGhArgv([]string{"api", "/repos/x/y", "-X", "POST"})
	require.ErrorIs(t, err, ErrGhImpliesWrite)
}

func TestCheckGhArgv_RejectsFieldFlag(t *testing.T) {
	err := checkGhArgv([]string{"api", "/repos/x/y", "-f", "name=value"})
	require.ErrorIs(t, err, ErrGhImpliesWrite)
}

func TestCheckGhArgv_AllowsPlainGet(t *testing.T) {
	err := checkGhArgv([]string{"api", "/repos/x/y"})
	require.NoError(t, err)
}

func TestCheckGhArgv_AllowsPRView(t *testing.T) {
	err := checkGhArgv([]string{"pr", "view", "42"})
	require.NoError(t, err)
}

func TestCheckGhArgv_RejectsUnknownSubcommand(t *testing.T) {
	err := checkGhArgv([]string{"repo", "delete"})
	require.ErrorIs(t, err, ErrGhSubcommandNotAllowed)
}

func TestStripHTML(t *testing.T) {
	got := stripHTML("<html><body><p>Hello <b>World</b></p></body></html>")
	assert.Equal(t, "Hello World", got)
}
