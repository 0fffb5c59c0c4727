package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve_DefaultsOnly(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()

	cfg, err := Resolve(work, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
	assert.Equal(t, 600, cfg.Timeout)
	assert.True(t, cfg.Parallel)
	assert.Equal(t, "main", cfg.BaseBranch)
	assert.True(t, cfg.Aggregation.Enabled)
	assert.Equal(t, []string{"CLAUDE.md", ".hachimoku/config.toml"}, cfg.Selector.ConventionFiles)
}

func TestResolve_ProjectConfigOverridesUser(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	userDir := filepath.Join(home, ".config", "hachimoku")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.toml"), []byte(`
model = "user-model"
parallel = false
`), 0o644))

	work := t.TempDir()
	projectDir := filepath.Join(work, ".hachimoku")
	require.NoError(t, os.MkdirAll(projectDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "config.toml"), []byte(`
model = "project-model"
`), 0o644))

	cfg, err := Resolve(work, Overrides{})
	require.NoError(t, err)

	assert.Equal(t, "project-model", cfg.Model)
	// parallel = false set only by the user layer must survive: project
	// config's absence of the key must not revert it to the built-in true.
	assert.False(t, cfg.Parallel)
}

func TestResolve_PyprojectTableMergesBeneathProjectConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "pyproject.toml"), []byte(`
[tool.hachimoku]
model = "pyproject-model"
max_turns = 10
`), 0o644))

	cfg, err := Resolve(work, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "pyproject-model", cfg.Model)
	assert.Equal(t, 10, cfg.MaxTurns)
}

func TestResolve_PyprojectWithoutHachimokuTableIsIgnored(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	work := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(work, "pyproject.toml"), []byte(`
[tool.other]
x = 1
`), 0o644))

	cfg, err := Resolve(work, Overrides{})
	require.NoError(t, err)
	assert.Equal(t, "claude-sonnet-4-5", cfg.Model)
}

func TestResolve_CLIOverridesWinOverFiles(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()
	projectDir := filepath.Join(work, ".hachimoku")
	require.NoError(t, os.MkdirAll(projectDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "config.toml"), []byte(`
model = "project-model"
`), 0o644))

	cliModel := "cli-model"
	cfg, err := Resolve(work, Overrides{Model: &cliModel})
	require.NoError(t, err)
	assert.Equal(t, "cli-model", cfg.Model)
}

func TestResolve_AgentsMergeFieldWiseAcrossLayers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	userDir := filepath.Join(home, ".config", "hachimoku")
	require.NoError(t, os.MkdirAll(userDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(userDir, "config.toml"), []byte(`
[agents.security-reviewer]
timeout = 500
`), 0o644))

	work := t.TempDir()
	projectDir := filepath.Join(work, ".hachimoku")
	require.NoError(t, os.MkdirAll(projectDir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(projectDir, "config.toml"), []byte(`
[agents.security-reviewer]
enabled = false
`), 0o644))

	cfg, err := Resolve(work, Overrides{})
	require.NoError(t, err)

	override, ok := cfg.AgentOverride("security-reviewer")
	require.True(t, ok)
	assert.False(t, override.Enabled)
	require.NotNil(t, override.Timeout)
	assert.Equal(t, 500, *override.Timeout)
}

func TestResolve_MissingLayersProduceNoError(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	work := t.TempDir()

	_, err := Resolve(work, Overrides{})
	assert.NoError(t, err)
}
