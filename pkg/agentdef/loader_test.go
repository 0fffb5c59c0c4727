package agentdef

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAgents_Builtin(t *testing.T) {
	sub, err := BuiltinSub()
	require.NoError(t, err)

	defs, errs := LoadAgents(sub, "")
	require.Empty(t, errs)
	require.NotEmpty(t, defs)

	names := make(map[string]bool)
	for _, d := range defs {
		names[d.Name] = true
	}
	assert.True(t, names["code-reviewer"])
	assert.True(t, names["security-reviewer"])
}

func TestLoadAgents_ExcludesSelectorAndAggregator(t *testing.T) {
	sub, err := BuiltinSub()
	require.NoError(t, err)
	defs, _ := LoadAgents(sub, "")
	for _, d := range defs {
		assert.NotEqual(t, "selector", d.Name)
		assert.NotEqual(t, "aggregator", d.Name)
	}
}

func TestLoadAgents_CustomOverridesBuiltinByName(t *testing.T) {
	sub, err := BuiltinSub()
	require.NoError(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "code-reviewer.toml", `
name = "code-reviewer"
description = "custom override"
model = "custom-model"
system_prompt = "custom prompt"
`)

	defs, errs := LoadAgents(sub, dir)
	require.Empty(t, errs)

	var found bool
	for _, d := range defs {
		if d.Name == "code-reviewer" {
			found = true
			assert.Equal(t, "custom-model", d.Model)
		}
	}
	assert.True(t, found)
}

func TestLoadAgents_CustomAddsNewAgent(t *testing.T) {
	sub, err := BuiltinSub()
	require.NoError(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "my-custom.toml", `
name = "my-custom"
description = "custom agent"
model = "custom-model"
system_prompt = "custom prompt"
`)

	defs, errs := LoadAgents(sub, dir)
	require.Empty(t, errs)

	var found bool
	for _, d := range defs {
		if d.Name == "my-custom" {
			found = true
		}
	}
	assert.True(t, found)
}

func TestLoadAgents_InvalidFileBecomesLoadError(t *testing.T) {
	sub, err := BuiltinSub()
	require.NoError(t, err)

	dir := t.TempDir()
	writeFile(t, dir, "bad.toml", `name = "Bad Name!"`)

	_, errs := LoadAgents(sub, dir)
	require.NotEmpty(t, errs)
}

func TestLoadSelector_Builtin(t *testing.T) {
	sub, err := BuiltinSub()
	require.NoError(t, err)

	def, err := LoadSelector(sub, "")
	require.NoError(t, err)
	assert.NotEmpty(t, def.SystemPrompt)
	assert.NotEmpty(t, def.Model)
}

func TestLoadAggregator_Builtin(t *testing.T) {
	sub, err := BuiltinSub()
	require.NoError(t, err)

	def, err := LoadAggregator(sub, "")
	require.NoError(t, err)
	assert.NotEmpty(t, def.SystemPrompt)
}

func TestLoadSelector_CustomOverrides(t *testing.T) {
	sub, err := BuiltinSub()
	require.NoError(t, err)

	dir := t.TempDir()
	writeFile(t, dir, SelectorFilename, `
model = "custom-selector-model"
system_prompt = "custom selector prompt"
`)

	def, err := LoadSelector(sub, dir)
	require.NoError(t, err)
	assert.Equal(t, "custom-selector-model", def.Model)
}

func writeFile(t *testing.T, dir, name, contents string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0o644))
}
