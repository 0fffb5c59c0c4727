package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProjectConfigFile_WalksUpToAncestor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".hachimoku"), 0o755))
	nested := filepath.Join(root, "a", "b", "c")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, ok := FindProjectConfigFile(nested)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, ".hachimoku", "config.toml"), path)
}

func TestFindProjectConfigFile_NoneFound(t *testing.T) {
	dir := t.TempDir()
	_, ok := FindProjectConfigFile(dir)
	assert.False(t, ok)
}

func TestFindPyprojectToml_WalksUpToAncestor(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(""), 0o644))
	nested := filepath.Join(root, "x", "y")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, ok := FindPyprojectToml(nested)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, "pyproject.toml"), path)
}

func TestUserConfigPath_UnderHomeConfigDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	path, err := UserConfigPath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "hachimoku", "config.toml"), path)
}
