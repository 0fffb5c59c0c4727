package config

import (
	"os"
	"path/filepath"
)

const (
	projectDirName     = ".hachimoku"
	projectConfigFile  = "config.toml"
	pyprojectFileName  = "pyproject.toml"
	userConfigRelative = "hachimoku/config.toml"
)

// UserConfigPath returns ~/.config/hachimoku/config.toml, the fixed
// location of the user-global layer.
func UserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", userConfigRelative), nil
}

// FindProjectConfigFile walks start's ancestor directories looking for a
// .hachimoku directory and returns the path its config.toml would have,
// whether or not that file actually exists yet.
func FindProjectConfigFile(start string) (string, bool) {
	dir, ok := findAncestorDir(start, projectDirName)
	if !ok {
		return "", false
	}
	return filepath.Join(dir, projectConfigFile), true
}

// FindPyprojectToml walks start's ancestor directories looking for a
// pyproject.toml file.
func FindPyprojectToml(start string) (string, bool) {
	return findAncestorFile(start, pyprojectFileName)
}

func findAncestorDir(start, name string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

func findAncestorFile(start, name string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
