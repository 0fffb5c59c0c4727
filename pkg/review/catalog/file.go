package catalog

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// FileReadMaxBytes bounds how much of a single file read_file will return.
const FileReadMaxBytes = 1 << 20 // 1 MiB

func fileReadHandles(workDir string) []Handle {
	return []Handle{
		{
			Name:    "read_file",
			Builtin: false,
			Invoke: func(_ context.Context, argv []string) (string, error) {
				if len(argv) < 1 {
					return "", fmt.Errorf("read_file: path argument required")
				}
				return readFileBounded(workDir, argv[0])
			},
		},
		{
			Name:    "list_directory",
			Builtin: false,
			Invoke: func(_ context.Context, argv []string) (string, error) {
				if len(argv) < 1 {
					return "", fmt.Errorf("list_directory: path argument required")
				}
				glob := ""
				if len(argv) > 1 {
					glob = argv[1]
				}
				return listDirectory(workDir, argv[0], glob)
			},
		},
	}
}

func readFileBounded(workDir, path string) (string, error) {
	full := resolveWithinRoot(workDir, path)
	data, err := os.ReadFile(full)
	if err != nil {
		return "", fmt.Errorf("read_file %q: %w", path, err)
	}
	if len(data) > FileReadMaxBytes {
		data = data[:FileReadMaxBytes]
	}
	return string(data), nil
}

func listDirectory(workDir, path, glob string) (string, error) {
	full := resolveWithinRoot(workDir, path)
	entries, err := os.ReadDir(full)
	if err != nil {
		return "", fmt.Errorf("list_directory %q: %w", path, err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if glob != "" {
			ok, err := filepath.Match(glob, e.Name())
			if err != nil || !ok {
				continue
			}
		}
		name := e.Name()
		if e.IsDir() {
			name += "/"
		}
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, "\n"), nil
}

// resolveWithinRoot joins a requested path to workDir; it does not attempt
// to sandbox against ".." path traversal because the agents invoking these
// tools run with the same filesystem privileges as the orchestrator process.
func resolveWithinRoot(workDir, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(workDir, path)
}
