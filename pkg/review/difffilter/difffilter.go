// Package difffilter splits a unified diff into per-file sections and keeps
// only the sections whose destination path's basename matches a set of
// glob patterns.
package difffilter

import (
	"path"
	"path/filepath"
	"strings"
)

const sectionMarker = "diff --git "

// Filter keeps only the sections of diffText whose destination basename
// matches at least one of patterns.
//
// Policies, in order: if patterns is empty, or diffText does not look like
// unified-diff output (no "diff --git " section markers at all), the input
// is returned unchanged. Identical destination paths deduplicate, first
// occurrence wins. If no section matches, the function falls back to
// returning the full, unfiltered input — a deliberate "don't send an empty
// prompt" recovery, not an error.
func Filter(diffText string, patterns []string) string {
	if len(patterns) == 0 {
		return diffText
	}
	sections := splitSections(diffText)
	if sections == nil {
		return diffText
	}

	seen := make(map[string]bool, len(sections))
	var kept []string
	for _, sec := range sections {
		if sec.destPath == "" || seen[sec.destPath] {
			continue
		}
		if !matchesAny(filepath.Base(sec.destPath), patterns) {
			continue
		}
		seen[sec.destPath] = true
		kept = append(kept, sec.text)
	}

	if len(kept) == 0 {
		return diffText
	}
	return strings.Join(kept, "")
}

// ChangedPaths returns the deduplicated, first-seen-order destination paths
// of every section in diffText, or nil if diffText doesn't look like
// unified-diff output.
func ChangedPaths(diffText string) []string {
	sections := splitSections(diffText)
	if sections == nil {
		return nil
	}
	seen := make(map[string]bool, len(sections))
	var paths []string
	for _, sec := range sections {
		if sec.destPath == "" || seen[sec.destPath] {
			continue
		}
		seen[sec.destPath] = true
		paths = append(paths, sec.destPath)
	}
	return paths
}

type section struct {
	destPath string
	text     string
}

// splitSections splits diffText on lines beginning with "diff --git ",
// returning nil when diffText contains no such marker at all (the "not
// unified-diff formatted" case).
func splitSections(diffText string) []section {
	lines := strings.SplitAfter(diffText, "\n")
	var sections []section
	var current strings.Builder
	var currentDest string
	started := false

	flush := func() {
		if started {
			sections = append(sections, section{destPath: currentDest, text: current.String()})
		}
		current.Reset()
		currentDest = ""
	}

	for _, line := range lines {
		if strings.HasPrefix(line, sectionMarker) {
			flush()
			started = true
			currentDest = extractDestPath(line)
		}
		if started {
			current.WriteString(line)
		}
	}
	flush()

	if !started && len(sections) == 0 {
		return nil
	}
	return sections
}

// extractDestPath pulls the "b/..." destination path out of a
// "diff --git a/<path> b/<path>" header line. The last " b/" marker wins,
// so a source path that itself contains " b/" cannot truncate the
// destination.
func extractDestPath(headerLine string) string {
	rest := strings.TrimPrefix(headerLine, sectionMarker)
	rest = strings.TrimRight(rest, "\r\n")
	idx := strings.LastIndex(rest, " b/")
	if idx == -1 {
		return ""
	}
	return rest[idx+len(" b/"):]
}

func matchesAny(basename string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := path.Match(p, basename); err == nil && ok {
			return true
		}
	}
	return false
}
