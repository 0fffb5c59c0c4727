package model

import (
	"path"
	"path/filepath"
	"regexp"
)

// FileLocation pins a finding to a specific source position.
type FileLocation struct {
	FilePath   string
	LineNumber int // >= 1
}

// ReviewIssue is one finding reported by a review agent.
type ReviewIssue struct {
	AgentName   string
	Severity    Severity
	Description string
	Location    *FileLocation
	Suggestion  string
	Category    string
}

// ApplicabilityRule decides whether an agent is a candidate for a given
// change: it matches when Always is set, or when any FilePattern glob
// matches the basename of any changed path, or when any ContentPattern
// regex matches in the review payload text.
type ApplicabilityRule struct {
	Always          bool
	FilePatterns    []string
	ContentPatterns []string
}

// Matches reports whether the rule matches this change: Always is set, or
// any FilePatterns glob matches the basename of any changedPath, or any
// ContentPatterns regex finds a match in payload. An invalid glob or regex
// is treated as a non-match for that single pattern rather than an error —
// a malformed pattern in one agent definition must not take down agent
// selection for every other agent.
func (r ApplicabilityRule) Matches(changedPaths []string, payload string) bool {
	if r.Always {
		return true
	}
	for _, pattern := range r.FilePatterns {
		for _, p := range changedPaths {
			if ok, err := path.Match(pattern, filepath.Base(p)); err == nil && ok {
				return true
			}
		}
	}
	for _, pattern := range r.ContentPatterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}
		if re.MatchString(payload) {
			return true
		}
	}
	return false
}
