package selector

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reviewfleet/reviewfleet/pkg/review/prefetch"
)

// BuildGuardrail returns an instruction fragment forbidding the selector
// from re-fetching, via a tool call, any field prefetch already resolved.
// One line per non-empty field; an empty string when nothing was
// prefetched.
func BuildGuardrail(prefetched prefetch.PrefetchedContext) string {
	if prefetched.Empty() {
		return ""
	}

	var lines []string
	if prefetched.IssueBody != "" {
		lines = append(lines, "- The referenced Issue body is already provided above; do not re-fetch it.")
	}
	if prefetched.PRMetadata != "" {
		lines = append(lines, "- The Pull Request metadata is already provided above; do not re-fetch it.")
	}
	for _, path := range sortedKeys(prefetched.ConventionFiles) {
		lines = append(lines, fmt.Sprintf("- Convention file %q is already provided above; do not re-read it.", path))
	}
	for _, n := range sortedIntKeys(prefetched.ReferencedIssues) {
		lines = append(lines, fmt.Sprintf("- Referenced Issue #%d is already provided above; do not re-fetch it.", n))
	}

	var b strings.Builder
	b.WriteString("\n\n## Guardrails\n")
	b.WriteString(strings.Join(lines, "\n"))
	return b.String()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedIntKeys(m map[int]string) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}
