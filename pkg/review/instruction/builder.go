// Package instruction builds the user-message prompts handed to the
// selector and to each review agent.
package instruction

import (
	"fmt"
	"sort"
	"strings"

	"github.com/reviewfleet/reviewfleet/pkg/review/model"
	"github.com/reviewfleet/reviewfleet/pkg/review/prefetch"
)

// DefaultReferencedContentMaxChars is used when SelectorConfig doesn't
// override it.
const DefaultReferencedContentMaxChars = 2000

// BuildReviewInstruction produces the base prompt shared by the selector
// and, after per-agent filtering, every review agent: a header derived
// from the target's variant, the resolved content, and an optional issue
// reference line.
func BuildReviewInstruction(target model.ReviewTarget, resolvedContent string) string {
	var b strings.Builder
	switch t := target.(type) {
	case model.DiffTarget:
		fmt.Fprintf(&b, "Review changes against %s\n\n", t.BaseBranch)
	case model.PRTarget:
		fmt.Fprintf(&b, "Review Pull Request #%d\n", t.PRNumber)
		b.WriteString("(fetch PR metadata via the gh_read tool if more detail is needed)\n\n")
	case model.FileTarget:
		b.WriteString("Review the following files:\n")
		for _, p := range t.Paths {
			fmt.Fprintf(&b, "- %s\n", p)
		}
		b.WriteString("\n")
	default:
		panic(fmt.Sprintf("instruction: unhandled ReviewTarget variant %T", target))
	}

	b.WriteString(resolvedContent)

	if n := target.IssueNumber(); n > 0 {
		fmt.Fprintf(&b, "\n\nRelated to Issue #%d\n", n)
	}
	return b.String()
}

// AgentSummary is the minimal view of an AgentDefinition the selector
// instruction needs to enumerate candidates.
type AgentSummary struct {
	Name          string
	Description   string
	Phase         model.Phase
	Applicability model.ApplicabilityRule
}

// BuildSelectorInstruction appends an agent roster and, when non-empty, a
// prefetched-context section to the base review instruction.
func BuildSelectorInstruction(reviewInstruction string, agents []AgentSummary, prefetched prefetch.PrefetchedContext) string {
	var b strings.Builder
	b.WriteString(reviewInstruction)

	b.WriteString("\n\n## Available Agents\n")
	sorted := make([]AgentSummary, len(agents))
	copy(sorted, agents)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })
	for _, a := range sorted {
		fmt.Fprintf(&b, "- %s: %s (phase=%s%s)\n", a.Name, a.Description, a.Phase, applicabilityNote(a.Applicability))
	}

	if !prefetched.Empty() {
		b.WriteString("\n\n## Pre-fetched Context\n")
		if prefetched.IssueBody != "" {
			fmt.Fprintf(&b, "\n### Issue\n%s\n", prefetched.IssueBody)
		}
		if prefetched.PRMetadata != "" {
			fmt.Fprintf(&b, "\n### Pull Request\n%s\n", prefetched.PRMetadata)
		}
		for _, path := range sortedKeys(prefetched.ConventionFiles) {
			fmt.Fprintf(&b, "\n### Convention file: %s\n%s\n", path, prefetched.ConventionFiles[path])
		}
		for _, n := range sortedIntKeys(prefetched.ReferencedIssues) {
			fmt.Fprintf(&b, "\n### Referenced Issue #%d\n%s\n", n, prefetched.ReferencedIssues[n])
		}
	}

	return b.String()
}

func applicabilityNote(rule model.ApplicabilityRule) string {
	if rule.Always {
		return ", applicability=always"
	}
	if len(rule.FilePatterns) > 0 {
		return fmt.Sprintf(", applicability=%s", strings.Join(rule.FilePatterns, ","))
	}
	return ""
}

// BuildAgentPrompt appends the selector-analysis context section to an
// agent's (possibly diff-filtered) base instruction: the selector's
// change_intent, affected_files, relevant_conventions, issue_context, and
// each referenced_content payload, fence-safe truncated to maxChars (or
// DefaultReferencedContentMaxChars when maxChars <= 0) and wrapped in a
// fence guaranteed longer than any fence already inside the payload.
func BuildAgentPrompt(baseInstruction string, selectorOutput model.SelectorOutput, maxChars int) string {
	if maxChars <= 0 {
		maxChars = DefaultReferencedContentMaxChars
	}

	var b strings.Builder
	b.WriteString(baseInstruction)
	b.WriteString("\n\n## Selector Analysis\n")

	if selectorOutput.ChangeIntent != "" {
		fmt.Fprintf(&b, "\nChange intent: %s\n", selectorOutput.ChangeIntent)
	}
	if len(selectorOutput.AffectedFiles) > 0 {
		fmt.Fprintf(&b, "\nAffected files: %s\n", strings.Join(selectorOutput.AffectedFiles, ", "))
	}
	if len(selectorOutput.RelevantConventions) > 0 {
		fmt.Fprintf(&b, "\nRelevant conventions: %s\n", strings.Join(selectorOutput.RelevantConventions, ", "))
	}
	if selectorOutput.IssueContext != "" {
		fmt.Fprintf(&b, "\nIssue context: %s\n", selectorOutput.IssueContext)
	}

	if len(selectorOutput.ReferencedContent) > 0 {
		b.WriteString("\n### Referenced Content\n")
		for _, label := range sortedKeys(selectorOutput.ReferencedContent) {
			content := TruncateFenceSafe(selectorOutput.ReferencedContent[label], maxChars)
			fence := WideningFence(content)
			fmt.Fprintf(&b, "\n**%s**\n%s\n%s\n%s\n", label, fence, content, fence)
		}
	}

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
