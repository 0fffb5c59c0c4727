package model

// ComputeSummary derives a ReviewSummary from the full set of collected
// agent results, honoring the invariants in the data model: MaxSeverity is
// present iff TotalIssues > 0, TotalElapsedTime sums only Success and
// Truncated results, and TotalCost is present iff at least one Success
// result carried cost data.
func ComputeSummary(results []AgentResult) ReviewSummary {
	var summary ReviewSummary
	var maxSeverity Severity
	haveSeverity := false
	var totalCost Cost
	haveCost := false

	for _, r := range results {
		summary.TotalElapsedTime += ElapsedOf(r)
		for _, issue := range IssuesOf(r) {
			summary.TotalIssues++
			if !haveSeverity || maxSeverity.Less(issue.Severity) {
				maxSeverity = issue.Severity
				haveSeverity = true
			}
		}
		if sr, ok := r.(SuccessResult); ok && sr.Cost != nil {
			totalCost.InputTokens += sr.Cost.InputTokens
			totalCost.OutputTokens += sr.Cost.OutputTokens
			haveCost = true
		}
	}

	if haveSeverity {
		summary.MaxSeverity = &maxSeverity
	}
	if haveCost {
		summary.TotalCost = &totalCost
	}
	return summary
}

// ExitCodeFor maps a ReviewSummary computed over results to the engine's
// exit code, per the rule: no Success/Truncated results at all is an
// execution error; otherwise the worst severity found determines 0/1/2.
func ExitCodeFor(results []AgentResult, summary ReviewSummary) int {
	anyTerminal := false
	for _, r := range results {
		if IsTerminal(r) {
			anyTerminal = true
			break
		}
	}
	if !anyTerminal {
		return ExitExecutionError
	}
	if summary.MaxSeverity == nil {
		return ExitSuccess
	}
	switch *summary.MaxSeverity {
	case Critical:
		return ExitCritical
	case Important:
		return ExitImportant
	default:
		return ExitSuccess
	}
}
