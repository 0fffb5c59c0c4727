package model

// SelectorOutput is the structured result of the selector meta-agent.
type SelectorOutput struct {
	SelectedAgents      []string
	Reasoning           string
	ChangeIntent        string
	AffectedFiles       []string
	RelevantConventions []string
	IssueContext        string
	// ReferencedContent maps a human-readable label (e.g. an issue
	// reference or a fetched URL) to its fetched text, threaded through
	// from the prefetcher and the selector's own tool calls.
	ReferencedContent map[string]string
}
