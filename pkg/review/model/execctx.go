package model

// AgentExecutionContext is one immutable record describing exactly one
// agent invocation: resolved model, prompts, the output-schema tag, tool
// bindings, and the effective timeout/turn budget. Built fresh per pipeline
// invocation and discarded once the agent completes.
type AgentExecutionContext struct {
	AgentName       string
	Phase           Phase
	Model           string
	SystemPrompt    string
	UserMessage     string
	OutputSchemaRef string
	AllowedTools    []string
	TimeoutSeconds  int
	MaxTurns        int
}
