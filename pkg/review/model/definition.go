package model

import "regexp"

// agentNamePattern is the fixed identifier pattern agent names must match:
// lowercase letters, digits, and hyphens, starting with a letter.
var agentNamePattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

// ValidAgentName reports whether name matches the fixed allowed pattern.
func ValidAgentName(name string) bool {
	return agentNamePattern.MatchString(name)
}

// AgentDefinition is a loaded, immutable agent record parsed from a TOML
// definition file.
type AgentDefinition struct {
	Name            string
	Description     string
	Model           string
	SystemPrompt    string
	OutputSchemaRef string
	Applicability   ApplicabilityRule
	Phase           Phase
	AllowedTools    []string // capability tags, subset of the tool catalog
	Timeout         *int     // seconds; nil falls back to global
	MaxTurns        *int     // nil falls back to global
}

// SelectorDefinition names the selector meta-agent's own prompt, model, and
// allowed tools.
type SelectorDefinition struct {
	Name         string
	Description  string
	Model        string
	SystemPrompt string
	AllowedTools []string
	Timeout      *int
	MaxTurns     *int
}

// AggregatorDefinition names the aggregator meta-agent's own prompt, model,
// and allowed tools.
type AggregatorDefinition struct {
	Name         string
	Description  string
	Model        string
	SystemPrompt string
	AllowedTools []string
	Timeout      *int
	MaxTurns     *int
}
