// Package agentdef loads agent/selector/aggregator definitions from TOML
// files, discovered under a built-in directory and optionally overridden by
// a project-local custom directory.
package agentdef

import "fmt"

// OutputSchema is one entry in the closed output-schema registry every
// AgentDefinition.OutputSchemaRef must resolve against. Every schema is
// required to expose an issues list — the Agent Runner only ever reads
// Output.Issues, so the registry exists purely to validate the tag and
// document what a given agent's structured output looks like to the model
// adapter that implements it.
type OutputSchema struct {
	Tag         string
	Description string
}

// outputSchemas is the built-in registry. Adding a new agent output shape
// means adding an entry here and teaching the model adapter about it; the
// core pipeline itself never needs to change.
var outputSchemas = map[string]OutputSchema{
	"issues": {
		Tag:         "issues",
		Description: "Default review output: a flat list of ReviewIssue findings.",
	},
	"security_issues": {
		Tag:         "security_issues",
		Description: "Review output annotated with CWE/OWASP category metadata per issue, in addition to the standard issues list.",
	},
	"test_coverage_issues": {
		Tag:         "test_coverage_issues",
		Description: "Review output for missing/weak test coverage findings.",
	},
}

// ErrUnknownOutputSchema is returned by ResolveOutputSchema for any tag not
// in the registry.
var ErrUnknownOutputSchema = fmt.Errorf("unknown output schema")

// ResolveOutputSchema validates that tag names a known output schema.
func ResolveOutputSchema(tag string) (OutputSchema, error) {
	schema, ok := outputSchemas[tag]
	if !ok {
		return OutputSchema{}, fmt.Errorf("%w: %q", ErrUnknownOutputSchema, tag)
	}
	return schema, nil
}
