// Package config resolves the five-layer Config spec.md §6 describes:
// built-in defaults, the user's global TOML file, the project's
// pyproject.toml [tool.hachimoku] table, the project's own
// .hachimoku/config.toml, and CLI overrides, lowest to highest precedence.
package config

// selectorLayer mirrors model.SelectorConfig but with every field optional
// (nil/zero-length == "this layer doesn't set it"), so a higher layer only
// overrides what it actually specifies.
type selectorLayer struct {
	Model                     *string  `toml:"model"`
	Timeout                   *int     `toml:"timeout"`
	MaxTurns                  *int     `toml:"max_turns"`
	ReferencedContentMaxChars *int     `toml:"referenced_content_max_chars"`
	ConventionFiles           []string `toml:"convention_files"`
}

// aggregationLayer mirrors model.AggregationConfig the same way.
type aggregationLayer struct {
	Enabled  *bool   `toml:"enabled"`
	Model    *string `toml:"model"`
	Timeout  *int    `toml:"timeout"`
	MaxTurns *int    `toml:"max_turns"`
}

// agentLayer mirrors model.AgentConfig the same way.
type agentLayer struct {
	Enabled  *bool   `toml:"enabled"`
	Model    *string `toml:"model"`
	Timeout  *int    `toml:"timeout"`
	MaxTurns *int    `toml:"max_turns"`
}

// layer is one config source fully decoded: a built-in default set, a file
// on disk, or the CLI-override set. Every field is a pointer (or a nil-able
// slice/map) so mergo.Merge with WithOverride and WithoutDereference only
// clobbers what this layer actually sets, including explicit zero values.
type layer struct {
	Model             *string `toml:"model"`
	Timeout           *int    `toml:"timeout"`
	MaxTurns          *int    `toml:"max_turns"`
	Parallel          *bool   `toml:"parallel"`
	BaseBranch        *string `toml:"base_branch"`
	OutputFormat      *string `toml:"output_format"`
	SaveReviews       *bool   `toml:"save_reviews"`
	ShowCost          *bool   `toml:"show_cost"`
	MaxFilesPerReview *int    `toml:"max_files_per_review"`

	Selector    selectorLayer    `toml:"selector"`
	Aggregation aggregationLayer `toml:"aggregation"`

	Agents map[string]agentLayer `toml:"agents"`
}

func ptrString(v string) *string { return &v }
func ptrInt(v int) *int          { return &v }
func ptrBool(v bool) *bool       { return &v }

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func derefBool(p *bool) bool {
	if p == nil {
		return false
	}
	return *p
}
