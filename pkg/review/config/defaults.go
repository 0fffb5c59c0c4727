package config

// builtinConventionFiles mirrors prefetch.DefaultConventionFiles. Kept as a
// literal here rather than importing pkg/review/prefetch, which would pull
// the prefetch package's own dependency surface into config for a single
// slice value.
var builtinConventionFiles = []string{"CLAUDE.md", ".hachimoku/config.toml"}

// defaultLayer is the built-in defaults layer: the bottom of the five-layer
// stack, and the only layer guaranteed to leave every field non-nil.
func defaultLayer() layer {
	return layer{
		Model:             ptrString("claude-sonnet-4-5"),
		Timeout:           ptrInt(600),
		MaxTurns:          ptrInt(30),
		Parallel:          ptrBool(true),
		BaseBranch:        ptrString("main"),
		OutputFormat:      ptrString("markdown"),
		SaveReviews:       ptrBool(true),
		ShowCost:          ptrBool(false),
		MaxFilesPerReview: ptrInt(100),
		Selector: selectorLayer{
			ReferencedContentMaxChars: ptrInt(2000),
			ConventionFiles:           builtinConventionFiles,
		},
		Aggregation: aggregationLayer{
			Enabled: ptrBool(true),
		},
		Agents: map[string]agentLayer{},
	}
}
