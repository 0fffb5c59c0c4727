package model

// SelectorConfig carries optional overrides for the selector meta-agent plus
// per-feature flags governing prefetch and the reference-content cap.
type SelectorConfig struct {
	Model                     string
	Timeout                   *int
	MaxTurns                  *int
	ReferencedContentMaxChars int // 0 means "use the built-in default"
	ConventionFiles           []string
}

// AggregationConfig carries optional overrides for the aggregator
// meta-agent plus its own enablement flag.
type AggregationConfig struct {
	Enabled  bool
	Model    string
	Timeout  *int
	MaxTurns *int
}

// AgentConfig is the highest-precedence, per-agent override layer.
type AgentConfig struct {
	Enabled  bool
	Model    string
	Timeout  *int
	MaxTurns *int
}

// Config is the umbrella, read-only-after-construction configuration object
// threaded through the whole pipeline.
type Config struct {
	Model             string
	Timeout           int // seconds, > 0
	MaxTurns          int // > 0
	Parallel          bool
	BaseBranch        string
	OutputFormat      string
	SaveReviews       bool
	ShowCost          bool
	MaxFilesPerReview int // > 0
	Selector          SelectorConfig
	Aggregation       AggregationConfig
	Agents            map[string]AgentConfig
}

// AgentOverride returns the per-agent config override for name, or the zero
// value (Enabled defaulting to true at the call site, not here) when no
// override exists.
func (c *Config) AgentOverride(name string) (AgentConfig, bool) {
	if c.Agents == nil {
		return AgentConfig{}, false
	}
	ac, ok := c.Agents[name]
	return ac, ok
}
