package config

import "github.com/reviewfleet/reviewfleet/pkg/review/model"

// toModelConfig converts a fully-resolved layer (every top-level scalar
// field populated by defaultLayer before any merge) into the model.Config
// the rest of the pipeline consumes.
func (l layer) toModelConfig() model.Config {
	agents := make(map[string]model.AgentConfig, len(l.Agents))
	for name, a := range l.Agents {
		enabled := true
		if a.Enabled != nil {
			enabled = *a.Enabled
		}
		agents[name] = model.AgentConfig{
			Enabled:  enabled,
			Model:    derefString(a.Model),
			Timeout:  a.Timeout,
			MaxTurns: a.MaxTurns,
		}
	}

	return model.Config{
		Model:             derefString(l.Model),
		Timeout:           derefInt(l.Timeout),
		MaxTurns:          derefInt(l.MaxTurns),
		Parallel:          derefBool(l.Parallel),
		BaseBranch:        derefString(l.BaseBranch),
		OutputFormat:      derefString(l.OutputFormat),
		SaveReviews:       derefBool(l.SaveReviews),
		ShowCost:          derefBool(l.ShowCost),
		MaxFilesPerReview: derefInt(l.MaxFilesPerReview),
		Selector: model.SelectorConfig{
			Model:                     derefString(l.Selector.Model),
			Timeout:                   l.Selector.Timeout,
			MaxTurns:                  l.Selector.MaxTurns,
			ReferencedContentMaxChars: derefInt(l.Selector.ReferencedContentMaxChars),
			ConventionFiles:           l.Selector.ConventionFiles,
		},
		Aggregation: model.AggregationConfig{
			Enabled:  derefBool(l.Aggregation.Enabled),
			Model:    derefString(l.Aggregation.Model),
			Timeout:  l.Aggregation.Timeout,
			MaxTurns: l.Aggregation.MaxTurns,
		},
		Agents: agents,
	}
}
