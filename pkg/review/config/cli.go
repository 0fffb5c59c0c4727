package config

// Overrides carries CLI-supplied values for the highest-precedence layer.
// A nil pointer means "the flag wasn't given" and must not clobber a lower
// layer's value; only non-nil fields participate in the merge.
type Overrides struct {
	Model             *string
	Timeout           *int
	MaxTurns          *int
	Parallel          *bool
	BaseBranch        *string
	OutputFormat      *string
	SaveReviews       *bool
	ShowCost          *bool
	MaxFilesPerReview *int
}

func (o Overrides) toLayer() layer {
	return layer{
		Model:             o.Model,
		Timeout:           o.Timeout,
		MaxTurns:          o.MaxTurns,
		Parallel:          o.Parallel,
		BaseBranch:        o.BaseBranch,
		OutputFormat:      o.OutputFormat,
		SaveReviews:       o.SaveReviews,
		ShowCost:          o.ShowCost,
		MaxFilesPerReview: o.MaxFilesPerReview,
		Agents:            map[string]agentLayer{},
	}
}
