package agentdef

import (
	"fmt"

	"github.com/reviewfleet/reviewfleet/pkg/review/catalog"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// tomlApplicability mirrors model.ApplicabilityRule's TOML shape.
type tomlApplicability struct {
	Always          bool     `toml:"always"`
	FilePatterns    []string `toml:"file_patterns"`
	ContentPatterns []string `toml:"content_patterns"`
}

// tomlAgent is the raw decode target for one agent definition file.
type tomlAgent struct {
	Name          string            `toml:"name"`
	Description   string            `toml:"description"`
	Model         string            `toml:"model"`
	SystemPrompt  string            `toml:"system_prompt"`
	OutputSchema  string            `toml:"output_schema"`
	Phase         string            `toml:"phase"`
	AllowedTools  []string          `toml:"allowed_tools"`
	Timeout       *int              `toml:"timeout"`
	MaxTurns      *int              `toml:"max_turns"`
	Applicability tomlApplicability `toml:"applicability"`
}

func (t tomlAgent) toDefinition() (model.AgentDefinition, error) {
	if t.Name == "" {
		return model.AgentDefinition{}, fmt.Errorf("agent definition: name is required")
	}
	if !model.ValidAgentName(t.Name) {
		return model.AgentDefinition{}, fmt.Errorf("agent definition %q: name does not match the allowed pattern", t.Name)
	}
	if t.Model == "" {
		return model.AgentDefinition{}, fmt.Errorf("agent definition %q: model is mandatory", t.Name)
	}
	if t.SystemPrompt == "" {
		return model.AgentDefinition{}, fmt.Errorf("agent definition %q: system_prompt is required", t.Name)
	}
	outputSchema := t.OutputSchema
	if outputSchema == "" {
		outputSchema = "issues"
	}
	if _, err := ResolveOutputSchema(outputSchema); err != nil {
		return model.AgentDefinition{}, fmt.Errorf("agent definition %q: %w", t.Name, err)
	}
	phase := model.PhaseMain
	if t.Phase != "" {
		p, err := model.ParsePhase(t.Phase)
		if err != nil {
			return model.AgentDefinition{}, fmt.Errorf("agent definition %q: %w", t.Name, err)
		}
		phase = p
	}
	for _, tag := range t.AllowedTools {
		if !validCategory(tag) {
			return model.AgentDefinition{}, fmt.Errorf("agent definition %q: %w: %q", t.Name, catalog.ErrUnknownCategory, tag)
		}
	}

	return model.AgentDefinition{
		Name:            t.Name,
		Description:     t.Description,
		Model:           t.Model,
		SystemPrompt:    t.SystemPrompt,
		OutputSchemaRef: outputSchema,
		Applicability: model.ApplicabilityRule{
			Always:          t.Applicability.Always,
			FilePatterns:    t.Applicability.FilePatterns,
			ContentPatterns: t.Applicability.ContentPatterns,
		},
		Phase:        phase,
		AllowedTools: t.AllowedTools,
		Timeout:      t.Timeout,
		MaxTurns:     t.MaxTurns,
	}, nil
}

// tomlSelector is the raw decode target for selector.toml.
type tomlSelector struct {
	Name         string   `toml:"name"`
	Description  string   `toml:"description"`
	Model        string   `toml:"model"`
	SystemPrompt string   `toml:"system_prompt"`
	AllowedTools []string `toml:"allowed_tools"`
	Timeout      *int     `toml:"timeout"`
	MaxTurns     *int     `toml:"max_turns"`
}

func (t tomlSelector) toDefinition() (model.SelectorDefinition, error) {
	if t.Model == "" {
		return model.SelectorDefinition{}, fmt.Errorf("selector definition: model is mandatory")
	}
	if t.SystemPrompt == "" {
		return model.SelectorDefinition{}, fmt.Errorf("selector definition: system_prompt is required")
	}
	for _, tag := range t.AllowedTools {
		if !validCategory(tag) {
			return model.SelectorDefinition{}, fmt.Errorf("selector definition: %w: %q", catalog.ErrUnknownCategory, tag)
		}
	}
	return model.SelectorDefinition{
		Name:         t.Name,
		Description:  t.Description,
		Model:        t.Model,
		SystemPrompt: t.SystemPrompt,
		AllowedTools: t.AllowedTools,
		Timeout:      t.Timeout,
		MaxTurns:     t.MaxTurns,
	}, nil
}

// tomlAggregator is the raw decode target for aggregator.toml.
type tomlAggregator struct {
	Name         string   `toml:"name"`
	Description  string   `toml:"description"`
	Model        string   `toml:"model"`
	SystemPrompt string   `toml:"system_prompt"`
	AllowedTools []string `toml:"allowed_tools"`
	Timeout      *int     `toml:"timeout"`
	MaxTurns     *int     `toml:"max_turns"`
}

func (t tomlAggregator) toDefinition() (model.AggregatorDefinition, error) {
	if t.Model == "" {
		return model.AggregatorDefinition{}, fmt.Errorf("aggregator definition: model is mandatory")
	}
	if t.SystemPrompt == "" {
		return model.AggregatorDefinition{}, fmt.Errorf("aggregator definition: system_prompt is required")
	}
	return model.AggregatorDefinition{
		Name:         t.Name,
		Description:  t.Description,
		Model:        t.Model,
		SystemPrompt: t.SystemPrompt,
		AllowedTools: t.AllowedTools,
		Timeout:      t.Timeout,
		MaxTurns:     t.MaxTurns,
	}, nil
}

func validCategory(tag string) bool {
	switch catalog.Category(tag) {
	case catalog.GitRead, catalog.GhRead, catalog.FileRead, catalog.WebFetch:
		return true
	default:
		return false
	}
}
