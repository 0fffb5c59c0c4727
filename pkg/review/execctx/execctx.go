// Package execctx builds one AgentExecutionContext per selected agent,
// resolving the three-layer agent-config/agent-definition/global settings
// override and the per-agent filtered user message.
package execctx

import (
	"fmt"

	"github.com/reviewfleet/reviewfleet/pkg/review/catalog"
	"github.com/reviewfleet/reviewfleet/pkg/review/difffilter"
	"github.com/reviewfleet/reviewfleet/pkg/review/instruction"
	"github.com/reviewfleet/reviewfleet/pkg/review/model"
)

// Builder resolves AgentExecutionContext values against a fixed Config and
// Catalog.
type Builder struct {
	Catalog *catalog.Catalog
	Config  *model.Config
}

// New builds a Builder.
func New(cat *catalog.Catalog, cfg *model.Config) *Builder {
	return &Builder{Catalog: cat, Config: cfg}
}

// Build resolves one agent's execution context: effective model/timeout/
// max_turns via the three-layer override (agents[name] > definition >
// global), tool bindings via the catalog, and the per-agent user message
// (diff-filtered when the agent declares file_patterns and the target
// isn't already an explicit file list), with the selector-analysis context
// appended.
func (b *Builder) Build(
	target model.ReviewTarget,
	resolvedContent string,
	agentDef model.AgentDefinition,
	selectorOutput model.SelectorOutput,
) (model.AgentExecutionContext, error) {
	override, _ := b.Config.AgentOverride(agentDef.Name)

	resolvedModel := resolveString(b.Config.Model, agentDef.Model, override.Model)
	if resolvedModel == "" {
		return model.AgentExecutionContext{}, fmt.Errorf("execctx: agent %q resolved to an empty model; AgentDefinition.Model is mandatory", agentDef.Name)
	}
	timeout := resolveIntPtr(b.Config.Timeout, agentDef.Timeout, override.Timeout)
	maxTurns := resolveIntPtr(b.Config.MaxTurns, agentDef.MaxTurns, override.MaxTurns)

	if _, err := b.Catalog.Resolve(agentDef.AllowedTools); err != nil {
		return model.AgentExecutionContext{}, fmt.Errorf("execctx: agent %q: %w", agentDef.Name, err)
	}

	content := resolvedContent
	_, isFile := target.(model.FileTarget)
	if len(agentDef.Applicability.FilePatterns) > 0 && !isFile {
		content = difffilter.Filter(resolvedContent, agentDef.Applicability.FilePatterns)
	}

	base := instruction.BuildReviewInstruction(target, content)
	userMessage := instruction.BuildAgentPrompt(base, selectorOutput, b.Config.Selector.ReferencedContentMaxChars)

	return model.AgentExecutionContext{
		AgentName:       agentDef.Name,
		Phase:           agentDef.Phase,
		Model:           resolvedModel,
		SystemPrompt:    agentDef.SystemPrompt,
		UserMessage:     userMessage,
		OutputSchemaRef: agentDef.OutputSchemaRef,
		AllowedTools:    agentDef.AllowedTools,
		TimeoutSeconds:  timeout,
		MaxTurns:        maxTurns,
	}, nil
}

// resolveString returns the last non-empty string among overrides, listed
// lowest to highest precedence.
func resolveString(overrides ...string) string {
	var v string
	for _, o := range overrides {
		if o != "" {
			v = o
		}
	}
	return v
}

// resolveIntPtr returns the last non-nil *int among overrides, listed
// lowest to highest precedence, falling back to fallback when all are nil.
func resolveIntPtr(fallback int, overrides ...*int) int {
	v := fallback
	for _, o := range overrides {
		if o != nil {
			v = *o
		}
	}
	return v
}
