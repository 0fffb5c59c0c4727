package config

import "dario.cat/mergo"

// mergeLayer folds src into dst, src taking precedence for any field it
// sets. The Agents map is excluded from the mergo pass and merged
// separately, field-wise per agent name, the way pkg/config/loader.go
// merges the teacher's per-queue overrides.
func mergeLayer(dst *layer, src layer) error {
	agentsOverride := src.Agents
	src.Agents = nil

	if err := mergo.Merge(dst, src, mergo.WithOverride, mergo.WithoutDereference); err != nil {
		return err
	}
	dst.Agents = mergeAgents(dst.Agents, agentsOverride)
	return nil
}

// mergeAgents merges an override set of per-agent layers into base,
// field-wise within each named agent, leaving agents present only in base
// untouched and adding agents present only in override.
func mergeAgents(base, override map[string]agentLayer) map[string]agentLayer {
	if len(override) == 0 {
		return base
	}
	merged := make(map[string]agentLayer, len(base)+len(override))
	for name, l := range base {
		merged[name] = l
	}
	for name, l := range override {
		existing, ok := merged[name]
		if !ok {
			merged[name] = l
			continue
		}
		if l.Enabled != nil {
			existing.Enabled = l.Enabled
		}
		if l.Model != nil {
			existing.Model = l.Model
		}
		if l.Timeout != nil {
			existing.Timeout = l.Timeout
		}
		if l.MaxTurns != nil {
			existing.MaxTurns = l.MaxTurns
		}
		merged[name] = existing
	}
	return merged
}
